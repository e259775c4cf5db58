package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/pfr"
	"github.com/tyler180/punt-outcomes/internal/pipeline"
	"github.com/tyler180/punt-outcomes/internal/punt"
)

var scrapeFlags struct {
	season   int
	firstKey int
	out      string
	delay    time.Duration
	baseURL  string
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [pfr-game-id...]",
	Short: "Classify punts scraped from pro-football-reference boxscores",
	Long: `Fetches each boxscore's play-by-play table, keeps the punt rows and
classifies them. Game keys are assigned in argument order from --first-key.

Example:
  puntctl scrape --season 2016 201609110kan 201609180nwe`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.IntVar(&scrapeFlags.season, "season", 0, "season the games belong to (default SEASON)")
	f.IntVar(&scrapeFlags.firstKey, "first-key", 1, "game key for the first boxscore")
	f.StringVarP(&scrapeFlags.out, "out", "o", "-", "output CSV path, - for stdout")
	f.DurationVar(&scrapeFlags.delay, "delay", 3*time.Second, "pause between boxscores")
	f.StringVar(&scrapeFlags.baseURL, "base-url", pfr.DefaultBaseURL, "site root")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	season := scrapeFlags.season
	if season == 0 {
		season = cfg.Season
	}
	cl := &pfr.Client{BaseURL: scrapeFlags.baseURL, Logger: logger}

	var plays []punt.Play
	for i, id := range args {
		if i > 0 && scrapeFlags.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(scrapeFlags.delay):
			}
		}
		ps, err := cl.FetchPunts(ctx, id, scrapeFlags.firstKey+i, season)
		if err != nil {
			return err
		}
		plays = append(plays, ps...)
	}
	if len(plays) == 0 {
		return fmt.Errorf("no punts found in %d boxscore(s)", len(args))
	}

	c, err := cfg.Classifier()
	if err != nil {
		return err
	}
	res, err := pipeline.Run(ctx, plays, pipeline.Options{
		Concurrency: cfg.Concurrency,
		Classifier:  c,
		Logger:      logger,
		SkipErrors:  true,
	})
	if err != nil {
		return err
	}
	for _, f := range res.Failed {
		logger.Warn("unclassified play", zap.Stringer("key", f.Key), zap.Error(f.Err))
	}
	return writeOutcomes(scrapeFlags.out, res)
}
