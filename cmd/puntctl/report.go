package main

import (
	"encoding/json"
	"math"

	"github.com/spf13/cobra"

	"github.com/tyler180/punt-outcomes/internal/curated"
	"github.com/tyler180/punt-outcomes/internal/pipeline"
	"github.com/tyler180/punt-outcomes/internal/report"
)

var reportFlags struct {
	input string
	json  bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print outcome and field-position aggregates",
	Long: `Classifies --input like "classify" and prints the outcome/concussion
crosstab, the return yardage median (muffs excluded), punt distance median and
10th percentile, and how often punts ended inside the 20.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.input, "input", "", "CSV directory, s3:// prefix or parquet file (default DATA_DIR)")
	reportCmd.Flags().BoolVar(&reportFlags.json, "json", false, "print JSON instead of a table")
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	input := reportFlags.input
	if input == "" {
		input = cfg.DataDir
	}
	st := &curated.Store{Log: logger}
	if needsAWS(input) {
		clients, err := loadAWS(ctx)
		if err != nil {
			return err
		}
		st.S3 = clients.S3
	}

	plays, err := loadPlays(ctx, st, input)
	if err != nil {
		return err
	}
	c, err := cfg.Classifier()
	if err != nil {
		return err
	}
	res, err := pipeline.Run(ctx, filterSeason(plays, cfg.Season), pipeline.Options{
		Concurrency: cfg.Concurrency,
		Classifier:  c,
		Logger:      logger,
		SkipErrors:  true,
	})
	if err != nil {
		return err
	}

	s := report.Summarize(res.Plays)
	if !reportFlags.json {
		return report.Write(cmd.OutOrStdout(), s)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(jsonSafe(s))
}

// jsonSafe zeroes NaN aggregates, which encoding/json rejects.
func jsonSafe(s report.Summary) report.Summary {
	for _, f := range []*float64{
		&s.ReturnYardsMedian, &s.PuntDistanceMedian, &s.PuntDistanceP10,
		&s.Inside20Share, &s.Inside20Median,
	} {
		if math.IsNaN(*f) {
			*f = 0
		}
	}
	return s
}
