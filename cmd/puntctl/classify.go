package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/curated"
	"github.com/tyler180/punt-outcomes/internal/ingest"
	"github.com/tyler180/punt-outcomes/internal/metrics"
	"github.com/tyler180/punt-outcomes/internal/pipeline"
	"github.com/tyler180/punt-outcomes/internal/store"
)

var classifyFlags struct {
	input      string
	out        string
	publish    bool
	ddb        bool
	skipErrors bool
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify and resolve every play, writing one CSV row per play",
	Long: `Reads plays from --input (a directory or s3:// prefix holding the league
CSVs, or a .parquet play table), classifies and resolves them in parallel and
writes the results.

Example:
  puntctl classify --input ./data --out outcomes.csv --publish`,
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyFlags.input, "input", "", "CSV directory, s3:// prefix or parquet file (default DATA_DIR)")
	f.StringVarP(&classifyFlags.out, "out", "o", "-", "output CSV path, - for stdout")
	f.BoolVar(&classifyFlags.publish, "publish", false, "write partitioned parquet under the curated bucket/prefix")
	f.BoolVar(&classifyFlags.ddb, "ddb", false, "store outcomes in the OUTCOMES_TABLE DynamoDB table")
	f.BoolVar(&classifyFlags.skipErrors, "skip-errors", false, "report ambiguous plays instead of failing")
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	input := classifyFlags.input
	if input == "" {
		input = cfg.DataDir
	}

	st := &curated.Store{Bucket: cfg.CuratedBucket, Prefix: cfg.CuratedPrefix, Log: logger}
	var clients *awsClients
	if needsAWS(input) || (classifyFlags.publish && cfg.CuratedBucket != "") || classifyFlags.ddb {
		var err error
		if clients, err = loadAWS(ctx); err != nil {
			return err
		}
		st.S3 = clients.S3
	}

	plays, err := loadPlays(ctx, st, input)
	if err != nil {
		return err
	}
	plays = filterSeason(plays, cfg.Season)

	c, err := cfg.Classifier()
	if err != nil {
		return err
	}
	m := metrics.New()
	res, err := pipeline.Run(ctx, plays, pipeline.Options{
		Concurrency: cfg.Concurrency,
		Classifier:  c,
		Logger:      logger,
		Metrics:     m,
		SkipErrors:  classifyFlags.skipErrors,
	})
	if err != nil {
		return err
	}
	for _, f := range res.Failed {
		logger.Warn("unclassified play", zap.Stringer("key", f.Key), zap.Error(f.Err))
	}

	if err := writeOutcomes(classifyFlags.out, res); err != nil {
		return err
	}

	if classifyFlags.publish {
		locs, err := st.PublishPlays(ctx, res.Plays)
		if err != nil {
			return fmt.Errorf("publish parquet: %w", err)
		}
		logger.Info("published", zap.Strings("locations", locs))
	}
	if classifyFlags.ddb {
		if cfg.OutcomesTable == "" {
			return fmt.Errorf("--ddb needs OUTCOMES_TABLE")
		}
		if err := store.PutPlayOutcomes(ctx, clients.DDB, cfg.OutcomesTable, res.RunID, res.Plays); err != nil {
			return err
		}
	}
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
	}

	counts := make(map[string]int, len(res.Counts))
	for o, n := range res.Counts {
		counts[o.String()] = n
	}
	logger.Info("classified",
		zap.String("run_id", res.RunID),
		zap.Int("plays", len(res.Plays)),
		zap.Any("outcomes", counts),
		zap.Int("undetermined", res.Undetermined))
	return nil
}

func writeOutcomes(path string, res *pipeline.Result) error {
	if path == "-" || path == "" {
		return writeOutcomesTo(os.Stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeOutcomesTo(f, res); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writeOutcomesTo(w io.Writer, res *pipeline.Result) error {
	if err := ingest.WriteOutcomesCSV(w, res.Plays); err != nil {
		return fmt.Errorf("write outcomes: %w", err)
	}
	return nil
}
