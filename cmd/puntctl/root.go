package main

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/config"
	"github.com/tyler180/punt-outcomes/internal/curated"
	"github.com/tyler180/punt-outcomes/internal/ingest"
	"github.com/tyler180/punt-outcomes/internal/logging"
	"github.com/tyler180/punt-outcomes/internal/punt"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "puntctl",
	Short: "Classify punt plays and resolve where the ball ended up",
	Long: `puntctl reads league punt play data (CSV directory or parquet table),
assigns every play one outcome (not_punted, out_of_bounds, downed, touchback,
fair_catch, returned) and resolves return yardage, punt distance and the
resulting yard line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(verbose || cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file (overrides PUNT_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(gameCmd)
}

// awsClients builds S3 and DynamoDB clients only when something needs AWS.
type awsClients struct {
	S3  *s3.Client
	DDB *dynamodb.Client
}

func loadAWS(ctx context.Context) (*awsClients, error) {
	ac, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &awsClients{S3: s3.NewFromConfig(ac), DDB: dynamodb.NewFromConfig(ac)}, nil
}

func needsAWS(paths ...string) bool {
	for _, p := range paths {
		if strings.HasPrefix(p, "s3://") {
			return true
		}
	}
	return false
}

func isParquet(p string) bool {
	p = strings.ToLower(p)
	return strings.HasSuffix(p, ".parquet") || strings.HasSuffix(p, ".parq")
}

// loadPlays reads either a parquet play table or a directory of league CSVs.
func loadPlays(ctx context.Context, st *curated.Store, input string) ([]punt.Play, error) {
	if isParquet(input) {
		return st.LoadPlays(ctx, input)
	}
	src, err := ingest.LoadDir(ctx, st.Open, input)
	if err != nil {
		return nil, err
	}
	plays, err := ingest.Merge(src)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", input, err)
	}
	return plays, nil
}

func filterSeason(plays []punt.Play, season int) []punt.Play {
	if season == 0 {
		return plays
	}
	out := plays[:0:0]
	for _, p := range plays {
		if p.Season == season {
			out = append(out, p)
		}
	}
	return out
}
