package outcomes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/ath"
	"github.com/tyler180/punt-outcomes/internal/config"
	"github.com/tyler180/punt-outcomes/internal/curated"
	"github.com/tyler180/punt-outcomes/internal/ingest"
	"github.com/tyler180/punt-outcomes/internal/logging"
	"github.com/tyler180/punt-outcomes/internal/materializer"
	"github.com/tyler180/punt-outcomes/internal/pipeline"
	"github.com/tyler180/punt-outcomes/internal/punt"
	"github.com/tyler180/punt-outcomes/internal/store"
)

// LambdaEntrypoint is the single Lambda handler exported from this package.
func LambdaEntrypoint(ctx context.Context, raw Raw) (*Response, error) {
	var e Event
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
	}

	// Event values only override this invocation; never os.Setenv, warm
	// containers would keep them.
	cfg := config.FromEnv()
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, err
	}
	defer func() { _ = log.Sync() }()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	svc := &Service{
		Cfg: cfg,
		Store: &curated.Store{
			S3:     s3.NewFromConfig(awsCfg),
			Bucket: cfg.CuratedBucket,
			Prefix: cfg.CuratedPrefix,
			Log:    log,
		},
		DDB: dynamodb.NewFromConfig(awsCfg),
		Athena: &ath.Runner{
			Client:    athena.NewFromConfig(awsCfg),
			Workgroup: cfg.Athena.Workgroup,
			Database:  cfg.Athena.Database,
			OutputS3:  cfg.Athena.Output,
			Logger:    log,
		},
		Log: log,
	}
	return svc.Handle(ctx, e)
}

// Service holds the clients one invocation needs.
type Service struct {
	Cfg    *config.Config
	Store  *curated.Store
	DDB    store.DynamoDBAPI
	Athena materializer.Executor
	Log    *zap.Logger

	now func() time.Time
}

func (s *Service) Handle(ctx context.Context, e Event) (*Response, error) {
	mode := strings.ToLower(strings.TrimSpace(e.Mode))
	if mode == "" {
		mode = "classify"
	}
	season := e.Season
	if season == 0 {
		season = s.Cfg.Season
	}

	switch mode {
	case "classify":
		return s.classify(ctx, e, season)
	case "materialize":
		return s.materialize(ctx, e, season)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

func (s *Service) classify(ctx context.Context, e Event, season int) (*Response, error) {
	log := logging.OrNop(s.Log)
	input := e.DataDir
	if input == "" {
		input = s.Cfg.DataDir
	}

	var plays []punt.Play
	var err error
	if strings.HasSuffix(strings.ToLower(input), ".parquet") {
		plays, err = s.Store.LoadPlays(ctx, input)
	} else {
		var src ingest.Sources
		if src, err = ingest.LoadDir(ctx, s.Store.Open, input); err == nil {
			plays, err = ingest.Merge(src)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input, err)
	}
	if season != 0 {
		kept := plays[:0]
		for _, p := range plays {
			if p.Season == season {
				kept = append(kept, p)
			}
		}
		plays = kept
	}

	c, err := s.Cfg.Classifier()
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Run(ctx, plays, pipeline.Options{
		Concurrency: s.Cfg.Concurrency,
		Classifier:  c,
		Logger:      log,
		SkipErrors:  true,
	})
	if err != nil {
		return nil, err
	}

	out := &Response{
		Mode:         "classify",
		RunID:        res.RunID,
		Plays:        int64(len(res.Plays)),
		Outcomes:     make(map[string]int, len(res.Counts)),
		Undetermined: res.Undetermined,
	}
	for o, n := range res.Counts {
		out.Outcomes[o.String()] = n
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, f.Key.String()+": "+f.Err.Error())
	}

	if s.Store.Bucket != "" {
		if out.Locations, err = s.Store.PublishPlays(ctx, res.Plays); err != nil {
			return nil, fmt.Errorf("publish: %w", err)
		}
	}
	if s.Cfg.OutcomesTable != "" && !e.SkipDDB {
		if err := store.PutPlayOutcomes(ctx, s.DDB, s.Cfg.OutcomesTable, res.RunID, res.Plays); err != nil {
			return nil, err
		}
	}
	log.Info("OK classify",
		zap.String("run_id", res.RunID),
		zap.Int64("plays", out.Plays),
		zap.Int("failed", len(out.Failed)),
		zap.Strings("locations", out.Locations))
	return out, nil
}

// rowQuerier is implemented by *ath.Runner.
type rowQuerier interface {
	Rows(ctx context.Context, sql string) ([][]string, string, error)
}

func (s *Service) materialize(ctx context.Context, e Event, season int) (*Response, error) {
	if s.Cfg.CuratedBucket == "" || s.Cfg.Athena.Output == "" {
		return nil, errors.New("materialize needs CURATED_BUCKET and ATHENA_OUTPUT")
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	source := fmt.Sprintf("s3://%s/%s/punt_outcomes/", s.Cfg.CuratedBucket, s.Cfg.CuratedPrefix)
	if s.Cfg.CuratedPrefix == "" {
		source = fmt.Sprintf("s3://%s/punt_outcomes/", s.Cfg.CuratedBucket)
	}
	serve := fmt.Sprintf("%s/serve/%s/run=%s/",
		strings.TrimRight(s.Cfg.Athena.Output, "/"),
		materializer.TableName,
		now().UTC().Format("20060102T150405Z"))

	res, err := materializer.Materialize(ctx, s.Athena, materializer.Options{
		Database:       s.Cfg.Athena.Database,
		SourceLocation: source,
		ServeLocation:  serve,
		Season:         season,
		Logger:         s.Log,
	})
	if err != nil {
		return nil, err
	}
	out := &Response{
		Mode:      "materialize",
		Plays:     res.Plays,
		Table:     res.Table,
		QueryIDs:  res.QueryIDs,
		Locations: []string{serve},
	}
	if rq, ok := s.Athena.(rowQuerier); ok && e.Sample {
		rows, qid, err := rq.Rows(ctx, materializer.BuildSample(s.Cfg.Athena.Database, season))
		if err != nil {
			return nil, fmt.Errorf("sample: %w", err)
		}
		out.Sample = rows
		out.QueryIDs = append(out.QueryIDs, qid)
	}
	return out, nil
}
