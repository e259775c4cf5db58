// Package pipeline classifies and resolves a batch of plays in parallel.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tyler180/punt-outcomes/internal/logging"
	"github.com/tyler180/punt-outcomes/internal/metrics"
	"github.com/tyler180/punt-outcomes/internal/punt"
)

type Options struct {
	Concurrency int              // <1 means 1
	Classifier  *punt.Classifier // nil means punt.Default()
	Logger      *zap.Logger
	Metrics     *metrics.Metrics

	// SkipErrors keeps going past plays that fail to classify and reports
	// them in Result.Failed. Otherwise the first failure stops the batch.
	SkipErrors bool
}

// Failure is a play the batch could not process.
type Failure struct {
	Key punt.Key
	Err error
}

type Result struct {
	RunID string
	// Plays holds the processed records in input order. Failed plays are
	// left out when SkipErrors is set.
	Plays        []punt.Play
	Counts       map[punt.Outcome]int
	Undetermined int
	Failed       []Failure
}

// Run processes plays with at most opts.Concurrency workers. Output order
// matches input order regardless of scheduling. Duplicate keys are rejected
// before any work starts.
func Run(ctx context.Context, plays []punt.Play, opts Options) (*Result, error) {
	log := logging.OrNop(opts.Logger)
	c := opts.Classifier
	if c == nil {
		c = punt.Default()
	}
	n := opts.Concurrency
	if n < 1 {
		n = 1
	}

	seen := make(map[punt.Key]struct{}, len(plays))
	for _, p := range plays {
		if _, dup := seen[p.Key]; dup {
			return nil, fmt.Errorf("duplicate play %s", p.Key)
		}
		seen[p.Key] = struct{}{}
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))
	start := time.Now()
	log.Info("pipeline start", zap.Int("plays", len(plays)), zap.Int("concurrency", n))

	out := make([]punt.Play, len(plays))
	errs := make([]error, len(plays))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i := range plays {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := c.Process(plays[i])
			if err != nil {
				errs[i] = err
				if opts.SkipErrors {
					log.Debug("skip play", zap.Stringer("key", plays[i].Key), zap.Error(err))
					return nil
				}
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:  runID,
		Plays:  make([]punt.Play, 0, len(plays)),
		Counts: make(map[punt.Outcome]int, len(punt.Outcomes())),
	}
	for i := range out {
		if errs[i] != nil {
			res.Failed = append(res.Failed, Failure{Key: plays[i].Key, Err: errs[i]})
			opts.Metrics.Failure()
			continue
		}
		p := out[i]
		res.Plays = append(res.Plays, p)
		res.Counts[p.Outcome]++
		if p.YardLine == punt.YardLineUndetermined {
			res.Undetermined++
		}
		opts.Metrics.Observe(p)
	}

	log.Info("pipeline done",
		zap.Int("processed", len(res.Plays)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("undetermined", res.Undetermined),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}
