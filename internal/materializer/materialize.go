package materializer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/logging"
)

// Executor runs SQL to completion. *ath.Runner satisfies it.
type Executor interface {
	Exec(ctx context.Context, sql string) (string, error)
	QueryInt(ctx context.Context, sql string) (int64, string, error)
}

type Options struct {
	Database       string
	SourceLocation string // curated ".../punt_outcomes/" prefix
	ServeLocation  string // empty prefix for the CTAS output
	Season         int    // 0 counts every season
	Logger         *zap.Logger
}

type Result struct {
	Table    string   `json:"table"`
	QueryIDs []string `json:"query_ids"`
	Plays    int64    `json:"plays"`
}

// Materialize registers the curated data, rebuilds the summary table and
// counts the plays it covers. A failed DROP is logged, not returned.
func Materialize(ctx context.Context, ex Executor, opts Options) (*Result, error) {
	log := logging.OrNop(opts.Logger)
	db := opts.Database
	res := &Result{Table: db + "." + TableName}

	steps := []struct {
		name string
		sql  string
	}{
		{"create source", BuildCreateSource(db, opts.SourceLocation)},
		{"repair source", BuildRepair(db)},
	}
	for _, s := range steps {
		qid, err := ex.Exec(ctx, s.sql)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		res.QueryIDs = append(res.QueryIDs, qid)
	}

	if qid, err := ex.Exec(ctx, BuildDrop(db)); err != nil {
		log.Warn("drop table failed", zap.String("table", res.Table), zap.Error(err))
	} else {
		res.QueryIDs = append(res.QueryIDs, qid)
	}

	qid, err := ex.Exec(ctx, BuildCTAS(db, opts.ServeLocation))
	if err != nil {
		return nil, fmt.Errorf("create CTAS: %w", err)
	}
	res.QueryIDs = append(res.QueryIDs, qid)

	n, qid, err := ex.QueryInt(ctx, BuildCount(db, opts.Season))
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	res.QueryIDs = append(res.QueryIDs, qid)
	res.Plays = n

	log.Info("materialized", zap.String("table", res.Table), zap.Int64("plays", n), zap.Int("season", opts.Season))
	return res, nil
}
