// Package ath runs Athena queries and waits for them to finish.
package ath

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"go.uber.org/zap"

	"github.com/tyler180/punt-outcomes/internal/logging"
)

// AthenaAPI is the subset of *athena.Client the runner calls.
type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

type Runner struct {
	Client       AthenaAPI
	Workgroup    string
	Database     string
	OutputS3     string // s3://bucket/prefix/
	PollInterval time.Duration
	Logger       *zap.Logger
}

// ErrQueryFailed is returned for queries that end FAILED or CANCELLED.
var ErrQueryFailed = errors.New("athena query failed")

func (r *Runner) ExecAndWait(ctx context.Context, sql string) (*types.QueryExecution, error) {
	log := logging.OrNop(r.Logger)
	in := &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(r.Database),
		},
		WorkGroup: aws.String(r.Workgroup),
	}
	if r.OutputS3 != "" {
		in.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(r.OutputS3)}
	}
	startOut, err := r.Client.StartQueryExecution(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("start query: %w", err)
	}
	qid := aws.ToString(startOut.QueryExecutionId)
	log.Debug("athena query started", zap.String("qid", qid))

	every := r.PollInterval
	if every <= 0 {
		every = time.Second
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick.C:
			ge, err := r.Client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
				QueryExecutionId: aws.String(qid),
			})
			if err != nil {
				return nil, fmt.Errorf("get query execution: %w", err)
			}
			qe := ge.QueryExecution
			switch qe.Status.State {
			case types.QueryExecutionStateSucceeded:
				var scannedMB, execSec float64
				if st := qe.Statistics; st != nil {
					scannedMB = float64(aws.ToInt64(st.DataScannedInBytes)) / 1024.0 / 1024.0
					execSec = float64(aws.ToInt64(st.EngineExecutionTimeInMillis)) / 1000.0
				}
				log.Info("athena query succeeded",
					zap.String("qid", qid),
					zap.Float64("scanned_mb", scannedMB),
					zap.Float64("exec_sec", execSec))
				return qe, nil
			case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
				msg := "unknown error"
				if qe.Status.AthenaError != nil && qe.Status.AthenaError.ErrorMessage != nil {
					msg = aws.ToString(qe.Status.AthenaError.ErrorMessage)
				} else if qe.Status.StateChangeReason != nil {
					msg = aws.ToString(qe.Status.StateChangeReason)
				}
				return nil, fmt.Errorf("%w: qid=%s %s: %s", ErrQueryFailed, qid, qe.Status.State, msg)
			default:
				// queued or running
			}
		}
	}
}

// Exec runs sql to completion and returns the query id.
func (r *Runner) Exec(ctx context.Context, sql string) (string, error) {
	qe, err := r.ExecAndWait(ctx, sql)
	if err != nil {
		return "", err
	}
	return aws.ToString(qe.QueryExecutionId), nil
}

// QueryInt runs a query returning a single integer, e.g. COUNT(*).
func (r *Runner) QueryInt(ctx context.Context, sql string) (int64, string, error) {
	rows, qid, err := r.Rows(ctx, sql)
	if err != nil {
		return 0, qid, err
	}
	if len(rows) < 1 || len(rows[0]) < 1 {
		return 0, qid, errors.New("unexpected single-value result shape")
	}
	var n int64
	if _, err := fmt.Sscan(rows[0][0], &n); err != nil {
		return 0, qid, fmt.Errorf("parse result: %w", err)
	}
	return n, qid, nil
}

// Rows runs sql and returns the first page of results without the header row.
func (r *Runner) Rows(ctx context.Context, sql string) ([][]string, string, error) {
	qe, err := r.ExecAndWait(ctx, sql)
	if err != nil {
		return nil, "", err
	}
	qid := aws.ToString(qe.QueryExecutionId)
	gr, err := r.Client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(qid),
	})
	if err != nil {
		return nil, qid, fmt.Errorf("get results: %w", err)
	}
	if gr.ResultSet == nil || len(gr.ResultSet.Rows) == 0 {
		return nil, qid, nil
	}
	out := make([][]string, 0, len(gr.ResultSet.Rows)-1)
	for _, row := range gr.ResultSet.Rows[1:] {
		rec := make([]string, len(row.Data))
		for i, d := range row.Data {
			rec[i] = aws.ToString(d.VarCharValue)
		}
		out = append(out, rec)
	}
	return out, qid, nil
}
