package ath

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeAthena walks through states, one per GetQueryExecution call.
type fakeAthena struct {
	states  []types.QueryExecutionState
	reason  string
	rows    [][]string
	started []string
	polls   int
}

func (f *fakeAthena) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.started = append(f.started, aws.ToString(in.QueryString))
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("qid-1")}, nil
}

func (f *fakeAthena) GetQueryExecution(_ context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	st := f.states[min(f.polls, len(f.states)-1)]
	f.polls++
	return &athena.GetQueryExecutionOutput{QueryExecution: &types.QueryExecution{
		QueryExecutionId: in.QueryExecutionId,
		Status: &types.QueryExecutionStatus{
			State:             st,
			StateChangeReason: aws.String(f.reason),
		},
		Statistics: &types.QueryExecutionStatistics{
			DataScannedInBytes:          aws.Int64(3 << 20),
			EngineExecutionTimeInMillis: aws.Int64(1500),
		},
	}}, nil
}

func (f *fakeAthena) GetQueryResults(_ context.Context, _ *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	rs := &types.ResultSet{Rows: []types.Row{{Data: []types.Datum{{VarCharValue: aws.String("c")}}}}}
	for _, r := range f.rows {
		var row types.Row
		for _, v := range r {
			row.Data = append(row.Data, types.Datum{VarCharValue: aws.String(v)})
		}
		rs.Rows = append(rs.Rows, row)
	}
	return &athena.GetQueryResultsOutput{ResultSet: rs}, nil
}

func newRunner(t *testing.T, f *fakeAthena) *Runner {
	return &Runner{
		Client:       f,
		Workgroup:    "primary",
		Database:     "punt_curated",
		OutputS3:     "s3://results/athena/",
		PollInterval: time.Millisecond,
		Logger:       zaptest.NewLogger(t),
	}
}

func TestExecAndWait_PollsUntilSucceeded(t *testing.T) {
	f := &fakeAthena{states: []types.QueryExecutionState{
		types.QueryExecutionStateQueued,
		types.QueryExecutionStateRunning,
		types.QueryExecutionStateSucceeded,
	}}
	qid, err := newRunner(t, f).Exec(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "qid-1", qid)
	assert.Equal(t, 3, f.polls)
	assert.Equal(t, []string{"SELECT 1"}, f.started)
}

func TestExecAndWait_Failed(t *testing.T) {
	f := &fakeAthena{
		states: []types.QueryExecutionState{types.QueryExecutionStateFailed},
		reason: "TABLE_NOT_FOUND",
	}
	_, err := newRunner(t, f).ExecAndWait(context.Background(), "SELECT * FROM nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryFailed))
	assert.Contains(t, err.Error(), "TABLE_NOT_FOUND")
}

func TestExecAndWait_ContextCancelled(t *testing.T) {
	f := &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateRunning}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := newRunner(t, f).ExecAndWait(ctx, "SELECT 1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueryInt(t *testing.T) {
	f := &fakeAthena{
		states: []types.QueryExecutionState{types.QueryExecutionStateSucceeded},
		rows:   [][]string{{"6681"}},
	}
	n, qid, err := newRunner(t, f).QueryInt(context.Background(), "SELECT COUNT(*) AS c FROM t")
	require.NoError(t, err)
	assert.Equal(t, int64(6681), n)
	assert.Equal(t, "qid-1", qid)

	f = &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateSucceeded}}
	_, _, err = newRunner(t, f).QueryInt(context.Background(), "SELECT COUNT(*) AS c FROM t")
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	f := &fakeAthena{
		states: []types.QueryExecutionState{types.QueryExecutionStateSucceeded},
		rows:   [][]string{{"2016", "fair_catch", "1650"}, {"2016", "returned", "2430"}},
	}
	rows, _, err := newRunner(t, f).Rows(context.Background(), "SELECT ...")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2016", "fair_catch", "1650"}, {"2016", "returned", "2430"}}, rows)
}
