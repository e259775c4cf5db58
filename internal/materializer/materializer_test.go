package materializer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	sql     []string
	failOn  string
	count   int64
	nextQID int
}

func (f *fakeExec) Exec(_ context.Context, sql string) (string, error) {
	f.sql = append(f.sql, sql)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return "", errors.New("boom")
	}
	f.nextQID++
	return fmt.Sprintf("q%d", f.nextQID), nil
}

func (f *fakeExec) QueryInt(ctx context.Context, sql string) (int64, string, error) {
	qid, err := f.Exec(ctx, sql)
	return f.count, qid, err
}

func TestBuildCTAS(t *testing.T) {
	sql := BuildCTAS("punt_curated", "s3://curated/serve/punt_outcomes_by_type/run=1/")
	assert.Contains(t, sql, "CREATE TABLE punt_curated.punt_outcomes_by_type")
	assert.Contains(t, sql, "external_location = 's3://curated/serve/punt_outcomes_by_type/run=1/'")
	assert.Contains(t, sql, "FROM punt_curated.punt_outcomes")
	assert.Contains(t, sql, "STRPOS(playdescription, 'MUFFS') = 0")
	// partition column last
	assert.True(t, strings.HasSuffix(strings.TrimSpace(strings.Split(sql, "FROM punt_curated.punt_outcomes")[0]), "season"))
}

func TestBuildCreateSource(t *testing.T) {
	sql := BuildCreateSource("db", "s3://curated/punt_curated/punt_outcomes")
	assert.Contains(t, sql, "LOCATION 's3://curated/punt_curated/punt_outcomes/'")
	assert.Contains(t, sql, "PARTITIONED BY (season INT)")
}

func TestBuildCountAndSample(t *testing.T) {
	assert.Equal(t, "SELECT COALESCE(SUM(plays), 0) AS plays FROM db.punt_outcomes_by_type WHERE season=2016", BuildCount("db", 2016))
	assert.NotContains(t, BuildCount("db", 0), "WHERE")
	assert.Contains(t, BuildSample("db", 2017), "WHERE season=2017")
	assert.NotContains(t, BuildSample("db", 0), "WHERE")
}

func TestMaterialize(t *testing.T) {
	f := &fakeExec{count: 6681}
	res, err := Materialize(context.Background(), f, Options{
		Database:       "punt_curated",
		SourceLocation: "s3://curated/punt_curated/punt_outcomes/",
		ServeLocation:  "s3://curated/serve/run=1/",
	})
	require.NoError(t, err)
	assert.Equal(t, "punt_curated.punt_outcomes_by_type", res.Table)
	assert.Equal(t, int64(6681), res.Plays)
	assert.Equal(t, []string{"q1", "q2", "q3", "q4", "q5"}, res.QueryIDs)
	require.Len(t, f.sql, 5)
	assert.Contains(t, f.sql[0], "CREATE EXTERNAL TABLE")
	assert.Contains(t, f.sql[1], "MSCK REPAIR")
	assert.Contains(t, f.sql[2], "DROP TABLE")
	assert.Contains(t, f.sql[3], "CREATE TABLE")
}

func TestMaterialize_DropFailureIsNotFatal(t *testing.T) {
	f := &fakeExec{failOn: "DROP TABLE"}
	res, err := Materialize(context.Background(), f, Options{Database: "db"})
	require.NoError(t, err)
	assert.Len(t, res.QueryIDs, 4)
}

func TestMaterialize_CTASFailure(t *testing.T) {
	f := &fakeExec{failOn: "CREATE TABLE db.punt_outcomes_by_type"}
	_, err := Materialize(context.Background(), f, Options{Database: "db"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create CTAS")
}
