// Package materializer builds the Athena SQL that serves punt outcome
// aggregates from the curated parquet.
package materializer

import (
	"fmt"
	"strings"
)

const (
	// SourceTable reads the parquet written by the curated store.
	SourceTable = "punt_outcomes"
	// TableName is the materialized per-season, per-outcome summary.
	TableName = "punt_outcomes_by_type"
)

// BuildCreateSource declares the external table over the curated parquet.
// location is the ".../punt_outcomes/" prefix that holds season=YYYY/ dirs.
func BuildCreateSource(db, location string) string {
	return fmt.Sprintf(`
CREATE EXTERNAL TABLE IF NOT EXISTS %s.%s (
  gamekey             INT,
  playid              INT,
  season_year         INT,
  season_type         STRING,
  week                INT,
  game_date           STRING,
  poss_team           STRING,
  rec_team            STRING,
  yard_number         INT,
  dist_togoal         INT,
  turf                STRING,
  temperature         DOUBLE,
  playdescription     STRING,
  touchdown           BOOLEAN,
  concussion          BOOLEAN,
  primary_impact_type STRING,
  outcome             STRING,
  yardage             INT,
  yard_line           INT,
  punt_distance       INT
)
PARTITIONED BY (season INT)
STORED AS PARQUET
LOCATION '%s/'`, db, SourceTable, strings.TrimRight(location, "/"))
}

// BuildRepair loads partitions added since the last run.
func BuildRepair(db string) string {
	return fmt.Sprintf(`MSCK REPAIR TABLE %s.%s`, db, SourceTable)
}

// BuildDrop returns a DROP TABLE IF EXISTS for the materialized table.
func BuildDrop(db string) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS %s.%s`, db, TableName)
}

// BuildCTAS aggregates every season. Return yardage skips muffed punts,
// whose yardage is not a return.
func BuildCTAS(db, location string) string {
	return fmt.Sprintf(`
CREATE TABLE %s.%s
WITH (
  format = 'PARQUET',
  external_location = '%s/',
  partitioned_by = ARRAY['season']
) AS
SELECT
  outcome,
  COUNT(*)                                              AS plays,
  COUNT_IF(concussion)                                  AS concussions,
  ROUND(CAST(COUNT_IF(concussion) AS DOUBLE) / COUNT(*), 5) AS concussion_rate,
  COUNT_IF(touchdown)                                   AS touchdowns,
  APPROX_PERCENTILE(punt_distance, 0.5)                 AS median_punt_distance,
  APPROX_PERCENTILE(yardage, 0.5) FILTER (
    WHERE outcome = 'returned' AND STRPOS(playdescription, 'MUFFS') = 0
  )                                                     AS median_return_yards,
  COUNT_IF(yard_line > 0 AND yard_line < 20)            AS inside_20,
  COUNT_IF(yard_line = -1)                              AS undetermined,
  season
FROM %s.%s
GROUP BY season, outcome
`, db, TableName, strings.TrimRight(location, "/"), db, SourceTable)
}

// Some light sanity/QA queries you can log after CTAS finishes.
func BuildCount(db string, season int) string {
	if season == 0 {
		return fmt.Sprintf(`SELECT COALESCE(SUM(plays), 0) AS plays FROM %s.%s`, db, TableName)
	}
	return fmt.Sprintf(`SELECT COALESCE(SUM(plays), 0) AS plays FROM %s.%s WHERE season=%d`, db, TableName, season)
}

func BuildSample(db string, season int) string {
	where := ""
	if season != 0 {
		where = fmt.Sprintf("WHERE season=%d\n", season)
	}
	return fmt.Sprintf(`
SELECT season, outcome, plays, concussions, concussion_rate
FROM %s.%s
%sORDER BY season, concussions DESC
LIMIT 25`, db, TableName, where)
}
