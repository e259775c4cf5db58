package outcomes

import "encoding/json"

// Event is the Lambda payload. Empty fields fall back to the environment.
type Event struct {
	Mode    string `json:"mode"`     // classify | materialize
	Season  int    `json:"season"`   // 0 = every season in the input
	DataDir string `json:"data_dir"` // s3://bucket/prefix of the league CSVs, or a .parquet table

	// SkipDDB leaves the outcomes table alone for backfills that only need parquet.
	SkipDDB bool `json:"skip_ddb"`

	// Sample returns a few rows of the rebuilt table after materialize.
	Sample bool `json:"sample"`
}

type Raw = json.RawMessage

type Response struct {
	Mode         string         `json:"mode"`
	RunID        string         `json:"run_id,omitempty"`
	Plays        int64          `json:"plays"`
	Outcomes     map[string]int `json:"outcomes,omitempty"`
	Undetermined int            `json:"undetermined,omitempty"`
	Failed       []string       `json:"failed,omitempty"`
	Locations    []string       `json:"locations,omitempty"`
	Table        string         `json:"table,omitempty"`
	QueryIDs     []string       `json:"query_ids,omitempty"`
	Sample       [][]string     `json:"sample,omitempty"`
}
