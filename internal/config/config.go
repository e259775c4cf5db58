// Package config loads runtime settings from the environment, optionally
// overlaid with a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tyler180/punt-outcomes/internal/punt"
)

// Config holds every knob the CLI and the Lambda read.
type Config struct {
	Season int `yaml:"season"`

	// DataDir holds the league CSVs; a local path or s3://bucket/prefix.
	DataDir string `yaml:"data_dir"`

	CuratedBucket string `yaml:"curated_bucket"`
	CuratedPrefix string `yaml:"curated_prefix"`

	OutcomesTable string `yaml:"outcomes_table"`

	Athena AthenaConfig `yaml:"athena"`

	Concurrency int  `yaml:"concurrency"`
	Debug       bool `yaml:"debug"`

	// MetricsFile, when set, receives a Prometheus textfile after a run.
	MetricsFile string `yaml:"metrics_file"`

	// Keywords replaces the default classifier table when non-empty.
	Keywords map[string][]string `yaml:"keywords"`
}

type AthenaConfig struct {
	Database  string `yaml:"database"`
	Workgroup string `yaml:"workgroup"`
	Output    string `yaml:"output"` // s3://bucket/prefix/ for query results
}

// FromEnv reads the environment with defaults.
//
//	SEASON, DATA_DIR, CURATED_BUCKET, CURATED_PREFIX, OUTCOMES_TABLE,
//	ATHENA_DB, ATHENA_WORKGROUP, ATHENA_OUTPUT, CONCURRENCY, DEBUG, METRICS_FILE
func FromEnv() *Config {
	return &Config{
		Season:        envInt("SEASON", 0),
		DataDir:       envStr("DATA_DIR", "."),
		CuratedBucket: envStr("CURATED_BUCKET", ""),
		CuratedPrefix: strings.Trim(envStr("CURATED_PREFIX", "punt_curated"), "/"),
		OutcomesTable: envStr("OUTCOMES_TABLE", ""),
		Athena: AthenaConfig{
			Database:  envStr("ATHENA_DB", "punt_curated"),
			Workgroup: envStr("ATHENA_WORKGROUP", "primary"),
			Output:    envStr("ATHENA_OUTPUT", ""),
		},
		Concurrency: envInt("CONCURRENCY", 8),
		Debug:       envBool("DEBUG", false),
		MetricsFile: envStr("METRICS_FILE", ""),
	}
}

// Load starts from FromEnv and overlays the YAML file at path. An empty path
// falls back to PUNT_CONFIG; if that is empty too only the environment is used.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path == "" {
		path = envStr("PUNT_CONFIG", "")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return cfg, nil
}

// Classifier builds the classifier for this config. Keyword overrides are
// merged onto the default table label by label.
func (c *Config) Classifier() (*punt.Classifier, error) {
	if len(c.Keywords) == 0 {
		return punt.Default(), nil
	}
	override, err := punt.KeywordTableFrom(c.Keywords)
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	table := punt.DefaultKeywords()
	for o, frags := range override {
		table[o] = frags
	}
	return punt.NewClassifier(table)
}

// ---- env helpers ----

func envStr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}
