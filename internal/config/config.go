// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and PRIO_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig; read/parse failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Supported client source kinds.
const (
	SourceSQLite = "sqlite"
	SourceCSV    = "csv"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SourceKind selects the client row store: sqlite or csv.
	SourceKind string `koanf:"source_kind"`

	// SourcePath is the database file or CSV file holding client rows.
	SourcePath string `koanf:"source_path"`

	// SourceTable names the SQLite table holding client rows.
	SourceTable string `koanf:"source_table"`

	// ReloadIntervalMS rebuilds the cohort snapshot periodically; 0 disables it.
	ReloadIntervalMS int `koanf:"reload_interval_ms"`

	// ScoreWorkers bounds parallel scoring of a cohort.
	ScoreWorkers int `koanf:"score_workers"`

	// MaxListLimit caps GET /clients?limit.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		SourceKind:       SourceSQLite,
		SourcePath:       "clients.db",
		SourceTable:      "clients",
		ReloadIntervalMS: 0,
		ScoreWorkers:     runtime.NumCPU(),
		MaxListLimit:     500,
	}
}

// ReloadInterval returns ReloadIntervalMS as a duration.
func (c *Config) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadIntervalMS) * time.Millisecond
}

// Validate checks fields that have no sensible fallback.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SourceKind != SourceSQLite && c.SourceKind != SourceCSV:
		return fmt.Errorf("%w: source_kind must be %q or %q, got %q", ErrInvalidConfig, SourceSQLite, SourceCSV, c.SourceKind)
	case strings.TrimSpace(c.SourcePath) == "":
		return fmt.Errorf("%w: source_path must not be empty", ErrInvalidConfig)
	case c.SourceKind == SourceSQLite && strings.TrimSpace(c.SourceTable) == "":
		return fmt.Errorf("%w: source_table must not be empty", ErrInvalidConfig)
	case c.ReloadIntervalMS < 0:
		return fmt.Errorf("%w: reload_interval_ms must not be negative", ErrInvalidConfig)
	case c.MaxListLimit < 1:
		return fmt.Errorf("%w: max_list_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
