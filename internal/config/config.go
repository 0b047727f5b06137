// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory score submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// AggregationMethod combines per-judge totals: mean, median, trimmed_mean.
	AggregationMethod string `koanf:"aggregation_method"`

	// TrimFraction is the fraction dropped from each end for trimmed_mean.
	TrimFraction float64 `koanf:"trim_fraction"`

	// TeamCombine folds multiple submissions per team: average or best.
	TeamCombine string `koanf:"team_combine"`

	// Epsilon is the tie-comparison precision for leaderboard ordering.
	Epsilon float64 `koanf:"epsilon"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		QueueSize:           100_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          500_000,
		MaxLeaderboardLimit: 100,
		AggregationMethod:   "mean",
		TrimFraction:        0.1,
		TeamCombine:         "average",
		Epsilon:             1e-9,
	}
}
