// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New initializer to build a Config with defaults.
// - Loaders accept context.Context as the first parameter.
// - Failures wrap this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/tpi/pkg/logger"
)

// Config contains process configuration. The scoring weights and benchmark
// denominators are fixed and deliberately absent here.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ScoreWorkers bounds the goroutines used to score one table.
	ScoreWorkers int `koanf:"score_workers"`

	// MaxBatchRows caps the rows accepted by POST /v1/score.
	MaxBatchRows int `koanf:"max_batch_rows"`

	// RateLimitRPS and RateLimitBurst configure the scoring endpoint
	// limiter. A non-positive RPS disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      logger.FormatText,
		Addr:           ":9080",
		ScoreWorkers:   1,
		MaxBatchRows:   10_000,
		RateLimitRPS:   50,
		RateLimitBurst: 100,
	}
}

// Validate checks field ranges.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ScoreWorkers < 1:
		return fmt.Errorf("%w: score_workers must be at least 1, got %d", ErrInvalidConfig, c.ScoreWorkers)
	case c.MaxBatchRows < 1:
		return fmt.Errorf("%w: max_batch_rows must be at least 1, got %d", ErrInvalidConfig, c.MaxBatchRows)
	case c.RateLimitRPS > 0 && c.RateLimitBurst < 1:
		return fmt.Errorf("%w: rate_limit_burst must be at least 1 when rate limiting is on", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
