package smoketest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/tpi/internal/domain/model"
	"github.com/okian/tpi/internal/domain/scoring"
	"github.com/okian/tpi/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// DefaultTolerance is the absolute TPI difference accepted per player.
const DefaultTolerance = 1e-9

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url must not be empty", ErrInvalidConfig)
	case c.NumPlayers < 1:
		return fmt.Errorf("%w: players must be at least 1", ErrInvalidConfig)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be at least 1", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Run generates players, scores them remotely and verifies the results.
// It fails when any batch fails or any score disagrees with the local scorer.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	log := logger.GetOrNop().Named("smoke")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting tpi smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.NumPlayers),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()))

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	players, err := GeneratePlayers(ctx, cfg.NumPlayers)
	if err != nil {
		return stats, err
	}
	stats.PlayersGenerated = len(players)

	if cfg.OutputFile != "" {
		if err := savePlayers(cfg.OutputFile, players); err != nil {
			log.Warn(ctx, "failed to save players to file", logger.Error(err))
		}
	}

	if err := submit(ctx, cfg, client, players, stats, log); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	switch {
	case stats.BatchesFailed > 0:
		return stats, fmt.Errorf("%w: %d of %d", ErrFailures, stats.BatchesFailed, stats.BatchesSubmitted)
	case stats.Mismatches > 0:
		return stats, fmt.Errorf("%w: %d players", ErrMismatch, stats.Mismatches)
	}
	log.Info(ctx, "smoke run passed")
	return stats, nil
}

// submit posts every batch with at most cfg.Workers requests in flight.
// Batch failures are counted, not returned, so one bad batch does not hide
// the outcome of the others.
func submit(ctx context.Context, cfg *Config, client *Client, players []model.PlayerRecord, stats *Stats, log logger.Logger) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i, batch := range batches(players, cfg.BatchSize) {
		g.Go(func() error {
			scored, err := client.Score(gctx, batch)

			mu.Lock()
			defer mu.Unlock()
			stats.BatchesSubmitted++
			if err != nil {
				stats.BatchesFailed++
				log.Warn(gctx, "batch failed", logger.Int("batch", i), logger.Error(err))
				return nil
			}
			stats.PlayersScored += len(scored)
			bad := verifyBatch(batch, scored, cfg.Tolerance)
			stats.Mismatches += len(bad)
			for _, m := range bad {
				log.Error(gctx, "score mismatch", logger.String("player", m.player), logger.Float64("want", m.want), logger.Float64("got", m.got))
			}
			if cfg.Verbose {
				log.Info(gctx, "batch scored", logger.Int("batch", i), logger.Int("players", len(scored)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("smoke run cancelled: %w", err)
	}
	return nil
}

type mismatch struct {
	player    string
	want, got float64
}

// verifyBatch compares remote scores with scoring.Compute, row by row.
func verifyBatch(sent []model.PlayerRecord, got []model.DerivedRecord, tolerance float64) []mismatch {
	var out []mismatch
	for i, in := range sent {
		want := scoring.Compute(in)
		if i >= len(got) || got[i].Player != in.Player || math.Abs(got[i].TPI-want.TPI) > tolerance {
			m := mismatch{player: in.Player, want: want.TPI, got: math.NaN()}
			if i < len(got) {
				m.got = got[i].TPI
			}
			out = append(out, m)
		}
	}
	return out
}

// savePlayers writes the generated players as a JSON array.
func savePlayers(filename string, players []model.PlayerRecord) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(players, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write players: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var playersPerSecond float64
	if stats.Duration > 0 {
		playersPerSecond = float64(stats.PlayersScored) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("playersGenerated", stats.PlayersGenerated),
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("playersScored", stats.PlayersScored),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("playersPerSecond", playersPerSecond))
}
