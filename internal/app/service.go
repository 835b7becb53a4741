// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the command-line driver.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tpi/internal/domain/model"
	"github.com/okian/tpi/internal/domain/scoring"
	"github.com/okian/tpi/internal/domain/table"
	"github.com/okian/tpi/pkg/logger"
	"github.com/okian/tpi/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultScoreWorkers = 1
	defaultMaxBatchRows = 10_000
)

// Service scores player tables and keeps process-wide counters.
type Service struct {
	mu sync.RWMutex

	scorer scoring.Scorer

	// Configuration
	scoreWorkers int
	maxBatchRows int

	// State
	started   bool
	startedAt time.Time

	tablesScored atomic.Int64
	rowsScored   atomic.Int64
	failures     atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScoreWorkers bounds the goroutines used to score one table.
func WithScoreWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.scoreWorkers = count
		}
	}
}

// WithMaxBatchRows caps the number of rows in one table.
func WithMaxBatchRows(rows int) Option {
	return func(s *Service) {
		if rows > 0 {
			s.maxBatchRows = rows
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScorer replaces the scorer built at Start.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scoreWorkers: defaultScoreWorkers,
		maxBatchRows: defaultMaxBatchRows,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the scorer. It is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.GetOrNop().Named("service")
	}
	if s.scorer == nil {
		s.scorer = scoring.NewPillarScorer(scoring.WithWorkers(s.scoreWorkers))
	}
	metrics.UpdateScoringWorkers(s.scoreWorkers)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "scoring service started",
		logger.Int("scoreWorkers", s.scoreWorkers),
		logger.Int("maxBatchRows", s.maxBatchRows),
	)
	return nil
}

// Stop marks the service stopped. Scoring calls fail afterwards.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped",
		logger.Any("tablesScored", s.tablesScored.Load()),
		logger.Any("rowsScored", s.rowsScored.Load()),
	)
}

func (s *Service) current() (scoring.Scorer, logger.Logger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.scorer, s.logger, nil
}

// MaxBatchRows reports the configured row cap.
func (s *Service) MaxBatchRows() int {
	return s.maxBatchRows
}

// ScoreTable returns a copy of t augmented with the pillar scores and TPI.
// Any malformed row aborts the call; no partial table is returned.
func (s *Service) ScoreTable(ctx context.Context, t *table.Table) (*table.Table, error) {
	const op = "service.score_table"
	scorer, log, err := s.current()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if t == nil {
		return nil, fmt.Errorf("%s: %w", op, scoring.ErrNilTable)
	}
	if t.Len() > s.maxBatchRows {
		s.failures.Add(1)
		metrics.RecordScoringError("batch_too_large")
		return nil, fmt.Errorf("%s: %w: %d rows, limit %d", op, ErrBatchTooLarge, t.Len(), s.maxBatchRows)
	}

	start := time.Now()
	derived, err := scorer.Derive(ctx, t)
	if err != nil {
		kind := scoring.ErrorKind(err)
		s.failures.Add(1)
		metrics.RecordScoringError(kind)
		metrics.RecordErrorByComponent("scoring", kind)
		log.Warn(ctx, "table rejected",
			logger.Int("rows", t.Len()),
			logger.String("kind", kind),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := scoring.Augment(t, derived)
	if err != nil {
		s.failures.Add(1)
		metrics.RecordScoringError(scoring.KindInternal)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.record(derived, time.Since(start))
	log.Debug(ctx, "table scored", logger.Int("rows", len(derived)))
	return out, nil
}

// Sample scores the built-in one-row sample table.
func (s *Service) Sample(ctx context.Context) (*table.Table, error) {
	return s.ScoreTable(ctx, SampleTable())
}

func (s *Service) record(derived []model.DerivedRecord, elapsed time.Duration) {
	for _, d := range derived {
		pillars := make(map[string]float64, 4)
		for p, v := range scoring.PillarScores(d) {
			pillars[string(p)] = v
		}
		metrics.RecordRowScored(d.TPI, pillars)
	}
	metrics.RecordTableScored(len(derived), float64(elapsed.Microseconds())/1000)
	s.tablesScored.Add(1)
	s.rowsScored.Add(int64(len(derived)))
}

// GetStats returns a snapshot of service counters.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	started, startedAt := s.started, s.startedAt
	s.mu.RUnlock()

	stats := map[string]any{
		"started":      started,
		"scoreWorkers": s.scoreWorkers,
		"maxBatchRows": s.maxBatchRows,
		"tablesScored": s.tablesScored.Load(),
		"rowsScored":   s.rowsScored.Load(),
		"failures":     s.failures.Load(),
	}
	if started {
		stats["uptimeSeconds"] = time.Since(startedAt).Seconds()
	}
	return stats
}
