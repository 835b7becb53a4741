// Package scoring computes the Total Performance Index (TPI) of players
// from their raw statistics.
//
// Each row is scored on four pillars, technical, tactical, physical and
// mental, which are combined with fixed weights. Scoring is a pure,
// row-wise function: rows never influence each other and repeated calls
// on the same input return the same output.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/tpi/internal/domain/model"
	"github.com/okian/tpi/internal/domain/table"
	"golang.org/x/sync/errgroup"
)

// Tables shorter than this are scored on the calling goroutine.
const minRowsPerWorker = 64

// Scorer computes pillar scores and the TPI.
type Scorer interface {
	// Score computes one typed record, honoring ctx for cancellation.
	Score(ctx context.Context, in model.PlayerRecord) (model.DerivedRecord, error)

	// Derive decodes and scores every row of t, in row order.
	Derive(ctx context.Context, t *table.Table) ([]model.DerivedRecord, error)

	// ScoreTable returns a copy of t with the derived columns appended.
	ScoreTable(ctx context.Context, t *table.Table) (*table.Table, error)
}

// Option applies a configuration option to the PillarScorer.
type Option func(*PillarScorer)

// WithWorkers bounds the goroutines used for one table. Values below 1
// are ignored.
func WithWorkers(n int) Option {
	return func(s *PillarScorer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// PillarScorer is the Scorer implementation. It holds no per-call state
// and is safe for concurrent use.
type PillarScorer struct {
	workers int
}

// NewPillarScorer creates a scorer. By default tables are scored
// sequentially.
func NewPillarScorer(opts ...Option) *PillarScorer {
	s := &PillarScorer{workers: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workers reports the configured worker bound.
func (s *PillarScorer) Workers() int { return s.workers }

// Compute derives the pillar scores and TPI of one record.
func Compute(in model.PlayerRecord) model.DerivedRecord {
	// Explicit conversions round each product and keep the compiler from
	// fusing multiply-adds, so every platform produces the same bits.
	tech := float64((in.GoalsPer90/goalsBenchmark)*goalsShare) +
		float64((in.ShotConvRate/conversionBenchmark)*conversionShare)
	tact := (in.PressingEfficiency + in.PositioningRating) / pairMean
	phys := (in.SprintSpeed / sprintBenchmark) * percentScale
	ment := (in.Composure + in.BigGameImpact) / pairMean

	tpi := float64(tech*weightTechnical) +
		float64(tact*weightTactical) +
		float64(phys*weightPhysical) +
		float64(ment*weightMental)

	return model.DerivedRecord{
		PlayerRecord: in,
		TechScore:    tech,
		TactScore:    tact,
		PhysScore:    phys,
		MentScore:    ment,
		TPI:          tpi,
	}
}

// PillarScores returns the four pillar scores of d keyed by pillar.
func PillarScores(d model.DerivedRecord) map[Pillar]float64 {
	return map[Pillar]float64{
		Technical: d.TechScore,
		Tactical:  d.TactScore,
		Physical:  d.PhysScore,
		Mental:    d.MentScore,
	}
}

// Score computes a score for the given input.
func (s *PillarScorer) Score(ctx context.Context, in model.PlayerRecord) (model.DerivedRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.DerivedRecord{}, fmt.Errorf("context cancelled: %w", err)
	}
	return Compute(in), nil
}

type span struct{ start, end int }

// spans splits n rows into at most s.workers contiguous ranges.
func (s *PillarScorer) spans(n int) []span {
	workers := min(s.workers, n/minRowsPerWorker)
	if workers <= 1 {
		return []span{{0, n}}
	}
	size := (n + workers - 1) / workers
	out := make([]span, 0, workers)
	for start := 0; start < n; start += size {
		out = append(out, span{start, min(start+size, n)})
	}
	return out
}

// Derive decodes and scores every row. A malformed row aborts the whole
// table; the reported error is always the lowest-index one, whatever the
// worker count.
func (s *PillarScorer) Derive(ctx context.Context, t *table.Table) ([]model.DerivedRecord, error) {
	if t == nil {
		return nil, ErrNilTable
	}
	n := t.Len()
	out := make([]model.DerivedRecord, n)
	spans := s.spans(n)
	// One slot per span; spans stop at their first bad row and do not
	// cancel each other, so the lowest failing span holds the first error.
	rowErrs := make([]error, len(spans))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for k, sp := range spans {
		g.Go(func() error {
			for i := sp.start; i < sp.end; i++ {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("context cancelled: %w", err)
				}
				rec, err := Decode(t.Row(i), i)
				if err != nil {
					rowErrs[k] = err
					return nil
				}
				out[i] = Compute(rec)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range rowErrs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ScoreTable returns a copy of t with tech_score, tact_score, phys_score,
// ment_score and TPI set on every row.
func (s *PillarScorer) ScoreTable(ctx context.Context, t *table.Table) (*table.Table, error) {
	derived, err := s.Derive(ctx, t)
	if err != nil {
		return nil, err
	}
	return Augment(t, derived)
}

// Augment copies t and writes the derived columns from derived, which must
// hold one record per row in row order. Existing columns of the same name
// are overwritten in place; new ones are appended.
func Augment(t *table.Table, derived []model.DerivedRecord) (*table.Table, error) {
	if t == nil {
		return nil, ErrNilTable
	}
	cols := model.DerivedColumns()
	values := make([][]any, len(cols))
	for j := range cols {
		values[j] = make([]any, len(derived))
	}
	for i, d := range derived {
		for j, v := range []float64{d.TechScore, d.TactScore, d.PhysScore, d.MentScore, d.TPI} {
			values[j][i] = v
		}
	}

	out := t.Clone()
	for j, col := range cols {
		if err := out.SetColumn(col, values[j]); err != nil {
			return nil, fmt.Errorf("augment %s: %w", col, err)
		}
	}
	return out, nil
}
