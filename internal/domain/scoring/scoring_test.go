package scoring_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/tpi/internal/domain/model"
	scoring "github.com/okian/tpi/internal/domain/scoring"
	"github.com/okian/tpi/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func sampleRecord() model.PlayerRecord {
	return model.PlayerRecord{
		Player:             "Player_A",
		GoalsPer90:         0.65,
		ShotConvRate:       22,
		PressingEfficiency: 75,
		PositioningRating:  80,
		SprintSpeed:        32.5,
		Composure:          85,
		BigGameImpact:      70,
	}
}

func sampleRow() table.Row {
	return table.Row(sampleRecord().Values())
}

// syntheticRow builds a distinct, valid row from i.
func syntheticRow(i int) table.Row {
	f := float64(i)
	return table.Row{
		"player":              fmt.Sprintf("p-%04d", i),
		"goals_per_90":        f / 1000,
		"shot_conv_rate":      float64(i % 35),
		"pressing_efficiency": float64(i % 100),
		"positioning_rating":  float64((i * 7) % 100),
		"sprint_speed":        20 + float64(i%15),
		"composure":           float64((i * 3) % 100),
		"big_game_impact":     float64((i * 11) % 100),
	}
}

func TestCompute(t *testing.T) {
	Convey("Given the sample player", t, func() {
		d := scoring.Compute(sampleRecord())

		Convey("Then each pillar should match the reference values", func() {
			So(d.TechScore, ShouldAlmostEqual, 68.33333333333333, tolerance)
			So(d.TactScore, ShouldEqual, 77.5)
			So(d.PhysScore, ShouldAlmostEqual, 92.85714285714286, tolerance)
			So(d.MentScore, ShouldEqual, 77.5)
		})

		Convey("Then the TPI should be 78.1310 to four decimals", func() {
			So(d.TPI, ShouldAlmostEqual, 78.13095238095238, tolerance)
			So(fmt.Sprintf("%.4f", d.TPI), ShouldEqual, "78.1310")
		})

		Convey("Then the inputs should be carried through unchanged", func() {
			So(d.PlayerRecord, ShouldResemble, sampleRecord())
		})
	})

	Convey("Given zero goals and zero conversion", t, func() {
		rec := sampleRecord()
		rec.GoalsPer90 = 0
		rec.ShotConvRate = 0

		Convey("Then the technical score should be exactly zero", func() {
			So(scoring.Compute(rec).TechScore, ShouldEqual, 0.0)
		})
	})

	Convey("Given an all-zero record", t, func() {
		Convey("Then every derived value should be zero", func() {
			d := scoring.Compute(model.PlayerRecord{})
			So(d.TechScore, ShouldEqual, 0.0)
			So(d.TactScore, ShouldEqual, 0.0)
			So(d.PhysScore, ShouldEqual, 0.0)
			So(d.MentScore, ShouldEqual, 0.0)
			So(d.TPI, ShouldEqual, 0.0)
		})
	})

	Convey("Given a record exactly at every benchmark", t, func() {
		rec := model.PlayerRecord{
			GoalsPer90: 1, ShotConvRate: 30, PressingEfficiency: 100, PositioningRating: 100,
			SprintSpeed: 35, Composure: 100, BigGameImpact: 100,
		}

		Convey("Then every pillar and the TPI should be 100", func() {
			d := scoring.Compute(rec)
			So(d.TechScore, ShouldAlmostEqual, 100, tolerance)
			So(d.PhysScore, ShouldAlmostEqual, 100, tolerance)
			So(d.TPI, ShouldAlmostEqual, 100, tolerance)
		})
	})

	Convey("Given values above the benchmarks", t, func() {
		rec := sampleRecord()
		rec.SprintSpeed = 70

		Convey("Then scores should not be clamped", func() {
			So(scoring.Compute(rec).PhysScore, ShouldAlmostEqual, 200, tolerance)
		})
	})
}

func TestWeights(t *testing.T) {
	Convey("Given the weight table", t, func() {
		Convey("Then the weights should sum to exactly one", func() {
			So(scoring.WeightSum(), ShouldEqual, 1.0)
		})

		Convey("Then each pillar should carry its fixed weight", func() {
			So(scoring.Weights(), ShouldResemble, map[scoring.Pillar]float64{
				scoring.Technical: 0.35,
				scoring.Tactical:  0.25,
				scoring.Physical:  0.25,
				scoring.Mental:    0.15,
			})
			So(scoring.Weight("speed"), ShouldEqual, 0.0)
		})

		Convey("Then a returned copy should not alter later reads", func() {
			w := scoring.Weights()
			w[scoring.Technical] = 1
			So(scoring.Weight(scoring.Technical), ShouldEqual, 0.35)
		})

		Convey("Then the benchmarks should be the fixed denominators", func() {
			So(scoring.DefaultBenchmarks(), ShouldResemble, scoring.Benchmarks{GoalsPer90: 1, ShotConvRate: 30, SprintSpeed: 35})
		})
	})
}

func TestPillarScorer_Score(t *testing.T) {
	Convey("Given a pillar scorer", t, func() {
		scorer := scoring.NewPillarScorer()

		Convey("When scoring the same record twice", func() {
			a, errA := scorer.Score(context.Background(), sampleRecord())
			b, errB := scorer.Score(context.Background(), sampleRecord())

			Convey("Then results should be identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := scorer.Score(ctx, sampleRecord())

			Convey("Then it should return the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(res, ShouldResemble, model.DerivedRecord{})
			})
		})
	})
}

func TestPillarScorer_ScoreTable(t *testing.T) {
	Convey("Given a one-row sample table", t, func() {
		scorer := scoring.NewPillarScorer()
		in := table.New([]string{"player", "goals_per_90", "shot_conv_rate", "pressing_efficiency",
			"positioning_rating", "sprint_speed", "composure", "big_game_impact"}, sampleRow())

		Convey("When the table is scored", func() {
			out, err := scorer.ScoreTable(context.Background(), in)

			Convey("Then the five derived columns should be appended in order", func() {
				So(err, ShouldBeNil)
				cols := out.Columns()
				So(cols[len(cols)-5:], ShouldResemble, []string{"tech_score", "tact_score", "phys_score", "ment_score", "TPI"})
				tpi, ok := out.Value(0, "TPI")
				So(ok, ShouldBeTrue)
				So(tpi, ShouldAlmostEqual, 78.13095238095238, tolerance)
			})

			Convey("And the input table should be left untouched", func() {
				So(in.HasColumn("TPI"), ShouldBeFalse)
			})
		})

		Convey("When the table already carries a TPI column", func() {
			row := sampleRow()
			row["TPI"] = -1.0
			withTPI := table.New([]string{"TPI", "player"}, row)
			out, err := scorer.ScoreTable(context.Background(), withTPI)

			Convey("Then it should be overwritten in place", func() {
				So(err, ShouldBeNil)
				So(out.Columns()[0], ShouldEqual, "TPI")
				tpi, _ := out.Value(0, "TPI")
				So(tpi, ShouldAlmostEqual, 78.13095238095238, tolerance)
			})
		})

		Convey("When extra columns are present", func() {
			row := sampleRow()
			row["position"] = "FW"
			out, err := scorer.ScoreTable(context.Background(), table.New(nil, row))

			Convey("Then they should pass through", func() {
				So(err, ShouldBeNil)
				v, _ := out.Value(0, "position")
				So(v, ShouldEqual, "FW")
			})
		})

		Convey("When the table is empty", func() {
			out, err := scorer.ScoreTable(context.Background(), table.New([]string{"player"}))

			Convey("Then the derived columns should still be added", func() {
				So(err, ShouldBeNil)
				So(out.Len(), ShouldEqual, 0)
				So(out.HasColumn("TPI"), ShouldBeTrue)
			})
		})

		Convey("When the table is nil", func() {
			_, err := scorer.ScoreTable(context.Background(), nil)

			Convey("Then it should fail", func() {
				So(errors.Is(err, scoring.ErrNilTable), ShouldBeTrue)
			})
		})
	})
}

func TestPillarScorer_Errors(t *testing.T) {
	Convey("Given a scorer and a table with a malformed row", t, func() {
		scorer := scoring.NewPillarScorer()

		Convey("When a required column is absent", func() {
			row := sampleRow()
			delete(row, "composure")
			_, err := scorer.ScoreTable(context.Background(), table.New(nil, sampleRow(), row))

			Convey("Then a missing field error should name the row and field", func() {
				So(errors.Is(err, scoring.ErrMissingField), ShouldBeTrue)
				var fe *scoring.FieldError
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Row, ShouldEqual, 1)
				So(fe.Field, ShouldEqual, "composure")
				So(scoring.ErrorKind(err), ShouldEqual, scoring.KindMissingField)
			})
		})

		Convey("When a cell is nil", func() {
			row := sampleRow()
			row["sprint_speed"] = nil
			_, err := scorer.ScoreTable(context.Background(), table.New(nil, row))

			Convey("Then it should count as missing", func() {
				So(errors.Is(err, scoring.ErrMissingField), ShouldBeTrue)
			})
		})

		Convey("When a cell is not numeric", func() {
			row := sampleRow()
			row["shot_conv_rate"] = "22"
			_, err := scorer.ScoreTable(context.Background(), table.New(nil, row))

			Convey("Then a type mismatch should be reported with the value", func() {
				So(errors.Is(err, scoring.ErrTypeMismatch), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, `"shot_conv_rate"`)
				So(err.Error(), ShouldContainSubstring, "string")
				So(scoring.ErrorKind(err), ShouldEqual, scoring.KindTypeMismatch)
			})
		})

		Convey("When several rows are malformed and scoring runs in parallel", func() {
			rows := make([]table.Row, 1000)
			for i := range rows {
				rows[i] = syntheticRow(i)
			}
			rows[900]["composure"] = true
			delete(rows[300], "goals_per_90")
			parallel := scoring.NewPillarScorer(scoring.WithWorkers(8))
			_, err := parallel.ScoreTable(context.Background(), table.New(nil, rows...))

			Convey("Then the lowest-index error should be reported", func() {
				var fe *scoring.FieldError
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Row, ShouldEqual, 300)
				So(fe.Field, ShouldEqual, "goals_per_90")
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := scorer.ScoreTable(ctx, table.New(nil, sampleRow()))

			Convey("Then the table should be aborted", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(scoring.ErrorKind(err), ShouldEqual, scoring.KindCanceled)
			})
		})
	})
}

func TestPillarScorer_Parallel(t *testing.T) {
	Convey("Given a large table", t, func() {
		rows := make([]table.Row, 2000)
		for i := range rows {
			rows[i] = syntheticRow(i)
		}
		in := table.New(nil, rows...)

		Convey("When scored sequentially and in parallel", func() {
			seq, errSeq := scoring.NewPillarScorer().ScoreTable(context.Background(), in)
			par, errPar := scoring.NewPillarScorer(scoring.WithWorkers(7)).ScoreTable(context.Background(), in)

			Convey("Then both results should be identical and ordered", func() {
				So(errSeq, ShouldBeNil)
				So(errPar, ShouldBeNil)
				So(par.Rows(), ShouldResemble, seq.Rows())
				for i := 0; i < in.Len(); i += 250 {
					p, _ := par.Value(i, "player")
					So(p, ShouldEqual, fmt.Sprintf("p-%04d", i))
				}
			})
		})

		Convey("When one row changes", func() {
			changed := in.Rows()
			changed[10]["sprint_speed"] = 35.0
			base, _ := scoring.NewPillarScorer().ScoreTable(context.Background(), in)
			other, _ := scoring.NewPillarScorer().ScoreTable(context.Background(), table.New(nil, changed...))

			Convey("Then only that row's derived values should differ", func() {
				for i := 0; i < in.Len(); i++ {
					a, _ := base.Value(i, "TPI")
					b, _ := other.Value(i, "TPI")
					if i == 10 {
						So(a, ShouldNotEqual, b)
						continue
					}
					if a != b {
						So(a, ShouldEqual, b)
					}
				}
			})
		})
	})

	Convey("Given worker options", t, func() {
		So(scoring.NewPillarScorer().Workers(), ShouldEqual, 1)
		So(scoring.NewPillarScorer(scoring.WithWorkers(0)).Workers(), ShouldEqual, 1)
		So(scoring.NewPillarScorer(scoring.WithWorkers(6)).Workers(), ShouldEqual, 6)
	})
}
