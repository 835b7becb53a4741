package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegisterer(registry))

			Convey("Then it should use the tpi namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "tpi")
				So(manager.subsystem, ShouldEqual, "scoring")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("custom"),
				WithSubsystem("players"),
				WithMetricPrefix("v2"),
				WithLatencyBuckets([]float64{0.1, 0.5, 1.0}),
				WithScoreBuckets([]float64{50, 100}),
				WithMetricsEnabled(true),
				WithRefreshInterval(3*time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithRegisterer(registry),
			)
			manager.RecordTableScored(2, 0.3)

			Convey("Then collectors should be registered under the custom names", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "custom_players_v2_tables_scored_total")
				So(manager.refreshInterval, ShouldEqual, 3*time.Second)
				So(manager.scoreBuckets, ShouldResemble, []float64{50, 100})
				So(manager.constLabels, ShouldResemble, map[string]string{"env": "test"})
			})
		})

		Convey("When empty option values are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithLatencyBuckets(nil),
				WithScoreBuckets(nil),
				WithRefreshInterval(0),
				WithRegisterer(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "tpi")
				So(manager.subsystem, ShouldEqual, "scoring")
				So(manager.latencyBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.scoreBuckets, ShouldResemble, defaultScoreBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithRegisterer(registry))

		Convey("When rows and a table are recorded", func() {
			pillars := map[string]float64{"technical": 68.3, "tactical": 77.5, "physical": 92.9, "mental": 77.5}
			manager.RecordRowScored(78.13, pillars)
			manager.RecordRowScored(50, pillars)
			manager.RecordTableScored(2, 0.4)

			Convey("Then counters should reflect them", func() {
				So(testutil.ToFloat64(manager.rowsScored), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.tablesScored), ShouldEqual, 1)
				So(testutil.CollectAndCount(manager.pillarScore), ShouldEqual, 4)
			})
		})

		Convey("When scoring errors are recorded by kind", func() {
			manager.RecordScoringError("missing_field")
			manager.RecordScoringError("missing_field")
			manager.RecordScoringError("type_mismatch")

			Convey("Then each kind should be counted separately", func() {
				So(testutil.ToFloat64(manager.scoringErrors.WithLabelValues("missing_field")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.scoringErrors.WithLabelValues("type_mismatch")), ShouldEqual, 1)
			})
		})

		Convey("When the manager is disabled", func() {
			disabled := NewManager(WithRegisterer(prometheus.NewRegistry()), WithMetricsEnabled(false))
			disabled.RecordRowScored(10, nil)
			disabled.RecordTableScored(1, 1)
			disabled.RecordScoringError("missing_field")

			Convey("Then nothing should be recorded", func() {
				So(testutil.ToFloat64(disabled.rowsScored), ShouldEqual, 0)
				So(testutil.ToFloat64(disabled.tablesScored), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("Then scoring recorders should not panic", func() {
			So(func() {
				RecordRowScored(78.13, map[string]float64{"technical": 68.3})
				RecordTableScored(1, 0.2)
				RecordScoringError("type_mismatch")
				UpdateScoringWorkers(4)
			}, ShouldNotPanic)
		})

		Convey("Then HTTP and error recorders should not panic", func() {
			So(func() {
				RecordHTTPRequest("/v1/score", "POST", "200")
				RecordHTTPRequestDuration("/v1/score", "POST", "200", 1.5)
				RecordRateLimited("score")
				RecordErrorByComponent("scoring", "missing_field")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("score", "POST", "client_error")
			}, ShouldNotPanic)
		})

		Convey("Then runtime recorders should not panic", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.7)
			}, ShouldNotPanic)
		})

		Convey("Then the registry should expose the recorded families", func() {
			RecordTableScored(1, 0.2)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})
	})
}
