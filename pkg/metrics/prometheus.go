// Package metrics provides Prometheus metrics for the TPI scoring service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// defaultScoreBuckets cover the nominal 0-100 range with headroom for
// out-of-benchmark inputs.
var defaultScoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 125, 150} //nolint:gochecknoglobals // bucket layout

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	latencyBuckets  []float64
	scoreBuckets    []float64
	enabled         bool
	refreshInterval time.Duration
	constLabels     map[string]string
	metricPrefix    string
	registry        prometheus.Registerer

	// Scoring
	rowsScored     prometheus.Counter
	tablesScored   prometheus.Counter
	scoringErrors  *prometheus.CounterVec
	tpiScore       prometheus.Histogram
	pillarScore    *prometheus.HistogramVec
	tableLatency   prometheus.Histogram
	tableSize      prometheus.Histogram
	scoringWorkers prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "tpi",
		subsystem:       "scoring",
		latencyBuckets:  prometheus.DefBuckets,
		scoreBuckets:    defaultScoreBuckets,
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		constLabels:     make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// name applies the optional metric prefix.
func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.rowsScored = auto.NewCounter(m.counterOpts("rows_scored_total",
		"Total number of player rows scored"))
	m.tablesScored = auto.NewCounter(m.counterOpts("tables_scored_total",
		"Total number of tables scored successfully"))
	m.scoringErrors = auto.NewCounterVec(m.counterOpts("errors_total",
		"Tables rejected during scoring, by error kind"), []string{"kind"})
	m.tpiScore = auto.NewHistogram(m.histogramOpts("tpi",
		"Distribution of computed Total Performance Index values", m.scoreBuckets))
	m.pillarScore = auto.NewHistogramVec(m.histogramOpts("pillar_score",
		"Distribution of computed pillar scores", m.scoreBuckets), []string{"pillar"})
	m.tableLatency = auto.NewHistogram(m.histogramOpts("table_latency_milliseconds",
		"Time spent scoring one table in milliseconds", m.latencyBuckets))
	m.tableSize = auto.NewHistogram(m.histogramOpts("table_rows",
		"Number of rows per scored table", prometheus.ExponentialBuckets(1, 4, 8)))
	m.scoringWorkers = auto.NewGauge(m.gaugeOpts("workers",
		"Configured upper bound of goroutines scoring one table"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.httpRateLimited = auto.NewCounterVec(m.counterOpts("http_rate_limited_total",
		"Requests rejected by the rate limiter"), []string{"endpoint"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and error type"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Errors by HTTP endpoint and method"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}))
}

// RecordRowScored records one scored row: its TPI and pillar scores.
func (m *Manager) RecordRowScored(tpi float64, pillars map[string]float64) {
	if !m.enabled {
		return
	}
	m.rowsScored.Inc()
	m.tpiScore.Observe(tpi)
	for pillar, v := range pillars {
		m.pillarScore.WithLabelValues(pillar).Observe(v)
	}
}

// RecordTableScored records a successful table pass.
func (m *Manager) RecordTableScored(rows int, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.tablesScored.Inc()
	m.tableSize.Observe(float64(rows))
	m.tableLatency.Observe(latencyMs)
}

// RecordScoringError records a rejected table by error kind.
func (m *Manager) RecordScoringError(kind string) {
	if !m.enabled {
		return
	}
	m.scoringErrors.WithLabelValues(kind).Inc()
}

// RecordRowScored records a scored row on the global manager.
func RecordRowScored(tpi float64, pillars map[string]float64) {
	globalManager.RecordRowScored(tpi, pillars)
}

// RecordTableScored records a scored table on the global manager.
func RecordTableScored(rows int, latencyMs float64) {
	globalManager.RecordTableScored(rows, latencyMs)
}

// RecordScoringError records a scoring failure on the global manager.
func RecordScoringError(kind string) {
	globalManager.RecordScoringError(kind)
}

// UpdateScoringWorkers sets the configured scoring worker bound.
func UpdateScoringWorkers(count int) {
	globalManager.scoringWorkers.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited records a request rejected by the limiter.
func RecordRateLimited(endpoint string) {
	globalManager.httpRateLimited.WithLabelValues(endpoint).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval reports how often runtime gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
