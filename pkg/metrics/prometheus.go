// Package metrics provides Prometheus metrics for the AttriWatch scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scoring modes used as label values.
const (
	ModeSingle = "single"
	ModeBatch  = "batch"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Scoring
	recordsScored    *prometheus.CounterVec
	priorityFlags    *prometheus.CounterVec
	derivationErrors *prometheus.CounterVec
	modelLatency     *prometheus.HistogramVec
	modelErrors      *prometheus.CounterVec
	modelInfo        *prometheus.GaugeVec
	batchRows        prometheus.Histogram
	adviceLines      prometheus.Counter
	workersBusy      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "attriwatch",
		subsystem:      "scoring",
		latencyBuckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.recordsScored = auto.NewCounterVec(
		m.counterOpts("records_scored_total", "Employee records scored by both models"),
		[]string{"mode"},
	)
	m.priorityFlags = auto.NewCounterVec(
		m.counterOpts("priority_flags_total", "Records flagged as high performers at risk of leaving"),
		[]string{"mode"},
	)
	m.derivationErrors = auto.NewCounterVec(
		m.counterOpts("record_errors_total", "Records rejected before or during scoring, by error kind"),
		[]string{"mode", "kind"},
	)
	m.modelLatency = auto.NewHistogramVec(
		m.histogramOpts("model_latency_milliseconds", "Model inference latency in milliseconds", m.latencyBuckets),
		[]string{"model"},
	)
	m.modelErrors = auto.NewCounterVec(
		m.counterOpts("model_errors_total", "Model inference failures"),
		[]string{"model"},
	)
	m.modelInfo = auto.NewGaugeVec(
		m.gaugeOpts("model_info", "Loaded model artifacts (value is always 1)"),
		[]string{"model", "version", "format"},
	)
	m.batchRows = auto.NewHistogram(
		m.histogramOpts("batch_rows", "Rows per uploaded batch", prometheus.ExponentialBuckets(1, 4, 8)),
	)
	m.adviceLines = auto.NewCounter(
		m.counterOpts("advice_lines_total", "Retention advice lines produced for priority records"),
	)
	m.workersBusy = auto.NewGauge(m.gaugeOpts("workers_busy", "Batch workers currently scoring a row"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordScored counts one record scored by both models.
func RecordScored(mode string) {
	globalManager.recordsScored.WithLabelValues(mode).Inc()
}

// RecordPriority counts one priority flag.
func RecordPriority(mode string) {
	globalManager.priorityFlags.WithLabelValues(mode).Inc()
}

// RecordRecordError counts a rejected record by error kind.
func RecordRecordError(mode, kind string) {
	globalManager.derivationErrors.WithLabelValues(mode, kind).Inc()
}

// RecordModelLatency observes inference latency for a model.
func RecordModelLatency(model string, latencyMs float64) {
	globalManager.modelLatency.WithLabelValues(model).Observe(latencyMs)
}

// RecordModelError counts an inference failure.
func RecordModelError(model string) {
	globalManager.modelErrors.WithLabelValues(model).Inc()
}

// SetModelInfo publishes the identity of a loaded model.
func SetModelInfo(model, version, format string) {
	globalManager.modelInfo.WithLabelValues(model, version, format).Set(1)
}

// RecordBatchRows observes the size of one batch.
func RecordBatchRows(rows int) {
	globalManager.batchRows.Observe(float64(rows))
}

// RecordAdviceLines adds produced advice lines.
func RecordAdviceLines(n int) {
	globalManager.adviceLines.Add(float64(n))
}

// WorkerStarted marks one batch worker busy.
func WorkerStarted() {
	globalManager.workersBusy.Inc()
}

// WorkerFinished marks one batch worker idle.
func WorkerFinished() {
	globalManager.workersBusy.Dec()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap in bytes.
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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
