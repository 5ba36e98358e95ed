// Package metrics provides Prometheus metrics for the xcheck log cross-checker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector xcheck exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Parsing
	logsParsed    *prometheus.CounterVec
	parseFailures *prometheus.CounterVec
	duplicateLogs prometheus.Counter

	// Cross-check
	contactsValidated *prometheus.CounterVec
	shadowPromotions  *prometheus.CounterVec
	validationLatency prometheus.Histogram
	runDuration       *prometheus.HistogramVec
	participants      *prometheus.GaugeVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Standings repository
	standingsRecords        *prometheus.GaugeVec
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Results database
	dbWriteLatency prometheus.Histogram
	dbRowsWritten  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go runtime collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "xcheck",
		subsystem:        "crosscheck",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.logsParsed = m.counterVec("logs_parsed_total", "Participant logs parsed, by mode", "mode")
	m.parseFailures = m.counterVec("parse_failures_total", "QSO lines rejected by the parser, by failure kind", "kind")
	m.duplicateLogs = m.counter("duplicate_logs_total", "Log submissions ignored because the call already submitted for the mode")

	m.contactsValidated = m.counterVec("contacts_validated_total", "Contact outcomes, by status and reason", "status", "reason")
	m.shadowPromotions = m.counterVec("shadow_promotions_total", "Contacts with shadow stations promoted to FULL, by mode", "mode")
	m.validationLatency = m.histogram("validation_latency_milliseconds", "Time to validate one participant log")
	m.runDuration = m.histogramVec("run_duration_seconds", "Wall time of a cross-check batch, by mode",
		prometheus.ExponentialBuckets(0.01, 4, 8), "mode")
	m.participants = m.gaugeVec("participants", "Participants in the last batch, by mode", "mode")

	m.queueSize = m.gauge("queue_size", "Validation jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Validation queue capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Validation jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Validation jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Validation jobs rejected by the queue")

	m.workerCount = m.gauge("worker_count", "Validation workers running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spent on one job")
	m.workerErrors = m.counter("worker_errors_total", "Validation jobs that failed")

	m.standingsRecords = m.gaugeVec("standings_records", "Participants held in the standings store, by mode", "mode")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Standings upsert latency")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Standings query latency")

	m.dbWriteLatency = m.histogram("db_write_latency_milliseconds", "Results database write latency per run")
	m.dbRowsWritten = m.counterVec("db_rows_written_total", "Rows written to the results database, by table", "table")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "type")
}

// RecordLogParsed counts a parsed participant log.
func RecordLogParsed(mode string) {
	globalManager.logsParsed.WithLabelValues(mode).Inc()
}

// RecordParseFailure counts a rejected QSO line.
func RecordParseFailure(kind string) {
	globalManager.parseFailures.WithLabelValues(kind).Inc()
}

// RecordDuplicateLog counts an ignored duplicate submission.
func RecordDuplicateLog() {
	globalManager.duplicateLogs.Inc()
}

// RecordContactValidated counts one contact outcome.
func RecordContactValidated(status, reason string) {
	globalManager.contactsValidated.WithLabelValues(status, reason).Inc()
}

// RecordShadowPromotions adds n promoted contacts for mode.
func RecordShadowPromotions(mode string, n int) {
	globalManager.shadowPromotions.WithLabelValues(mode).Add(float64(n))
}

// RecordValidationLatency records how long one log took to validate.
func RecordValidationLatency(latencyMs float64) {
	globalManager.validationLatency.Observe(latencyMs)
}

// RecordRunDuration records the wall time of a batch.
func RecordRunDuration(mode string, seconds float64) {
	globalManager.runDuration.WithLabelValues(mode).Observe(seconds)
}

// UpdateParticipants sets the participant count of the last batch for mode.
func UpdateParticipants(mode string, n int) {
	globalManager.participants.WithLabelValues(mode).Set(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a delivered job.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected job.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-job worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateStandingsRecords sets the number of entries in a standings table.
func UpdateStandingsRecords(mode string, count int) {
	globalManager.standingsRecords.WithLabelValues(mode).Set(float64(count))
}

// RecordRepositoryUpdateLatency records standings upsert latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records standings query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordDBWriteLatency records results database write latency.
func RecordDBWriteLatency(latencyMs float64) {
	globalManager.dbWriteLatency.Observe(latencyMs)
}

// RecordDBRowsWritten adds n rows written to table.
func RecordDBRowsWritten(table string, n int) {
	globalManager.dbRowsWritten.WithLabelValues(table).Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
