// Package metrics provides Prometheus metrics for the gridiron play simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the simulator.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	tickBuckets    []float64
	scoreBuckets   []float64
	registry       prometheus.Registerer

	// Simulation metrics
	snaps              prometheus.Counter
	throws             *prometheus.CounterVec
	catchProbability   prometheus.Histogram
	releaseOpenness    prometheus.Histogram
	tickLatency        prometheus.Histogram
	liveSessions       prometheus.Gauge
	alignmentCacheHits *prometheus.CounterVec
	streamClients      prometheus.Gauge

	// Command metrics
	commandsEnqueued  *prometheus.CounterVec
	commandsRejected  *prometheus.CounterVec
	commandsDuplicate prometheus.Counter
	commandQueueSize  prometheus.Gauge

	// Summary queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Grading metrics
	gradingLatency          prometheus.Histogram
	gradedThrows            *prometheus.CounterVec
	gradingErrors           prometheus.Counter
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Throw store metrics
	storeRecords       prometheus.Gauge
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var defaultTickBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 33} //nolint:gochecknoglobals // bucket layout

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "gridiron",
		subsystem:      "playsim",
		latencyBuckets: prometheus.DefBuckets,
		tickBuckets:    defaultTickBuckets,
		scoreBuckets:   prometheus.LinearBuckets(0, 0.1, 11),
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.snaps = m.counter("snaps_total", "Total number of plays snapped")
	m.throws = m.counterVec("throws_total", "Total number of resolved throws by outcome", "outcome")
	m.catchProbability = m.histogram("catch_probability", "Catch probability at resolution", m.scoreBuckets)
	m.releaseOpenness = m.histogram("release_openness", "Target openness score at release", m.scoreBuckets)
	m.tickLatency = m.histogram("tick_latency_milliseconds", "Frame scheduler tick latency in milliseconds", m.tickBuckets)
	m.liveSessions = m.gauge("live_sessions", "Number of live sessions")
	m.alignmentCacheHits = m.counterVec("alignment_cache_lookups_total", "Alignment cache lookups by result", "result")
	m.streamClients = m.gauge("stream_clients", "Number of connected frame stream clients")

	m.commandsEnqueued = m.counterVec("commands_enqueued_total", "Total number of commands accepted onto a session queue", "kind")
	m.commandsRejected = m.counterVec("commands_rejected_total", "Total number of commands the engine rejected", "kind", "reason")
	m.commandsDuplicate = m.counter("commands_duplicate_total", "Total number of duplicate commands acknowledged but not applied")
	m.commandQueueSize = m.gauge("command_queue_size", "Commands waiting across all session queues")

	m.queueSize = m.gauge("summary_queue_size", "Current size of the throw summary queue")
	m.queueCapacity = m.gauge("summary_queue_capacity", "Maximum throw summary queue capacity")
	m.queueUtilization = m.gauge("summary_queue_utilization_ratio", "Summary queue utilization ratio (current size / capacity)")
	m.queueEnqueue = m.counter("summary_queue_enqueue_total", "Total number of summaries enqueued")
	m.queueDequeue = m.counter("summary_queue_dequeue_total", "Total number of summaries dequeued")
	m.queueEnqueueErrors = m.counter("summary_queue_enqueue_errors_total", "Total number of summary enqueue failures")

	m.gradingLatency = m.histogram("grading_latency_milliseconds", "Histogram of grading latency in milliseconds", m.latencyBuckets)
	m.gradedThrows = m.counterVec("graded_throws_total", "Total number of graded throws by letter", "grade")
	m.gradingErrors = m.counter("grading_errors_total", "Total number of grading errors")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of active grading workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.latencyBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	m.storeRecords = m.gauge("store_records_total", "Number of graded throws held in the store")
	m.storeUpdateLatency = m.histogram("store_update_latency_milliseconds", "Throw store update latency in milliseconds", m.latencyBuckets)
	m.storeQueryLatency = m.histogram("store_query_latency_milliseconds", "Throw store query latency in milliseconds", m.latencyBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Simulation Metrics Functions.

// RecordSnap increments the snaps counter.
func RecordSnap() {
	globalManager.snaps.Inc()
}

// RecordThrow records a resolved throw.
func RecordThrow(outcome string, probability float64) {
	globalManager.throws.WithLabelValues(outcome).Inc()
	globalManager.catchProbability.Observe(probability)
}

// RecordReleaseOpenness records the target's openness at release.
func RecordReleaseOpenness(score float64) {
	globalManager.releaseOpenness.Observe(score)
}

// RecordTickLatency records one frame scheduler pass.
func RecordTickLatency(latencyMs float64) {
	globalManager.tickLatency.Observe(latencyMs)
}

// UpdateLiveSessions sets the live session count.
func UpdateLiveSessions(count int) {
	globalManager.liveSessions.Set(float64(count))
}

// RecordAlignmentCache records alignment cache hits and misses since the
// last call.
func RecordAlignmentCache(hits, misses uint64) {
	globalManager.alignmentCacheHits.WithLabelValues("hit").Add(float64(hits))
	globalManager.alignmentCacheHits.WithLabelValues("miss").Add(float64(misses))
}

// UpdateStreamClients adjusts the connected stream client count.
func UpdateStreamClients(delta int) {
	globalManager.streamClients.Add(float64(delta))
}

// Command Metrics Functions.

// RecordCommandEnqueued counts a queued command.
func RecordCommandEnqueued(kind string) {
	globalManager.commandsEnqueued.WithLabelValues(kind).Inc()
}

// RecordCommandRejected counts a command the engine refused.
func RecordCommandRejected(kind, reason string) {
	globalManager.commandsRejected.WithLabelValues(kind, reason).Inc()
}

// RecordCommandDuplicate counts a deduplicated command.
func RecordCommandDuplicate() {
	globalManager.commandsDuplicate.Inc()
}

// AddCommandQueueSize adjusts the pending command count.
func AddCommandQueueSize(delta int) {
	globalManager.commandQueueSize.Add(float64(delta))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current summary queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum summary queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the summary queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Grading Metrics Functions.

// RecordGradingLatency records grading latency in milliseconds.
func RecordGradingLatency(latencyMs float64) {
	globalManager.gradingLatency.Observe(latencyMs)
}

// RecordGradedThrow counts a graded throw.
func RecordGradedThrow(grade string) {
	globalManager.gradedThrows.WithLabelValues(grade).Inc()
}

// RecordGradingError increments the grading errors counter.
func RecordGradingError() {
	globalManager.gradingErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Store Metrics Functions.

// UpdateStoreRecords sets the number of stored throws.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// RecordStoreUpdateLatency records store update latency.
func RecordStoreUpdateLatency(latencyMs float64) {
	globalManager.storeUpdateLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records store query latency.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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
