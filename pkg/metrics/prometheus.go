// Package metrics provides Prometheus metrics for the swing analysis service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Analysis outcomes
	analyses          *prometheus.CounterVec
	classifications   *prometheus.CounterVec
	recoveries        *prometheus.CounterVec
	inferenceErrors   *prometheus.CounterVec
	pipelineLatency   prometheus.Histogram
	classifierLatency prometheus.Histogram

	// Submissions
	submissions          prometheus.Counter
	submissionsDuplicate prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storeRecords prometheus.Gauge
	storeLatency *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "swinglab",
		subsystem:        "analysis",
		histogramBuckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.analyses = auto.NewCounterVec(m.counter("analyses_total", "Completed analyses by extraction status and reliability tier"), []string{"status", "tier"})
	m.classifications = auto.NewCounterVec(m.counter("classifications_total", "Classifier answers by label"), []string{"label"})
	m.recoveries = auto.NewCounterVec(m.counter("plane_recoveries_total", "Swing plane recoveries by fallback step"), []string{"step"})
	m.inferenceErrors = auto.NewCounterVec(m.counter("inference_errors_total", "Failed analyses by error kind"), []string{"kind"})
	m.pipelineLatency = auto.NewHistogram(m.histogram("pipeline_latency_milliseconds", "End to end pipeline latency in milliseconds"))
	m.classifierLatency = auto.NewHistogram(m.histogram("classifier_latency_milliseconds", "Classifier call latency in milliseconds"))

	m.submissions = auto.NewCounter(m.counter("submissions_total", "Accepted asynchronous submissions"))
	m.submissionsDuplicate = auto.NewCounter(m.counter("submissions_duplicate_total", "Submissions rejected as duplicates"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueue_total", "Jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeue_total", "Jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Jobs rejected by a full or closed queue"))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured workers"))
	m.workerActiveCount = auto.NewGauge(m.gauge("worker_active_count", "Workers currently running an analysis"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job in milliseconds"))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Jobs that ended in an error"))

	m.storeRecords = auto.NewGauge(m.gauge("store_records", "Analysis records held by the store"))
	m.storeLatency = auto.NewHistogramVec(m.histogram("store_latency_milliseconds", "Store operation latency in milliseconds"), []string{"op"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	gc := m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds")
	gc.Buckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	m.systemGCPauseTime = auto.NewHistogram(gc)
}

// RecordAnalysis counts a finished analysis.
func RecordAnalysis(status, tier string) {
	globalManager.analyses.WithLabelValues(status, tier).Inc()
}

// RecordClassification counts a classifier label.
func RecordClassification(label string) {
	globalManager.classifications.WithLabelValues(label).Inc()
}

// RecordRecovery counts a swing plane recovery.
func RecordRecovery(step string) {
	globalManager.recoveries.WithLabelValues(step).Inc()
}

// RecordInferenceError counts a failed analysis.
func RecordInferenceError(kind string) {
	globalManager.inferenceErrors.WithLabelValues(kind).Inc()
}

// RecordPipelineLatency records end to end pipeline latency.
func RecordPipelineLatency(latencyMs float64) {
	globalManager.pipelineLatency.Observe(latencyMs)
}

// RecordClassifierLatency records the classifier call latency.
func RecordClassifierLatency(latencyMs float64) {
	globalManager.classifierLatency.Observe(latencyMs)
}

// RecordSubmission counts an accepted submission.
func RecordSubmission() {
	globalManager.submissions.Inc()
}

// RecordSubmissionDuplicate counts a duplicate submission.
func RecordSubmissionDuplicate() {
	globalManager.submissionsDuplicate.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
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

// UpdateStoreRecords sets the number of stored records.
func UpdateStoreRecords(count int) {
	globalManager.storeRecords.Set(float64(count))
}

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
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
