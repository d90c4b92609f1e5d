// Package metrics provides Prometheus metrics for the puttrack service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline
	framesProcessed   prometheus.Counter
	framesRejected    *prometheus.CounterVec
	puttEvents        *prometheus.CounterVec
	classifyLatency   prometheus.Histogram
	attemptDuration   prometheus.Histogram
	activeSessions    prometheus.Gauge
	sessionsStarted   prometheus.Counter
	sessionsEnded     prometheus.Counter
	repositoryLatency *prometheus.HistogramVec

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

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry served on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "puttrack",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.framesProcessed = m.counter("frames_processed_total", "Total number of frames run through a classifier")
	m.framesRejected = m.counterVec("frames_rejected_total", "Frames refused before or during classification", "reason")
	m.puttEvents = m.counterVec("putt_events_total", "Putt events emitted by classification and outcome", "classification", "outcome")
	m.classifyLatency = m.histogram("classify_latency_milliseconds", "Time spent classifying one frame", m.histogramBuckets)
	m.attemptDuration = m.histogram("attempt_duration_seconds", "Seconds between ramp entry and the attempt outcome",
		[]float64{0.25, 0.5, 1, 1.5, 2, 3, 4, 6, 10})
	m.activeSessions = m.gauge("active_sessions", "Number of live sessions")
	m.sessionsStarted = m.counter("sessions_started_total", "Total number of sessions started")
	m.sessionsEnded = m.counter("sessions_ended_total", "Total number of sessions ended")
	m.repositoryLatency = m.histogramVec("repository_latency_milliseconds", "Repository operation latency", "op")

	m.queueSize = m.gauge("queue_size", "Frames waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Total queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue fill ratio between 0 and 1")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Frames enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Frames dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue attempts refused")

	m.workerCount = m.gauge("worker_count", "Configured worker count")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently processing a frame")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time from dequeue to processed frame", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Frames a worker failed to process")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration",
		"endpoint", "method", "status_code")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause", m.histogramBuckets)

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")
}

// RecordFrameProcessed counts a classified frame.
func RecordFrameProcessed() { globalManager.framesProcessed.Inc() }

// RecordFrameRejected counts a refused frame under reason.
func RecordFrameRejected(reason string) { globalManager.framesRejected.WithLabelValues(reason).Inc() }

// RecordPuttEvent counts an emitted putt event.
func RecordPuttEvent(classification, outcome string) {
	globalManager.puttEvents.WithLabelValues(classification, outcome).Inc()
}

// RecordClassifyLatency observes per-frame classification latency.
func RecordClassifyLatency(latencyMs float64) { globalManager.classifyLatency.Observe(latencyMs) }

// RecordAttemptDuration observes how long an attempt lasted in frame time.
func RecordAttemptDuration(seconds float64) { globalManager.attemptDuration.Observe(seconds) }

// UpdateActiveSessions sets the live session count.
func UpdateActiveSessions(n int) { globalManager.activeSessions.Set(float64(n)) }

// RecordSessionStarted counts a started session.
func RecordSessionStarted() { globalManager.sessionsStarted.Inc() }

// RecordSessionEnded counts an ended session.
func RecordSessionEnded() { globalManager.sessionsEnded.Inc() }

// RecordRepositoryLatency observes a repository operation.
func RecordRepositoryLatency(op string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(op).Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an enqueued frame.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a dequeued frame.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a refused enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency observes worker processing time.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the allocated heap in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// RecordErrorByComponent counts an error raised by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry the package-level recorders write to.
func GetRegistry() *prometheus.Registry { return customRegistry }

// Handler serves the package registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
