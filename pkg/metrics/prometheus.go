// Package metrics provides Prometheus metrics for the steadihand service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Default histogram buckets for millisecond latencies.
var defaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// scoreBuckets cover the 0-100 stability score range.
var defaultScoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// Manager owns every collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         *prometheus.Registry

	framesIngested  prometheus.Counter
	framesDuplicate prometheus.Counter
	framesRecorded  prometheus.Counter

	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge

	workerCount   prometheus.Gauge
	workerErrors  *prometheus.CounterVec
	workerLatency prometheus.Histogram

	sessionsCreated     prometheus.Counter
	sessionsCompleted   prometheus.Counter
	totalSessions       prometheus.Gauge
	calibrationFailures prometheus.Counter
	pipelineLatency     prometheus.Histogram
	stabilityScore      prometheus.Histogram

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	errorsByEndpoint *prometheus.CounterVec
	errorsByType     *prometheus.CounterVec
	errorLatency     *prometheus.HistogramVec

	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Histogram
}

// NewMetricsManager creates a Manager with configuration options and
// registers every collector on its registry.
func NewMetricsManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "steadihand",
		histogramBuckets: defaultLatencyBuckets,
		scoreBuckets:     defaultScoreBuckets,
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.build()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
	m.registry.MustRegister(c)
	return c
}

func (m *Manager) counterVec(name, help string, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
	m.registry.MustRegister(c)
	return c
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
	m.registry.MustRegister(g)
	return g
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
	m.registry.MustRegister(h)
	return h
}

func (m *Manager) build() {
	m.framesIngested = m.counter("frames_ingested_total", "Capture frames accepted by the API.")
	m.framesDuplicate = m.counter("frames_duplicate_total", "Capture frames rejected as retransmits.")
	m.framesRecorded = m.counter("frames_recorded_total", "Capture frames recorded into session state.")

	m.queueEnqueue = m.counter("queue_enqueue_total", "Frame batches enqueued.")
	m.queueDequeue = m.counter("queue_dequeue_total", "Frame batches dequeued.")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Failed enqueues by reason.", []string{"reason"})
	m.queueSize = m.gauge("queue_size", "Current number of queued frame batches.")
	m.queueCapacity = m.gauge("queue_capacity", "Configured queue capacity.")

	m.workerCount = m.gauge("worker_count", "Number of recording workers.")
	m.workerErrors = m.counterVec("worker_errors_total", "Worker failures by reason.", []string{"reason"})
	m.workerLatency = m.histogram("worker_processing_latency_ms", "Frame recording latency in milliseconds.", m.histogramBuckets)

	m.sessionsCreated = m.counter("sessions_created_total", "Assessment sessions created.")
	m.sessionsCompleted = m.counter("sessions_completed_total", "Assessment sessions completed and scored.")
	m.totalSessions = m.gauge("total_sessions", "Sessions currently tracked by the store.")
	m.calibrationFailures = m.counter("calibration_failures_total", "Calibrations with no usable hand observations.")
	m.pipelineLatency = m.histogram("pipeline_latency_ms", "Displacement-metrics-score pipeline latency in milliseconds.", m.histogramBuckets)
	m.stabilityScore = m.histogram("stability_score", "Distribution of computed stability scores.", m.scoreBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status.", []string{"endpoint", "method", "status"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_ms",
		Help:        "HTTP request duration in milliseconds.",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status"})
	m.registry.MustRegister(m.httpDuration)

	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Request errors by endpoint, method and error type.", []string{"endpoint", "method", "error_type"})
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type and severity.", []string{"error_type", "severity"})
	m.errorLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "error_latency_ms",
		Help:        "Latency of failed operations in milliseconds.",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})
	m.registry.MustRegister(m.errorLatency)

	m.systemMemory = m.gauge("system_memory_bytes", "Heap bytes currently allocated.")
	m.systemGoroutines = m.gauge("system_goroutines", "Current number of goroutines.")
	m.systemGCPause = m.histogram("system_gc_pause_ms", "Average GC pause time in milliseconds.", m.histogramBuckets)
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide Manager, creating it on first use.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewMetricsManager()
	})
	return defaultManager
}

// GetRegistry exposes the default manager's registry for promhttp.
func GetRegistry() *prometheus.Registry {
	return Default().registry
}

// Package-level recording helpers. Each delegates to the default manager and
// is a no-op when metrics are disabled.

func RecordFrameIngested() {
	if m := Default(); m.enabled {
		m.framesIngested.Inc()
	}
}

func RecordFrameDuplicate() {
	if m := Default(); m.enabled {
		m.framesDuplicate.Inc()
	}
}

func RecordFrameRecorded() {
	if m := Default(); m.enabled {
		m.framesRecorded.Inc()
	}
}

func RecordQueueEnqueue() {
	if m := Default(); m.enabled {
		m.queueEnqueue.Inc()
	}
}

func RecordQueueDequeue() {
	if m := Default(); m.enabled {
		m.queueDequeue.Inc()
	}
}

func RecordQueueEnqueueError(reason string) {
	if m := Default(); m.enabled {
		m.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

func UpdateQueueSize(size int) {
	if m := Default(); m.enabled {
		m.queueSize.Set(float64(size))
	}
}

func UpdateQueueCapacity(capacity int) {
	if m := Default(); m.enabled {
		m.queueCapacity.Set(float64(capacity))
	}
}

func UpdateWorkerCount(count int) {
	if m := Default(); m.enabled {
		m.workerCount.Set(float64(count))
	}
}

func RecordWorkerProcessingLatency(ms float64) {
	if m := Default(); m.enabled {
		m.workerLatency.Observe(ms)
	}
}

func RecordWorkerError(reason string) {
	if m := Default(); m.enabled {
		m.workerErrors.WithLabelValues(reason).Inc()
	}
}

func RecordSessionCreated() {
	if m := Default(); m.enabled {
		m.sessionsCreated.Inc()
	}
}

func RecordSessionCompleted() {
	if m := Default(); m.enabled {
		m.sessionsCompleted.Inc()
	}
}

func UpdateTotalSessions(count int) {
	if m := Default(); m.enabled {
		m.totalSessions.Set(float64(count))
	}
}

func RecordCalibrationFailure() {
	if m := Default(); m.enabled {
		m.calibrationFailures.Inc()
	}
}

func RecordPipelineLatency(ms float64) {
	if m := Default(); m.enabled {
		m.pipelineLatency.Observe(ms)
	}
}

func RecordStabilityScore(score float64) {
	if m := Default(); m.enabled {
		m.stabilityScore.Observe(score)
	}
}

func RecordHTTPRequest(endpoint, method, status string) {
	if m := Default(); m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	if m := Default(); m.enabled {
		m.httpDuration.WithLabelValues(endpoint, method, status).Observe(ms)
	}
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m := Default(); m.enabled {
		m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

func RecordErrorByType(errorType, severity string) {
	if m := Default(); m.enabled {
		m.errorsByType.WithLabelValues(errorType, severity).Inc()
	}
}

func RecordErrorLatency(component, errorType string, ms float64) {
	if m := Default(); m.enabled {
		m.errorLatency.WithLabelValues(component, errorType).Observe(ms)
	}
}

func UpdateSystemMemoryUsage(bytes uint64) {
	if m := Default(); m.enabled {
		m.systemMemory.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(count int) {
	if m := Default(); m.enabled {
		m.systemGoroutines.Set(float64(count))
	}
}

func RecordSystemGCPauseTime(ms float64) {
	if m := Default(); m.enabled {
		m.systemGCPause.Observe(ms)
	}
}
