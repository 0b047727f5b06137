// Package metrics provides Prometheus metrics for the Tally judging service.
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

// Manager manages all Prometheus metrics for the Tally service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core business metrics - what matters for a judging pipeline.
	scoresAccepted     prometheus.Counter
	scoresDuplicate    prometheus.Counter
	scoresUpserted     prometheus.Counter
	validationFailures *prometheus.CounterVec
	aggregations       prometheus.Counter
	leaderboardBuilds  prometheus.Counter

	// Latency histograms for the hot paths.
	ingestLatency           prometheus.Histogram
	aggregationLatency      prometheus.Histogram
	leaderboardBuildLatency prometheus.Histogram

	// Operational health metrics.
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	workerCount      prometheus.Gauge
	totalScores      prometheus.Gauge
	totalSubmissions prometheus.Gauge
	totalRubrics     prometheus.Gauge

	// Store metrics.
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram

	// Queue metrics.
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics.
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking.
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tally",
		subsystem:        "judging",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.scoresAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_accepted_total",
		Help:      "Total number of score submissions accepted for processing",
	})

	m.scoresDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_duplicate_total",
		Help:      "Total number of duplicate score submissions detected",
	})

	m.scoresUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_upserted_total",
		Help:      "Total number of score records written to the store",
	})

	m.validationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "validation_failures_total",
			Help:      "Total number of rubric validation failures by reason",
		},
		[]string{"reason"},
	)

	m.aggregations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregations_total",
		Help:      "Total number of per-submission aggregations computed",
	})

	m.leaderboardBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_builds_total",
		Help:      "Total number of leaderboards built",
	})

	m.ingestLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_latency_milliseconds",
		Help:      "Histogram of score ingest latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.aggregationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_latency_milliseconds",
		Help:      "Histogram of aggregation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.leaderboardBuildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_build_latency_milliseconds",
		Help:      "Histogram of leaderboard build latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the score submission queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of ingest workers",
	})

	m.totalScores = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_scores",
		Help:      "Total number of score records in the store",
	})

	m.totalSubmissions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_submissions",
		Help:      "Total number of registered submissions",
	})

	m.totalRubrics = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_rubrics",
		Help:      "Total number of scoring rubrics",
	})

	m.storeUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_update_latency_milliseconds",
		Help:      "Score store write operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Score store read operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of submissions enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of submissions dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue errors",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker errors",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordScoreAccepted increments the accepted score submissions counter.
func RecordScoreAccepted() {
	globalManager.scoresAccepted.Inc()
}

// RecordScoreDuplicate increments the duplicate submissions counter.
func RecordScoreDuplicate() {
	globalManager.scoresDuplicate.Inc()
}

// RecordScoreUpserted increments the score record writes counter.
func RecordScoreUpserted() {
	globalManager.scoresUpserted.Inc()
}

// RecordValidationFailure increments the validation failures counter for a reason.
func RecordValidationFailure(reason string) {
	globalManager.validationFailures.WithLabelValues(reason).Inc()
}

// RecordAggregation increments the aggregations counter.
func RecordAggregation() {
	globalManager.aggregations.Inc()
}

// RecordLeaderboardBuild increments the leaderboard builds counter.
func RecordLeaderboardBuild() {
	globalManager.leaderboardBuilds.Inc()
}

// RecordIngestLatency records ingest latency in milliseconds.
func RecordIngestLatency(latencyMs float64) {
	globalManager.ingestLatency.Observe(latencyMs)
}

// RecordAggregationLatency records aggregation latency in milliseconds.
func RecordAggregationLatency(latencyMs float64) {
	globalManager.aggregationLatency.Observe(latencyMs)
}

// RecordLeaderboardBuildLatency records leaderboard build latency in milliseconds.
func RecordLeaderboardBuildLatency(latencyMs float64) {
	globalManager.leaderboardBuildLatency.Observe(latencyMs)
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

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateTotalScores sets the total score record count.
func UpdateTotalScores(count int) {
	globalManager.totalScores.Set(float64(count))
}

// UpdateTotalSubmissions sets the registered submission count.
func UpdateTotalSubmissions(count int) {
	globalManager.totalSubmissions.Set(float64(count))
}

// UpdateTotalRubrics sets the rubric count.
func UpdateTotalRubrics(count int) {
	globalManager.totalRubrics.Set(float64(count))
}

// RecordStoreUpdateLatency records store write operation latency.
func RecordStoreUpdateLatency(latencyMs float64) {
	globalManager.storeUpdateLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records store read operation latency.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
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

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

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
