// Package metrics provides Prometheus metrics for the career-path prediction engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Prediction path
	predictions        *prometheus.CounterVec
	predictionLatency  prometheus.Histogram
	predictionConf     prometheus.Histogram
	predictionCacheHit *prometheus.CounterVec
	unknownCategories  *prometheus.CounterVec

	// Batch path
	trainingRuns       *prometheus.CounterVec
	trainingDuration   prometheus.Histogram
	trainingSamples    prometheus.Gauge
	modelAccuracy      prometheus.Gauge
	modelF1            prometheus.Gauge
	modelLoaded        prometheus.Gauge
	modelReloads       *prometheus.CounterVec
	aggregationRuns    *prometheus.CounterVec
	matrixEntries      prometheus.Gauge
	searchStrategyRuns *prometheus.CounterVec

	// Jobs
	jobQueueSize     prometheus.Gauge
	jobQueueCapacity prometheus.Gauge
	jobs             *prometheus.CounterVec

	// Data source resilience
	datasourceRetries *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

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
		namespace:        "careerpath",
		subsystem:        "engine",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000, 120000},
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
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.predictions = m.counterVec("predictions_total",
		"Predictions served, by strategy (matrix, model, heuristic)", "strategy")
	m.predictionLatency = m.histogram("prediction_latency_milliseconds",
		"End-to-end prediction latency in milliseconds", m.histogramBuckets)
	m.predictionConf = m.histogram("prediction_confidence",
		"Distribution of prediction confidence scores",
		[]float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95})
	m.predictionCacheHit = m.counterVec("prediction_cache_total",
		"Prediction cache lookups by result", "result")
	m.unknownCategories = m.counterVec("unknown_categories_total",
		"Encode-time values missing from the fitted vocabulary", "feature")

	m.trainingRuns = m.counterVec("training_runs_total",
		"Training runs by outcome (success, insufficient_data, failed)", "outcome")
	m.trainingDuration = m.histogram("training_duration_milliseconds",
		"Training run duration in milliseconds", m.histogramBuckets)
	m.trainingSamples = m.gauge("training_samples",
		"Samples used by the most recent training run")
	m.modelAccuracy = m.gauge("model_accuracy",
		"Held-out accuracy of the most recently trained model")
	m.modelF1 = m.gauge("model_f1",
		"Held-out weighted F1 of the most recently trained model")
	m.modelLoaded = m.gauge("model_loaded",
		"1 when a trained classifier is loaded for inference")
	m.modelReloads = m.counterVec("model_reloads_total",
		"Model reload attempts by result", "result")
	m.aggregationRuns = m.counterVec("aggregation_runs_total",
		"Transition matrix aggregation runs by outcome", "outcome")
	m.matrixEntries = m.gauge("matrix_entries",
		"Rows in the most recently written transition matrix")
	m.searchStrategyRuns = m.counterVec("search_strategy_total",
		"Hyperparameter search strategies chosen by the trainer", "strategy")

	m.jobQueueSize = m.gauge("job_queue_size", "Pending batch jobs")
	m.jobQueueCapacity = m.gauge("job_queue_capacity", "Batch job queue capacity")
	m.jobs = m.counterVec("jobs_total", "Batch jobs by kind and final status", "kind", "status")

	m.datasourceRetries = m.counterVec("datasource_retries_total",
		"Retried data source operations", "operation")
	m.breakerState = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total",
		"Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordPrediction counts a served prediction and its latency and confidence.
func RecordPrediction(strategy string, latencyMs, confidence float64) {
	globalManager.predictions.WithLabelValues(strategy).Inc()
	globalManager.predictionLatency.Observe(latencyMs)
	globalManager.predictionConf.Observe(confidence)
}

// RecordPredictionCache counts cache hits and misses.
func RecordPredictionCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.predictionCacheHit.WithLabelValues(result).Inc()
}

// RecordUnknownCategory counts an encode-time vocabulary miss.
func RecordUnknownCategory(feature string) {
	globalManager.unknownCategories.WithLabelValues(feature).Inc()
}

// RecordTrainingRun records the outcome and duration of a training run.
func RecordTrainingRun(outcome string, durationMs float64) {
	globalManager.trainingRuns.WithLabelValues(outcome).Inc()
	globalManager.trainingDuration.Observe(durationMs)
}

// UpdateModelQuality publishes the evaluation of the latest trained model.
func UpdateModelQuality(samples int, accuracy, f1 float64) {
	globalManager.trainingSamples.Set(float64(samples))
	globalManager.modelAccuracy.Set(accuracy)
	globalManager.modelF1.Set(f1)
}

// RecordSearchStrategy counts the hyperparameter search strategy chosen.
func RecordSearchStrategy(strategy string) {
	globalManager.searchStrategyRuns.WithLabelValues(strategy).Inc()
}

// UpdateModelLoaded flags whether a classifier is available for inference.
func UpdateModelLoaded(loaded bool) {
	if loaded {
		globalManager.modelLoaded.Set(1)
		return
	}
	globalManager.modelLoaded.Set(0)
}

// RecordModelReload counts a reload attempt.
func RecordModelReload(result string) {
	globalManager.modelReloads.WithLabelValues(result).Inc()
}

// RecordAggregation records an aggregation run and the resulting matrix size.
func RecordAggregation(outcome string, entries int) {
	globalManager.aggregationRuns.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		globalManager.matrixEntries.Set(float64(entries))
	}
}

// UpdateJobQueue publishes queue occupancy.
func UpdateJobQueue(size, capacity int) {
	globalManager.jobQueueSize.Set(float64(size))
	globalManager.jobQueueCapacity.Set(float64(capacity))
}

// RecordJob counts a finished batch job.
func RecordJob(kind, status string) {
	globalManager.jobs.WithLabelValues(kind, status).Inc()
}

// RecordDatasourceRetry counts a retried data source operation.
func RecordDatasourceRetry(operation string) {
	globalManager.datasourceRetries.WithLabelValues(operation).Inc()
}

// UpdateBreakerState publishes a circuit breaker state.
func UpdateBreakerState(name string, state float64) {
	globalManager.breakerState.WithLabelValues(name).Set(state)
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments error counter by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage updates the system memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom metrics registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
