// Package metrics provides Prometheus metrics for the gradeswap service.
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
	registry         prometheus.Registerer

	// Planning
	suggestionRequests *prometheus.CounterVec
	planRequests       *prometheus.CounterVec
	planningLatency    *prometheus.HistogramVec
	planSwaps          prometheus.Histogram
	configErrors       prometheus.Counter

	// Execution
	swapsApplied prometheus.Counter
	swapsFailed  *prometheus.CounterVec
	gradeWrites  prometheus.Counter

	// Pool
	poolSize prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gradeswap",
		subsystem:        "planner",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.suggestionRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "suggestion_requests_total",
		Help:      "Single-context suggestion requests by resulting status",
	}, []string{"status"})

	m.planRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_requests_total",
		Help:      "Cross-context plan requests by resulting status",
	}, []string{"status"})

	m.planningLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "latency_milliseconds",
		Help:      "Time spent computing suggestions and plans",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.planSwaps = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_swaps",
		Help:      "Number of swaps accepted per global plan",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	m.configErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "configuration_errors_total",
		Help:      "Requests rejected because exam configuration leaves an average undefined",
	})

	m.swapsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "executor",
		Name:      "swaps_applied_total",
		Help:      "Grade exchanges applied to the pool",
	})

	m.swapsFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "executor",
		Name:      "swaps_failed_total",
		Help:      "Grade exchanges rejected by reason",
	}, []string{"reason"})

	m.gradeWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pool",
		Name:      "grade_writes_total",
		Help:      "Ordinary grading writes",
	})

	m.poolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "pool",
		Name:      "copies",
		Help:      "Number of graded copies in the pool",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordSuggestion counts a suggestion request.
func RecordSuggestion(status string) {
	globalManager.suggestionRequests.WithLabelValues(status).Inc()
}

// RecordPlan counts a global plan request and its size.
func RecordPlan(status string, swaps int) {
	globalManager.planRequests.WithLabelValues(status).Inc()
	globalManager.planSwaps.Observe(float64(swaps))
}

// RecordPlanningLatency records the time one operation took.
func RecordPlanningLatency(operation string, latencyMs float64) {
	globalManager.planningLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordConfigurationError counts a request rejected for configuration.
func RecordConfigurationError() {
	globalManager.configErrors.Inc()
}

// RecordSwapApplied counts an applied exchange.
func RecordSwapApplied() {
	globalManager.swapsApplied.Inc()
}

// RecordSwapFailed counts a rejected exchange.
func RecordSwapFailed(reason string) {
	globalManager.swapsFailed.WithLabelValues(reason).Inc()
}

// RecordGradeWrite counts an ordinary grading write.
func RecordGradeWrite() {
	globalManager.gradeWrites.Inc()
}

// UpdatePoolSize sets the number of copies in the pool.
func UpdatePoolSize(count int) {
	globalManager.poolSize.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
