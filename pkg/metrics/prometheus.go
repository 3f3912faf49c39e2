// Package metrics provides Prometheus metrics for the layoff analytics service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every Prometheus metric exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Dataset metrics - the loaded snapshot is the whole system state
	datasetRecords        prometheus.Gauge
	datasetReloads        prometheus.Counter
	datasetReloadErrors   prometheus.Counter
	datasetReloadDuration prometheus.Histogram
	datasetLastLoadUnix   prometheus.Gauge

	// Score computation metrics
	computeRuns    *prometheus.CounterVec
	computeLatency *prometheus.HistogramVec
	computeGroups  *prometheus.GaugeVec

	// Repository metrics
	repositoryQueryLatency prometheus.Histogram
	repositoryQueries      prometheus.Counter

	// Export metrics
	exports      *prometheus.CounterVec
	exportErrors prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global manager registered on a private registry so that the default Go
// collectors do not leak into /healthz.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // private registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "layoffatlas",
		subsystem:        "analytics",
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

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.datasetRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_records",
		Help:      "Number of layoff records in the current snapshot",
	})

	m.datasetReloads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_reloads_total",
		Help:      "Total number of dataset loads and reloads",
	})

	m.datasetReloadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_reload_errors_total",
		Help:      "Total number of failed dataset loads",
	})

	m.datasetReloadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_reload_duration_milliseconds",
		Help:      "Time spent parsing and cleaning the dataset",
		Buckets:   m.histogramBuckets,
	})

	m.datasetLastLoadUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_last_load_timestamp_seconds",
		Help:      "Unix time of the last successful dataset load",
	})

	m.computeRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_compute_runs_total",
		Help:      "Total number of score computations by grouping",
	}, []string{"group_by"})

	m.computeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_compute_latency_milliseconds",
		Help:      "Latency of score computations by grouping",
		Buckets:   m.histogramBuckets,
	}, []string{"group_by"})

	m.computeGroups = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_compute_groups",
		Help:      "Number of groups produced by the last computation per grouping",
	}, []string{"group_by"})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Latency of filtered snapshot queries",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_queries_total",
		Help:      "Total number of filtered snapshot queries",
	})

	m.exports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exports_total",
		Help:      "Total number of spreadsheet exports by format",
	}, []string{"format"})

	m.exportErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_errors_total",
		Help:      "Total number of failed exports",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "Total number of HTTP error responses by endpoint and type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the registry backing the global manager, for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers delegating to the global manager.

// UpdateDatasetRecords sets the size of the current snapshot.
func UpdateDatasetRecords(n int) {
	if globalManager.enabled {
		globalManager.datasetRecords.Set(float64(n))
	}
}

// RecordDatasetReload records a successful load with its duration.
func RecordDatasetReload(durationMs float64) {
	if globalManager.enabled {
		globalManager.datasetReloads.Inc()
		globalManager.datasetReloadDuration.Observe(durationMs)
		globalManager.datasetLastLoadUnix.SetToCurrentTime()
	}
}

// RecordDatasetReloadError records a failed load.
func RecordDatasetReloadError() {
	if globalManager.enabled {
		globalManager.datasetReloadErrors.Inc()
	}
}

// RecordComputeRun records one score computation for a grouping.
func RecordComputeRun(groupBy string, groups int, durationMs float64) {
	if globalManager.enabled {
		globalManager.computeRuns.WithLabelValues(groupBy).Inc()
		globalManager.computeLatency.WithLabelValues(groupBy).Observe(durationMs)
		globalManager.computeGroups.WithLabelValues(groupBy).Set(float64(groups))
	}
}

// RecordRepositoryQuery records one filtered snapshot query.
func RecordRepositoryQuery(durationMs float64) {
	if globalManager.enabled {
		globalManager.repositoryQueries.Inc()
		globalManager.repositoryQueryLatency.Observe(durationMs)
	}
}

// RecordExport records one completed export.
func RecordExport(format string) {
	if globalManager.enabled {
		globalManager.exports.WithLabelValues(format).Inc()
	}
}

// RecordExportError records one failed export.
func RecordExportError() {
	if globalManager.enabled {
		globalManager.exportErrors.Inc()
	}
}

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records the duration of one HTTP request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByEndpoint records one HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records an average GC pause observation.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}
