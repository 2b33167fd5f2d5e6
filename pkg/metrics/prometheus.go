// Package metrics provides Prometheus metrics for the artist portal service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default duration buckets, in milliseconds.
var (
	defaultHTTPBuckets        = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}
	defaultAggregationBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}
)

// Manager manages all Prometheus metrics for the portal service.
type Manager struct {
	namespace          string
	subsystem          string
	metricPrefix       string
	httpBuckets        []float64
	aggregationBuckets []float64
	constLabels        map[string]string
	enabled            bool
	registry           prometheus.Registerer

	// Aggregation metrics - the performance listing join
	aggregationDuration  prometheus.Histogram
	aggregationFailures  prometheus.Counter
	aggregationRecords   prometheus.Histogram
	referenceChunkQuery  *prometheus.CounterVec
	referenceChunkFailed *prometheus.CounterVec
	referenceMisses      *prometheus.CounterVec

	// Mutation metrics
	softDeletes *prometheus.CounterVec

	// Portal activity
	registrations  *prometheus.CounterVec
	activeSessions prometheus.Gauge
	storeErrors    *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
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
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:          "portal",
		subsystem:          "api",
		httpBuckets:        defaultHTTPBuckets,
		aggregationBuckets: defaultAggregationBuckets,
		constLabels:        make(map[string]string),
		enabled:            true,
		registry:           prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.aggregationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("aggregation_duration_milliseconds"),
		Help:        "Duration of a full performance listing pass (fetch, resolve, join) in milliseconds",
		Buckets:     m.aggregationBuckets,
		ConstLabels: labels,
	})

	m.aggregationFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("aggregation_failures_total"),
		Help:        "Total number of failed or abandoned aggregation passes",
		ConstLabels: labels,
	})

	m.aggregationRecords = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("aggregation_records"),
		Help:        "Number of primary records joined per aggregation pass",
		Buckets:     []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		ConstLabels: labels,
	})

	m.referenceChunkQuery = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reference_chunk_queries_total"),
		Help:        "Chunk queries issued by the reference resolver, by entity type",
		ConstLabels: labels,
	}, []string{"entity"})

	m.referenceChunkFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reference_chunk_failures_total"),
		Help:        "Chunk queries that failed, by entity type",
		ConstLabels: labels,
	}, []string{"entity"})

	m.referenceMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reference_lookup_misses_total"),
		Help:        "References that resolved to a default value, by entity type",
		ConstLabels: labels,
	}, []string{"entity"})

	m.softDeletes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("soft_deletes_total"),
		Help:        "Soft delete attempts by outcome (success, not_found, error)",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.registrations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("registrations_total"),
		Help:        "Early access registrations by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("active_sessions"),
		Help:        "Sessions created and not yet signed out",
		ConstLabels: labels,
	})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("store_errors_total"),
		Help:        "Document store failures by operation and collection",
		ConstLabels: labels,
	}, []string{"op", "collection"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.httpBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "HTTP error responses by endpoint, method and error type",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("memory_usage_bytes"),
		Help:        "Current heap allocation in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("goroutines"),
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		ConstLabels: labels,
	})
}

// Aggregation Metrics Functions.

// RecordAggregation records a completed aggregation pass.
func RecordAggregation(durationMs float64, records int) {
	if !globalManager.enabled {
		return
	}
	globalManager.aggregationDuration.Observe(durationMs)
	globalManager.aggregationRecords.Observe(float64(records))
}

// RecordAggregationFailure increments the aggregation failure counter.
func RecordAggregationFailure() {
	if !globalManager.enabled {
		return
	}
	globalManager.aggregationFailures.Inc()
}

// RecordChunkQuery increments the chunk query counter for entity.
func RecordChunkQuery(entity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.referenceChunkQuery.WithLabelValues(entity).Inc()
}

// RecordChunkFailure increments the chunk failure counter for entity.
func RecordChunkFailure(entity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.referenceChunkFailed.WithLabelValues(entity).Inc()
}

// RecordLookupMisses adds n default substitutions for entity.
func RecordLookupMisses(entity string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.referenceMisses.WithLabelValues(entity).Add(float64(n))
}

// Portal Activity Metrics Functions.

// RecordSoftDelete increments the soft delete counter for outcome.
func RecordSoftDelete(outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.softDeletes.WithLabelValues(outcome).Inc()
}

// RecordRegistration increments the registration counter for outcome.
func RecordRegistration(outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.registrations.WithLabelValues(outcome).Inc()
}

// SessionOpened increments the active session gauge.
func SessionOpened() {
	if !globalManager.enabled {
		return
	}
	globalManager.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func SessionClosed() {
	if !globalManager.enabled {
		return
	}
	globalManager.activeSessions.Dec()
}

// RecordStoreError increments the store error counter.
func RecordStoreError(op, collection string) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeErrors.WithLabelValues(op, collection).Inc()
}

// HTTP Performance Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint increments the error counter for a specific endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

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
