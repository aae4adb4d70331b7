package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBucketsMs covers sub-millisecond scoring up to multi-second reloads.
var latencyBucketsMs = []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// Manager owns every Prometheus collector for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Scoring
	clientsScored   prometheus.Counter
	tierAssignments *prometheus.CounterVec
	scoringLatency  prometheus.Histogram
	scoringErrors   prometheus.Counter

	// Cohort snapshot
	cohortSize         prometheus.Gauge
	cohortTierSize     *prometheus.GaugeVec
	cohortAverageScore prometheus.Gauge
	snapshotReloads    prometheus.Counter
	snapshotErrors     prometheus.Counter
	snapshotDuration   prometheus.Histogram
	snapshotLastUnix   prometheus.Gauge

	// Repository
	sourceLoadLatency prometheus.Histogram
	sourceRowsLoaded  prometheus.Gauge

	// Lookups
	rankLookups  *prometheus.CounterVec
	scoreWorkers prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "prioritise",
		subsystem:        "engine",
		histogramBuckets: latencyBucketsMs,
		enabled:          true,
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

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.clientsScored = m.counter("clients_scored_total", "Total number of client priorities computed")
	m.tierAssignments = m.counterVec("tier_assignments_total", "Priorities computed, by resulting tier", "tier")
	m.scoringLatency = m.histogram("scoring_batch_duration_ms", "Time to score a whole cohort in milliseconds")
	m.scoringErrors = m.counter("scoring_errors_total", "Cohort scoring batches that failed")

	m.cohortSize = m.gauge("cohort_size", "Number of clients in the published snapshot")
	m.cohortTierSize = m.gaugeVec("cohort_tier_size", "Clients per tier in the published snapshot", "tier")
	m.cohortAverageScore = m.gauge("cohort_average_score", "Mean priority score of the published snapshot")
	m.snapshotReloads = m.counter("snapshot_reloads_total", "Snapshots successfully rebuilt and published")
	m.snapshotErrors = m.counter("snapshot_reload_errors_total", "Snapshot rebuilds that failed")
	m.snapshotDuration = m.histogram("snapshot_reload_duration_ms", "Snapshot rebuild time in milliseconds")
	m.snapshotLastUnix = m.gauge("snapshot_last_unix", "Unix time of the last published snapshot")

	m.sourceLoadLatency = m.histogram("source_load_duration_ms", "Time to read the client source in milliseconds")
	m.sourceRowsLoaded = m.gauge("source_rows_loaded", "Rows read by the last source load")

	m.rankLookups = m.counterVec("rank_lookups_total", "Client lookups against the snapshot, by outcome", "outcome")
	m.scoreWorkers = m.gauge("score_workers", "Configured parallel scoring workers")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_ms", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordClientsScored counts a scored batch and its tier mix.
func RecordClientsScored(tiers map[string]int) {
	if !globalManager.enabled {
		return
	}
	for tier, n := range tiers {
		globalManager.clientsScored.Add(float64(n))
		globalManager.tierAssignments.WithLabelValues(tier).Add(float64(n))
	}
}

// RecordScoringLatency observes the time taken to score a cohort.
func RecordScoringLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.scoringLatency.Observe(latencyMs)
	}
}

// RecordScoringError counts a failed scoring batch.
func RecordScoringError() {
	if globalManager.enabled {
		globalManager.scoringErrors.Inc()
	}
}

// UpdateCohort publishes the gauges describing the current snapshot.
func UpdateCohort(size int, tiers map[string]int, average float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.cohortSize.Set(float64(size))
	for tier, n := range tiers {
		globalManager.cohortTierSize.WithLabelValues(tier).Set(float64(n))
	}
	globalManager.cohortAverageScore.Set(average)
}

// RecordSnapshotReload observes a successful rebuild.
func RecordSnapshotReload(durationMs, unix float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotReloads.Inc()
	globalManager.snapshotDuration.Observe(durationMs)
	globalManager.snapshotLastUnix.Set(unix)
}

// RecordSnapshotError counts a failed rebuild.
func RecordSnapshotError() {
	if globalManager.enabled {
		globalManager.snapshotErrors.Inc()
	}
}

// RecordSourceLoad observes a source read.
func RecordSourceLoad(latencyMs float64, rows int) {
	if !globalManager.enabled {
		return
	}
	globalManager.sourceLoadLatency.Observe(latencyMs)
	globalManager.sourceRowsLoaded.Set(float64(rows))
}

// RecordRankLookup counts a lookup by outcome ("found", "not_found").
func RecordRankLookup(outcome string) {
	if globalManager.enabled {
		globalManager.rankLookups.WithLabelValues(outcome).Inc()
	}
}

// UpdateScoreWorkers records the configured worker count.
func UpdateScoreWorkers(n int) {
	if globalManager.enabled {
		globalManager.scoreWorkers.Set(float64(n))
	}
}

// RecordHTTPRequest counts a request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes request latency.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent counts an error raised inside a component.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage records heap usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount records the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
