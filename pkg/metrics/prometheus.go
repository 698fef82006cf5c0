// Package metrics provides Prometheus metrics for the studbook planning
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the planner.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Lookup metrics - registry source and run-scoped cache
	lookupsIssued        prometheus.Counter
	lookupCacheHits      prometheus.Counter
	lookupCoalescedWaits prometheus.Counter
	lookupFailures       prometheus.Counter
	lookupLatency        prometheus.Histogram

	// Pedigree metrics
	treesBuilt prometheus.Counter

	// Planning metrics
	pairsScored      prometheus.Counter
	pairsExcluded    prometheus.Counter
	plansBuilt       prometheus.Counter
	unassignedDams   prometheus.Gauge
	prefetchDuration prometheus.Histogram
	planDuration     prometheus.Histogram
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
		namespace:        "studbook",
		subsystem:        "planner",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.lookupsIssued = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookups_issued_total",
		Help:      "External record lookups issued to the registry source",
	})
	m.lookupCacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_cache_hits_total",
		Help:      "Lookups served from an already resolved cache entry",
	})
	m.lookupCoalescedWaits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_coalesced_waits_total",
		Help:      "Lookups that waited on another caller's in-flight lookup",
	})
	m.lookupFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_failures_total",
		Help:      "Lookups that failed, timed out, or found no record",
	})
	m.lookupLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookup_latency_ms",
		Help:      "Latency of external record lookups in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.treesBuilt = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pedigree_trees_built_total",
		Help:      "Ancestry trees constructed",
	})
	m.pairsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_scored_total",
		Help:      "Candidate sire/dam pairs scored",
	})
	m.pairsExcluded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_excluded_total",
		Help:      "Candidate pairs excluded by the inbreeding ceiling",
	})
	m.plansBuilt = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plans_built_total",
		Help:      "Mating plans completed",
	})
	m.unassignedDams = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unassigned_dams",
		Help:      "Dams left without a sire in the most recent plan",
	})
	m.prefetchDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prefetch_duration_seconds",
		Help:      "Duration of the pre-fetch phase",
		Buckets:   m.histogramBuckets,
	})
	m.planDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_duration_seconds",
		Help:      "End-to-end duration of a planning run",
		Buckets:   m.histogramBuckets,
	})
}

// Registry returns the custom registry backing the global manager, for
// exposition by whatever serves metrics.
func Registry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers recording through the global manager.

// RecordLookupIssued counts one external source lookup.
func RecordLookupIssued() {
	if globalManager.enabled {
		globalManager.lookupsIssued.Inc()
	}
}

// RecordLookupCacheHit counts a lookup served from a resolved cache entry.
func RecordLookupCacheHit() {
	if globalManager.enabled {
		globalManager.lookupCacheHits.Inc()
	}
}

// RecordLookupCoalescedWait counts a lookup that joined an in-flight one.
func RecordLookupCoalescedWait() {
	if globalManager.enabled {
		globalManager.lookupCoalescedWaits.Inc()
	}
}

// RecordLookupFailure counts a failed or empty lookup.
func RecordLookupFailure() {
	if globalManager.enabled {
		globalManager.lookupFailures.Inc()
	}
}

// ObserveLookupLatency records one lookup duration in milliseconds.
func ObserveLookupLatency(ms float64) {
	if globalManager.enabled {
		globalManager.lookupLatency.Observe(ms)
	}
}

// RecordTreeBuilt counts one constructed ancestry tree.
func RecordTreeBuilt() {
	if globalManager.enabled {
		globalManager.treesBuilt.Inc()
	}
}

// RecordPairScored counts one scored candidate pair.
func RecordPairScored() {
	if globalManager.enabled {
		globalManager.pairsScored.Inc()
	}
}

// RecordPairExcluded counts one pair excluded by the ceiling.
func RecordPairExcluded() {
	if globalManager.enabled {
		globalManager.pairsExcluded.Inc()
	}
}

// RecordPlanBuilt counts one completed plan.
func RecordPlanBuilt() {
	if globalManager.enabled {
		globalManager.plansBuilt.Inc()
	}
}

// UpdateUnassignedDams sets the unassigned-dam gauge for the latest plan.
func UpdateUnassignedDams(n int) {
	if globalManager.enabled {
		globalManager.unassignedDams.Set(float64(n))
	}
}

// ObservePrefetchDuration records the pre-fetch phase duration in seconds.
func ObservePrefetchDuration(seconds float64) {
	if globalManager.enabled {
		globalManager.prefetchDuration.Observe(seconds)
	}
}

// ObservePlanDuration records an end-to-end planning duration in seconds.
func ObservePlanDuration(seconds float64) {
	if globalManager.enabled {
		globalManager.planDuration.Observe(seconds)
	}
}
