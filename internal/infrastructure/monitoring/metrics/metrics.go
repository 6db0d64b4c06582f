// Package metrics defines the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lexicon"

// Metrics bundles every collector the service exposes.
type Metrics struct {
	registry *prometheus.Registry

	SearchRequests   prometheus.Counter
	SearchDuration   prometheus.Histogram
	SearchResults    prometheus.Histogram
	Recommendations  *prometheus.CounterVec
	ClaimsResolved   *prometheus.CounterVec
	ClaimConfidence  prometheus.Histogram
	MappingCacheHits prometheus.Counter
	MappingCacheMiss prometheus.Counter
	SnapshotReloads  *prometheus.CounterVec
	SnapshotConcepts prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates the metric set on a private registry, pre-populated with the
// standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SearchRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concept_search_requests_total",
			Help:      "Number of concept search requests served.",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "concept_search_duration_seconds",
			Help:      "Concept search latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "concept_search_results",
			Help:      "Number of matches returned per search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		Recommendations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendations produced, labelled by relation type.",
		}, []string{"relation_type"}),
		ClaimsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_resolved_total",
			Help:      "Resolved claims, labelled by decision.",
		}, []string{"decision"}),
		ClaimConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "claim_confidence_score",
			Help:      "Distribution of claim confidence scores.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		MappingCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapping_cache_hits_total",
			Help:      "Code-mapping cache hits.",
		}),
		MappingCacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapping_cache_misses_total",
			Help:      "Code-mapping cache misses.",
		}),
		SnapshotReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reloads_total",
			Help:      "Snapshot reload attempts, labelled by outcome.",
		}, []string{"outcome"}),
		SnapshotConcepts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_concepts",
			Help:      "Number of concepts in the active snapshot.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, labelled by method, route and status class.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"method", "route"}),
	}
}

// ObserveReload records a snapshot reload outcome.
func (m *Metrics) ObserveReload(err error) {
	if err != nil {
		m.SnapshotReloads.WithLabelValues("failure").Inc()
		return
	}
	m.SnapshotReloads.WithLabelValues("success").Inc()
}

// Handler returns the /metrics HTTP handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
