package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the consent script pipeline.
type Metrics struct {
	GenerationsTotal    *prometheus.CounterVec
	ScriptRequests      *prometheus.CounterVec
	ArtifactCacheHits   prometheus.Counter
	ArtifactCacheMisses prometheus.Counter
	SyncsTotal          prometheus.Counter
	SweepDuration       prometheus.Histogram
	BeaconsTotal        *prometheus.CounterVec
	WebhooksTotal       *prometheus.CounterVec
}

// New initializes and registers the Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		GenerationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consentgate",
			Subsystem: "generator",
			Name:      "generations_total",
			Help:      "Total number of script generations by status.",
		}, []string{"status"}), // status: ok, error_config, error_render
		ScriptRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consentgate",
			Subsystem: "distribution",
			Name:      "script_requests_total",
			Help:      "Total number of script requests by variant and outcome.",
		}, []string{"variant", "outcome"}), // outcome: cached, generated, noop, diagnostic
		ArtifactCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "consentgate",
			Subsystem: "distribution",
			Name:      "artifact_cache_hits_total",
			Help:      "Total number of artifact cache hits.",
		}),
		ArtifactCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "consentgate",
			Subsystem: "distribution",
			Name:      "artifact_cache_misses_total",
			Help:      "Total number of artifact cache misses.",
		}),
		SyncsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "consentgate",
			Subsystem: "billing",
			Name:      "subscription_syncs_total",
			Help:      "Total number of completed subscription syncs.",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "consentgate",
			Subsystem: "billing",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of full subscription sweeps.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		BeaconsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consentgate",
			Subsystem: "beacon",
			Name:      "page_views_total",
			Help:      "Total number of page-view beacons by status.",
		}, []string{"status"}), // status: recorded, error
		WebhooksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consentgate",
			Subsystem: "billing",
			Name:      "webhooks_total",
			Help:      "Total number of billing webhook deliveries by status.",
		}, []string{"status"}), // status: accepted, invalid_signature, bad_payload, error
	}
}
