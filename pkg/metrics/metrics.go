package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Remote gateway metrics
	RemoteCalls   *prometheus.CounterVec
	RemoteLatency *prometheus.HistogramVec

	// Cache fallback metrics
	CacheFallbacks *prometheus.CounterVec
	CacheHits      *prometheus.CounterVec
	CachedRecords  prometheus.Gauge

	// Change notification metrics
	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		RemoteCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "remote_calls_total",
			Help:      "Total number of remote gateway calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		RemoteLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "remote_call_duration_seconds",
			Help:      "Latency of remote gateway calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		CacheFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_fallbacks_total",
			Help:      "Total number of reads served from the local cache after a remote failure",
		}, []string{"operation"}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of fallback reads that found usable cached data",
		}, []string{"operation"}),
		CachedRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cached_records",
			Help:      "Number of diagnosis records currently held in the local cache",
		}),
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_published_total",
			Help:      "Total number of record-change events published",
		}),
		EventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_failed_total",
			Help:      "Total number of record-change events that failed to publish",
		}),
	}
}
