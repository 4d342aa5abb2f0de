package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal *prometheus.CounterVec
	cacheEvents  *prometheus.CounterVec
	rateLimited  *prometheus.CounterVec
	consistency  *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foliopulse_upstream_fetches_total",
				Help: "Total upstream fetch attempts by source and result",
			},
			[]string{"source", "result"},
		),
		cacheEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foliopulse_cache_events_total",
				Help: "Snapshot cache events (hit, miss, stale)",
			},
			[]string{"event"},
		),
		rateLimited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foliopulse_rate_limited_total",
				Help: "Admissions denied by the per-source rate limiter",
			},
			[]string{"source"},
		),
		consistency: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "foliopulse_reconcile_consistency",
				Help: "Last cross-source consistency score per asset",
			},
			[]string{"asset"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "foliopulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foliopulse_errors_total",
				Help: "Internal errors by operation",
			},
			[]string{"operation"},
		),
	}
}

// RecordFetch records an upstream fetch attempt outcome.
func (r *Recorder) RecordFetch(source, result string) {
	r.fetchesTotal.WithLabelValues(source, result).Inc()
}

// RecordCache records a snapshot cache event.
func (r *Recorder) RecordCache(event string) {
	r.cacheEvents.WithLabelValues(event).Inc()
}

// RecordRateLimited records a denied admission for a source.
func (r *Recorder) RecordRateLimited(source string) {
	r.rateLimited.WithLabelValues(source).Inc()
}

// RecordConsistency records the reconciliation score for an asset.
func (r *Recorder) RecordConsistency(assetID string, score float64) {
	r.consistency.WithLabelValues(assetID).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordError counts an internal error for an operation.
func (r *Recorder) RecordError(op string) {
	r.errorsTotal.WithLabelValues(op).Inc()
}
