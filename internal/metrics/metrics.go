// Package metrics defines the Prometheus collectors exported by the
// notifier. All methods are safe to call on a nil *Metrics so components can
// be built without instrumentation in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notifier"

// Lookup results for scan cache lookups.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Metrics holds the collectors.
type Metrics struct {
	scanLookups   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	evicted       prometheus.Counter
	cacheErrors   *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		scanLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_cache_lookups_total",
			Help:      "Scan cache lookups by scan kind and result.",
		}, []string{"kind", "result"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification delivery attempts by channel, medium and outcome.",
		}, []string{"channel", "medium", "outcome"}),
		jobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Periodic job runs by job and outcome.",
		}, []string{"job", "outcome"}),
		jobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of one periodic job run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"job"}),
		evicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "janitor_evicted_total",
			Help:      "Notification records removed by the cache janitor.",
		}),
		cacheErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Degraded cache operations by operation name.",
		}, []string{"op"}),
	}
}

// ScanLookup counts one scan cache lookup.
func (m *Metrics) ScanLookup(kind, result string) {
	if m == nil {
		return
	}
	m.scanLookups.WithLabelValues(kind, result).Inc()
}

// Notification counts one delivery attempt.
func (m *Metrics) Notification(channel, medium string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.notifications.WithLabelValues(channel, medium, outcome).Inc()
}

// JobRun records the outcome and duration of one job run.
func (m *Metrics) JobRun(job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

// Evicted adds n janitor evictions.
func (m *Metrics) Evicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evicted.Add(float64(n))
}

// CacheError counts one degraded cache operation.
func (m *Metrics) CacheError(op string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(op).Inc()
}
