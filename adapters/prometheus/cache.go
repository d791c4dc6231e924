package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/ttlcache-go/core/cache"
	"github.com/codewandler/ttlcache-go/core/metrics"
)

// cacheMetrics implements cache.Metrics using Prometheus.
type cacheMetrics struct {
	hitsTotal     *prometheus.CounterVec
	missesTotal   *prometheus.CounterVec
	disposedTotal *prometheus.CounterVec
	entries       *prometheus.GaugeVec
	purgeDuration *prometheus.HistogramVec
	loadsTotal    *prometheus.CounterVec
}

// NewCacheMetrics creates a new Prometheus implementation of cache.Metrics.
// Several caches may share one instance; they are told apart by the cache
// label.
func NewCacheMetrics(reg prometheus.Registerer) cache.Metrics {
	m := &cacheMetrics{
		hitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlcache_hits_total",
			Help: "Total number of cache hits",
		}, []string{"cache"}),

		missesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlcache_misses_total",
			Help: "Total number of cache misses",
		}, []string{"cache"}),

		disposedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlcache_disposed_total",
			Help: "Total number of entries removed or replaced, by reason",
		}, []string{"cache", "reason"}),

		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ttlcache_entries",
			Help: "Current number of entries, including expired entries not yet purged",
		}, []string{"cache"}),

		purgeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ttlcache_purge_duration_seconds",
			Help:    "Duration of timer-driven stale purges in seconds",
			Buckets: purgeBuckets,
		}, []string{"cache"}),

		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ttlcache_loads_total",
			Help: "Total number of loads run to fill misses",
		}, []string{"cache", "success"}),
	}

	reg.MustRegister(
		m.hitsTotal,
		m.missesTotal,
		m.disposedTotal,
		m.entries,
		m.purgeDuration,
		m.loadsTotal,
	)

	return m
}

func (m *cacheMetrics) Hit(name string) {
	m.hitsTotal.WithLabelValues(name).Inc()
}

func (m *cacheMetrics) Miss(name string) {
	m.missesTotal.WithLabelValues(name).Inc()
}

func (m *cacheMetrics) Disposed(name string, reason cache.Reason, n int) {
	m.disposedTotal.WithLabelValues(name, reason.String()).Add(float64(n))
}

func (m *cacheMetrics) Entries(name string, n int) {
	m.entries.WithLabelValues(name).Set(float64(n))
}

func (m *cacheMetrics) PurgeDuration(name string) metrics.Timer {
	return newTimer(m.purgeDuration.WithLabelValues(name))
}

func (m *cacheMetrics) Loaded(name string, success bool) {
	m.loadsTotal.WithLabelValues(name, boolToStr(success)).Inc()
}

var _ cache.Metrics = (*cacheMetrics)(nil)
