package cache

import "github.com/codewandler/ttlcache-go/core/metrics"

// Metrics defines the instrumentation hooks of a cache. Every method
// receives the cache name set with WithName. Implementations must be
// thread-safe.
type Metrics interface {
	// Reads
	Hit(cache string)
	Miss(cache string)

	// Disposed counts n notifications for reason, whether or not a dispose
	// callback is registered.
	Disposed(cache string, reason Reason, n int)

	// Entries reports the entry count after a mutating call.
	Entries(cache string, n int)

	// PurgeDuration times one timer-driven stale purge.
	PurgeDuration(cache string) metrics.Timer

	// Loaded counts one load run by GetOrLoad.
	Loaded(cache string, success bool)
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) Hit(string)                   {}
func (nopMetrics) Miss(string)                  {}
func (nopMetrics) Disposed(string, Reason, int) {}
func (nopMetrics) Entries(string, int)          {}
func (nopMetrics) Loaded(string, bool)          {}

func (nopMetrics) PurgeDuration(string) metrics.Timer { return metrics.NopTimer() }

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
