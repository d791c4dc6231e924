// Package cache provides [TTL], an in-memory key/value cache in which every
// entry has an absolute expiration time, and the [Cache] interface it
// shares with [Nop].
//
// # Expiration
//
// Entries are grouped by expiration timestamp in millisecond resolution.
// One timer per cache is armed for the earliest timestamp; when it fires,
// every expired entry is removed with [ReasonStale] and the timer is armed
// again for the next timestamp. Until the timer fires an expired entry is
// still visible to [TTL.Has] and iteration; use [WithCheckAgeOnGet] for an
// authoritative read.
//
//	c, err := cache.NewTTL[string, *User](
//	    cache.WithTTL(5*time.Minute),
//	    cache.WithMax(1000),
//	)
//	if err != nil {
//	    return err
//	}
//	_ = c.Set("user:123", user)
//	_ = c.Set("session", s, cache.WithTTL(30*time.Second))
//	if u, ok := c.Get("user:123"); ok {
//	    // use u
//	}
//
// # Capacity
//
// With [WithMax], a Set that pushes the cache over its limit evicts the
// entries closest to expiring, disposing them with [ReasonEvict]. Entries
// created with [Forever] are evicted last.
//
// # Dispose
//
// [WithDispose] registers a callback that receives every value leaving the
// cache together with a [Reason]. Callbacks run after the cache lock is
// released, in the order the removals happened, and may use the cache.
//
//	cache.WithDispose(func(u *User, key string, r cache.Reason) {
//	    log.Info("user dropped", "key", key, "reason", r)
//	})
//
// # Loading
//
// [TTL.GetOrLoad] fills misses through a loader, running at most one load
// per key at a time.
package cache
