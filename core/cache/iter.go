package cache

import (
	"iter"
	"math"
)

// All iterates over the entries in expiration order: soonest first, keys
// sharing an expiration in the order they were assigned it, entries that
// never expire last. Expired entries that have not been purged are
// included.
//
// The walk copies one bucket at a time and yields without holding the lock,
// so the loop body may use the cache. An entry moved by such a call may be
// seen again or skipped. Each call to All starts a new walk.
func (c *TTL[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		cursor := int64(math.MinInt64)
		for {
			at, keys, vals, ok := c.nextBucket(cursor)
			if !ok {
				return
			}
			for i, k := range keys {
				if !yield(k, vals[i]) {
					return
				}
			}
			cursor = at
		}
	}
}

// Keys iterates over the keys in the order of All.
func (c *TTL[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range c.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values iterates over the values in the order of All.
func (c *TTL[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range c.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (c *TTL[K, V]) nextBucket(after int64) (at int64, keys []K, vals []V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	at, keys, ok = c.index.Next(after)
	if !ok {
		return 0, nil, nil, false
	}
	vals = make([]V, len(keys))
	for i, k := range keys {
		vals[i], _ = c.store.get(k)
	}
	return at, keys, vals, true
}
