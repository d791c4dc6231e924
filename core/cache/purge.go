package cache

import (
	"log/slog"
)

// PurgeStale removes every entry whose expiration has passed, disposing
// each with ReasonStale. It returns the number of entries removed.
func (c *TTL[K, V]) PurgeStale() (n int) {
	c.do(func() { n = c.purgeStaleLocked() })
	return n
}

// PurgeToCapacity evicts the entries closest to expiring until the cache
// holds at most Max entries. It returns the number of entries evicted.
func (c *TTL[K, V]) PurgeToCapacity() (n int) {
	c.do(func() { n = c.purgeToCapacityLocked(nil) })
	return n
}

// purgeStaleLocked detaches expired buckets one at a time, oldest first.
// A bucket is taken out of the index as a whole before any of its keys is
// disposed.
func (c *TTL[K, V]) purgeStaleLocked() int {
	now := c.now()
	n := 0
	for {
		at, ok := c.index.Earliest()
		if !ok || at > now {
			break
		}
		for _, key := range c.index.Take(at) {
			val, _ := c.store.remove(key)
			c.enqueue(key, val, ReasonStale)
			n++
		}
	}
	if c.store.count() == 0 {
		c.timer.cancel()
	}
	return n
}

// purgeToCapacityLocked evicts in index order: whole buckets from the
// front, then a prefix of the first bucket that satisfies the limit.
// protect, if set, is skipped so that a Set never evicts its own key.
func (c *TTL[K, V]) purgeToCapacityLocked(protect *K) int {
	if c.max <= 0 {
		return 0
	}
	over := c.store.count() - c.max
	if over <= 0 {
		return 0
	}

	victims := make([]K, 0, over)
	for key := range c.index.All() {
		if protect != nil && key == *protect {
			continue
		}
		victims = append(victims, key)
		if len(victims) == over {
			break
		}
	}

	for _, key := range victims {
		at, _ := c.store.expiration(key)
		c.index.Remove(key, at)
		val, _ := c.store.remove(key)
		c.enqueue(key, val, ReasonEvict)
	}
	if c.store.count() == 0 {
		c.timer.cancel()
	}

	c.log.Debug("evicted entries over capacity", slog.Int("count", len(victims)), slog.Int("max", c.max))
	return len(victims)
}
