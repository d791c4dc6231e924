package cache

import (
	"context"
	"fmt"
)

// LoadFunc produces the value for a key that is not cached.
type LoadFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// GetOrLoad returns the cached value for key, or calls load and stores its
// result with opts. Concurrent callers missing on the same key share one
// load. A failed load stores nothing and its error goes to every caller
// sharing it.
func (c *TTL[K, V]) GetOrLoad(ctx context.Context, key K, load LoadFunc[K, V], opts ...SetOption) (V, error) {
	var zero V

	o, err := c.setOptions(opts)
	if err != nil {
		return zero, err
	}
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	v, _, err := c.loads.Do(fmt.Sprintf("%T/%#v", key, key), func() (V, error) {
		// A caller that just finished a flight may have filled the key.
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		v, err := load(ctx, key)
		c.metrics.Loaded(c.name, err == nil)
		if err != nil {
			return zero, err
		}
		c.do(func() { c.setLocked(key, v, o) })
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return v, nil
}

func (c *TTL[K, V]) peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.get(key)
}
