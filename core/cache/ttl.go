package cache

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/codewandler/ttlcache-go/core/clock"
	"github.com/codewandler/ttlcache-go/core/expiry"
	"github.com/codewandler/ttlcache-go/core/sf"
)

// TTL is an in-memory cache in which every entry has an absolute expiration
// time. Expired entries are purged by a single timer armed for the earliest
// expiration. When a max entry count is set, the entries closest to expiring
// are evicted first.
//
// TTL is safe for concurrent use. Dispose callbacks run after the internal
// lock has been released and may call back into the cache.
type TTL[K comparable, V any] struct {
	mu sync.Mutex

	name        string
	max         int
	setDefaults setOpts
	getDefaults getOpts
	dispose     func(V, K, Reason)
	equal       func(a, b V) bool
	clock       clock.Clock
	epoch       time.Time
	log         *slog.Logger
	metrics     Metrics

	store   *store[K, V]
	index   *expiry.Index[K]
	timer   scheduler
	pending []disposal[K, V]
	loads   *sf.Singleflight[V]
}

// NewTTL creates a cache. Option values are validated here; an invalid
// value fails the whole construction.
func NewTTL[K comparable, V any](opts ...Option) (*TTL[K, V], error) {
	o := newCacheOpts(opts...)

	if o.hasMax && o.max <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMax, o.max)
	}
	if o.hasTTL {
		if err := checkTTL(o.ttl, true); err != nil {
			return nil, err
		}
	}
	if o.updateAgeOnGet && !o.hasTTL {
		return nil, fmt.Errorf("%w: updating age on get needs a default ttl", ErrTTLRequired)
	}

	c := &TTL[K, V]{
		name:        o.name,
		max:         o.max,
		setDefaults: o.setDefaults(),
		getDefaults: o.getDefaults(),
		equal:       defaultEqual[V],
		clock:       o.clock,
		epoch:       o.clock.Now(),
		log:         o.log.With(slog.String("cache", o.name)),
		metrics:     o.metrics,
		store:       newStore[K, V](),
		index:       expiry.New[K](),
		timer:       scheduler{clock: o.clock},
		loads:       sf.New[V](),
	}

	if o.hasDispose {
		fn, ok := o.dispose.(func(V, K, Reason))
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: got %T", ErrInvalidDispose, o.dispose)
		}
		c.dispose = fn
	}
	if o.equal != nil {
		fn, ok := o.equal.(func(a, b V) bool)
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: got %T", ErrInvalidEqual, o.equal)
		}
		c.equal = fn
	}

	return c, nil
}

// Name returns the name used in logs and metrics.
func (c *TTL[K, V]) Name() string { return c.name }

// Max returns the entry limit, or 0 if the cache is unbounded.
func (c *TTL[K, V]) Max() int { return c.max }

// Len returns the number of entries, including expired entries that have
// not been purged yet.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.count()
}

// Set stores val under key.
//
// A new key expires after the TTL. An existing key gets a fresh expiration
// unless noUpdateTTL is in effect and the current expiration has not passed
// yet. If the new value differs from the old one, the old value is disposed
// with ReasonSet unless noDisposeOnSet is in effect. Entries over the max
// count are evicted before Set returns; the key being set is never the one
// evicted.
func (c *TTL[K, V]) Set(key K, val V, opts ...SetOption) error {
	o, err := c.setOptions(opts)
	if err != nil {
		return err
	}
	c.do(func() { c.setLocked(key, val, o) })
	return nil
}

func (c *TTL[K, V]) setOptions(opts []SetOption) (setOpts, error) {
	o := c.setDefaults
	for _, opt := range opts {
		opt.applyToSet(&o)
	}
	return o, checkTTL(o.ttl, o.hasTTL)
}

func (c *TTL[K, V]) setLocked(key K, val V, o setOpts) {
	old, exists := c.store.get(key)
	c.store.put(key, val)

	if !exists {
		c.assignTTLLocked(key, o.ttl)
	} else {
		if !o.noUpdateTTL || c.staleLocked(key) {
			c.assignTTLLocked(key, o.ttl)
		}
		if !o.noDisposeOnSet && !c.equal(old, val) {
			c.enqueue(key, old, ReasonSet)
		}
	}

	c.purgeToCapacityLocked(&key)
}

// Get returns the value stored under key using the construction defaults
// for age checking and updating.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	v, ok, _ := c.GetWith(key)
	return v, ok
}

// GetWith is Get with per-call overrides. With checkAgeOnGet, an entry
// whose TTL has run out is deleted (ReasonDelete) and reported absent even
// if the timer has not purged it yet. With updateAgeOnGet, the entry's TTL
// is restarted as by SetTTL. The error reports an invalid TTL override.
func (c *TTL[K, V]) GetWith(key K, opts ...GetOption) (val V, ok bool, err error) {
	o := c.getDefaults
	for _, opt := range opts {
		opt.applyToGet(&o)
	}
	if o.updateAgeOnGet {
		if err = checkTTL(o.ttl, o.hasTTL); err != nil {
			return val, false, err
		}
	}

	c.do(func() {
		val, ok = c.store.get(key)
		switch {
		case !ok:
		case o.checkAgeOnGet && c.remainingLocked(key) == 0:
			c.removeLocked(key, ReasonDelete)
			var zero V
			val, ok = zero, false
		case o.updateAgeOnGet:
			c.assignTTLLocked(key, o.ttl)
		}
	})

	if ok {
		c.metrics.Hit(c.name)
	} else {
		c.metrics.Miss(c.name)
	}
	return val, ok, nil
}

// Has reports whether key is stored. It does not check the entry's age.
func (c *TTL[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.contains(key)
}

// SetTTL restarts the entry's TTL. It is a no-op for absent keys.
func (c *TTL[K, V]) SetTTL(key K, ttl time.Duration) error {
	if err := checkTTL(ttl, true); err != nil {
		return err
	}
	c.do(func() {
		if c.store.contains(key) {
			c.assignTTLLocked(key, ttl)
		}
	})
	return nil
}

// RemainingTTL returns the time until key expires, rounded up to the
// millisecond: Forever for entries that never expire, 0 for absent or
// expired entries.
func (c *TTL[K, V]) RemainingTTL(key K) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked(key)
}

// Delete removes key, disposing it with ReasonDelete. It reports whether
// the key was present.
func (c *TTL[K, V]) Delete(key K) (ok bool) {
	c.do(func() { ok = c.removeLocked(key, ReasonDelete) })
	return ok
}

// Clear removes every entry and stops the timer. Each entry is disposed
// with ReasonDelete; without a dispose callback no snapshot is taken.
func (c *TTL[K, V]) Clear() {
	c.do(func() {
		n := c.store.count()
		if c.dispose != nil {
			c.pending = make([]disposal[K, V], 0, len(c.pending)+n)
			for key := range c.index.All() {
				val, _ := c.store.get(key)
				c.pending = append(c.pending, disposal[K, V]{key: key, value: val, reason: ReasonDelete})
			}
		}
		if n > 0 {
			c.metrics.Disposed(c.name, ReasonDelete, n)
		}
		c.store.clear()
		c.index.Clear()
		c.timer.cancel()
	})
}

// CancelTimer stops the purge timer. Entries stay in place; the next write
// that introduces an expiration arms it again.
func (c *TTL[K, V]) CancelTimer() {
	c.do(c.timer.cancel)
}

// do runs fn under the lock, then delivers the dispose notifications fn
// queued. Notifications are delivered in the order they were queued.
func (c *TTL[K, V]) do(fn func()) {
	for _, d := range c.locked(fn) {
		c.dispose(d.value, d.key, d.reason)
	}
}

func (c *TTL[K, V]) locked(fn func()) []disposal[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn()
	c.metrics.Entries(c.name, c.store.count())

	batch := c.pending
	c.pending = nil
	return batch
}

func (c *TTL[K, V]) enqueue(key K, val V, reason Reason) {
	c.metrics.Disposed(c.name, reason, 1)
	if c.dispose == nil {
		return
	}
	c.pending = append(c.pending, disposal[K, V]{key: key, value: val, reason: reason})
}

// === time ===

// elapsed is the clock reading relative to the cache epoch. Expiration
// timestamps are whole milliseconds on this scale.
func (c *TTL[K, V]) elapsed() time.Duration { return c.clock.Now().Sub(c.epoch) }

func (c *TTL[K, V]) now() int64 { return c.elapsed().Milliseconds() }

func (c *TTL[K, V]) expiresAt(ttl time.Duration) int64 {
	if ttl == Forever {
		return expiry.Never
	}
	return c.now() + ttl.Milliseconds()
}

// untilExpiry is the exact, possibly negative, time left until at.
func untilExpiry(at int64, elapsed time.Duration) time.Duration {
	ms := elapsed.Milliseconds()
	frac := elapsed - time.Duration(ms)*time.Millisecond
	return time.Duration(at-ms)*time.Millisecond - frac
}

func (c *TTL[K, V]) remainingLocked(key K) time.Duration {
	at, ok := c.store.expiration(key)
	if !ok {
		return 0
	}
	if at == expiry.Never {
		return Forever
	}
	rem := untilExpiry(at, c.elapsed())
	if rem <= 0 {
		return 0
	}
	if r := rem % time.Millisecond; r != 0 {
		rem += time.Millisecond - r
	}
	return rem
}

func (c *TTL[K, V]) staleLocked(key K) bool {
	at, ok := c.store.expiration(key)
	return ok && at != expiry.Never && at <= c.now()
}

// === entry lifecycle ===

// assignTTLLocked moves key to the bucket for now+ttl, at the bucket's tail.
func (c *TTL[K, V]) assignTTLLocked(key K, ttl time.Duration) {
	at := c.expiresAt(ttl)
	if old, ok := c.store.expiration(key); ok {
		c.index.Remove(key, old)
	}
	c.index.Insert(key, at)
	c.store.setExpiration(key, at)
	if at != expiry.Never {
		c.scheduleLocked(at)
	}
}

// removeLocked detaches key from the index and the store and queues its
// disposal. The timer is cancelled once the cache is empty.
func (c *TTL[K, V]) removeLocked(key K, reason Reason) bool {
	at, ok := c.store.expiration(key)
	if !ok {
		return false
	}
	c.index.Remove(key, at)
	val, _ := c.store.remove(key)
	c.enqueue(key, val, reason)
	if c.store.count() == 0 {
		c.timer.cancel()
	}
	return true
}

func (c *TTL[K, V]) scheduleLocked(at int64) {
	c.timer.arm(at, max(0, untilExpiry(at, c.elapsed())), c.onTimer)
}

func (c *TTL[K, V]) onTimer(gen uint64) {
	c.do(func() {
		if !c.timer.fired(gen) {
			return
		}
		t := c.metrics.PurgeDuration(c.name)
		if n := c.purgeStaleLocked(); n > 0 {
			c.log.Debug("purged stale entries", slog.Int("count", n))
		}
		t.ObserveDuration()
		if at, ok := c.index.Earliest(); ok {
			c.scheduleLocked(at)
		}
	})
}

// defaultEqual compares with == when both values are comparable at run
// time. Anything else (slices, maps, funcs) counts as changed.
func defaultEqual[V any](a, b V) bool {
	va, vb := reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem()
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

var _ Cache[string, any] = (*TTL[string, any])(nil)
