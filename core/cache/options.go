package cache

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/ttlcache-go/core/clock"
)

// Forever is the TTL of an entry that never expires. RemainingTTL reports
// it for such entries.
const Forever time.Duration = math.MaxInt64

type (
	cacheOpts struct {
		max            int
		hasMax         bool
		ttl            time.Duration
		hasTTL         bool
		updateAgeOnGet bool
		checkAgeOnGet  bool
		noUpdateTTL    bool
		noDisposeOnSet bool
		dispose        any
		hasDispose     bool
		equal          any
		clock          clock.Clock
		log            *slog.Logger
		metrics        Metrics
		name           string
	}

	setOpts struct {
		ttl            time.Duration
		hasTTL         bool
		noUpdateTTL    bool
		noDisposeOnSet bool
	}

	getOpts struct {
		ttl            time.Duration
		hasTTL         bool
		updateAgeOnGet bool
		checkAgeOnGet  bool
	}

	// Option configures a cache at construction time.
	Option interface {
		applyToCache(*cacheOpts)
	}

	// SetOption overrides a construction default for a single Set.
	SetOption interface {
		applyToSet(*setOpts)
	}

	// GetOption overrides a construction default for a single GetWith.
	GetOption interface {
		applyToGet(*getOpts)
	}
)

func newCacheOpts(opts ...Option) cacheOpts {
	options := cacheOpts{
		clock:   clock.Real(),
		log:     slog.Default(),
		metrics: NopMetrics(),
	}
	for _, opt := range opts {
		opt.applyToCache(&options)
	}
	if options.name == "" {
		options.name = fmt.Sprintf("cache-%s", gonanoid.Must(6))
	}
	return options
}

func (o cacheOpts) setDefaults() setOpts {
	return setOpts{
		ttl:            o.ttl,
		hasTTL:         o.hasTTL,
		noUpdateTTL:    o.noUpdateTTL,
		noDisposeOnSet: o.noDisposeOnSet,
	}
}

func (o cacheOpts) getDefaults() getOpts {
	return getOpts{
		ttl:            o.ttl,
		hasTTL:         o.hasTTL,
		updateAgeOnGet: o.updateAgeOnGet,
		checkAgeOnGet:  o.checkAgeOnGet,
	}
}

func checkTTL(ttl time.Duration, has bool) error {
	if !has {
		return ErrTTLRequired
	}
	if ttl == Forever {
		return nil
	}
	if ttl < time.Millisecond || ttl%time.Millisecond != 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}
	return nil
}

// === options ===

type (
	valueOption[T any]   struct{ v T }
	TTLOption            valueOption[time.Duration]
	MaxOption            valueOption[int]
	UpdateAgeOnGetOption valueOption[bool]
	CheckAgeOnGetOption  valueOption[bool]
	NoUpdateTTLOption    valueOption[bool]
	NoDisposeOnSetOption valueOption[bool]
	ClockOption          valueOption[clock.Clock]
	LogOption            valueOption[*slog.Logger]
	MetricsOption        valueOption[Metrics]
	NameOption           valueOption[string]
	DisposeOption        valueOption[any]
	EqualOption          valueOption[any]
)

// WithTTL sets the time-to-live: the cache default when passed to NewTTL,
// the entry's TTL when passed to Set, and the refreshed TTL when passed to
// GetWith together with age updating. It must be a positive whole number of
// milliseconds, or Forever.
func WithTTL(ttl time.Duration) TTLOption { return TTLOption{v: ttl} }

// WithMax bounds the number of entries. Without it the cache is unbounded.
func WithMax(n int) MaxOption { return MaxOption{v: n} }

// WithUpdateAgeOnGet refreshes an entry's TTL whenever it is read.
func WithUpdateAgeOnGet(b bool) UpdateAgeOnGetOption { return UpdateAgeOnGetOption{v: b} }

// WithCheckAgeOnGet makes reads re-check the entry's age against the clock
// and delete it if it has expired but not been purged yet.
func WithCheckAgeOnGet(b bool) CheckAgeOnGetOption { return CheckAgeOnGetOption{v: b} }

// WithNoUpdateTTL keeps the current expiration when an existing key is set
// again.
func WithNoUpdateTTL(b bool) NoUpdateTTLOption { return NoUpdateTTLOption{v: b} }

// WithNoDisposeOnSet suppresses the ReasonSet notification on overwrite.
func WithNoDisposeOnSet(b bool) NoDisposeOnSetOption { return NoDisposeOnSetOption{v: b} }

// WithClock replaces the time source.
func WithClock(c clock.Clock) ClockOption { return ClockOption{v: c} }

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) LogOption { return LogOption{v: l} }

// WithMetrics sets the metrics implementation.
func WithMetrics(m Metrics) MetricsOption { return MetricsOption{v: m} }

// WithName names the cache in logs and metrics. Defaults to a random id.
func WithName(name string) NameOption { return NameOption{v: name} }

// WithDispose registers the callback invoked once for every entry that
// leaves the cache. It runs after the cache has released its lock, so it may
// call back into the same cache.
func WithDispose[K comparable, V any](fn func(value V, key K, reason Reason)) DisposeOption {
	return DisposeOption{v: fn}
}

// WithEqual sets the comparison that decides whether Set replaced a value
// with a different one. The default uses == when both values are
// comparable and treats anything else as changed.
func WithEqual[V any](fn func(a, b V) bool) EqualOption { return EqualOption{v: fn} }

func (o TTLOption) applyToCache(c *cacheOpts) { c.ttl, c.hasTTL = o.v, true }
func (o TTLOption) applyToSet(s *setOpts)     { s.ttl, s.hasTTL = o.v, true }
func (o TTLOption) applyToGet(g *getOpts)     { g.ttl, g.hasTTL = o.v, true }

func (o MaxOption) applyToCache(c *cacheOpts) { c.max, c.hasMax = o.v, true }

func (o UpdateAgeOnGetOption) applyToCache(c *cacheOpts) { c.updateAgeOnGet = o.v }
func (o UpdateAgeOnGetOption) applyToGet(g *getOpts)     { g.updateAgeOnGet = o.v }

func (o CheckAgeOnGetOption) applyToCache(c *cacheOpts) { c.checkAgeOnGet = o.v }
func (o CheckAgeOnGetOption) applyToGet(g *getOpts)     { g.checkAgeOnGet = o.v }

func (o NoUpdateTTLOption) applyToCache(c *cacheOpts) { c.noUpdateTTL = o.v }
func (o NoUpdateTTLOption) applyToSet(s *setOpts)     { s.noUpdateTTL = o.v }

func (o NoDisposeOnSetOption) applyToCache(c *cacheOpts) { c.noDisposeOnSet = o.v }
func (o NoDisposeOnSetOption) applyToSet(s *setOpts)     { s.noDisposeOnSet = o.v }

func (o ClockOption) applyToCache(c *cacheOpts) {
	if o.v != nil {
		c.clock = o.v
	}
}
func (o LogOption) applyToCache(c *cacheOpts) {
	if o.v != nil {
		c.log = o.v
	}
}
func (o MetricsOption) applyToCache(c *cacheOpts) {
	if o.v != nil {
		c.metrics = o.v
	}
}
func (o NameOption) applyToCache(c *cacheOpts)    { c.name = o.v }
func (o DisposeOption) applyToCache(c *cacheOpts) { c.dispose, c.hasDispose = o.v, true }
func (o EqualOption) applyToCache(c *cacheOpts)   { c.equal = o.v }
