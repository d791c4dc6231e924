package cache

// Reason tells a dispose callback why an entry left the cache, or, for
// ReasonSet, why its value was replaced.
type Reason string

const (
	// ReasonSet: the value was overwritten by Set. The callback receives the old value.
	ReasonSet Reason = "set"
	// ReasonDelete: removed by Delete, Clear, or an age-checking Get.
	ReasonDelete Reason = "delete"
	// ReasonStale: expired and purged.
	ReasonStale Reason = "stale"
	// ReasonEvict: removed to bring the cache back within its max entry count.
	ReasonEvict Reason = "evict"
)

func (r Reason) String() string { return string(r) }

type disposal[K comparable, V any] struct {
	key    K
	value  V
	reason Reason
}
