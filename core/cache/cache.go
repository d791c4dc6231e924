package cache

// Cache is the read/write surface shared by [TTL] and [Nop].
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, val V, opts ...SetOption) error
	Delete(key K) bool
	Has(key K) bool
	Len() int
}
