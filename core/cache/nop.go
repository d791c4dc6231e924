package cache

// Nop is a cache that stores nothing. Set accepts any value and Get always
// misses.
type Nop[K comparable, V any] struct{}

func (n *Nop[K, V]) Get(key K) (v V, ok bool) {
	return v, false
}

func (n *Nop[K, V]) Set(key K, val V, opts ...SetOption) error {
	return nil
}

func (n *Nop[K, V]) Delete(key K) bool { return false }

func (n *Nop[K, V]) Has(key K) bool { return false }

func (n *Nop[K, V]) Len() int { return 0 }

func NewNop[K comparable, V any]() *Nop[K, V] {
	return &Nop[K, V]{}
}

var _ Cache[string, any] = (*Nop[string, any])(nil)
