package cache

// store is the source of truth for membership: key to value, and key to the
// expiration timestamp that names the key's bucket in the index.
type store[K comparable, V any] struct {
	values  map[K]V
	expires map[K]int64
}

func newStore[K comparable, V any]() *store[K, V] {
	return &store[K, V]{
		values:  make(map[K]V),
		expires: make(map[K]int64),
	}
}

func (s *store[K, V]) put(key K, val V) { s.values[key] = val }

func (s *store[K, V]) get(key K) (V, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *store[K, V]) contains(key K) bool {
	_, ok := s.values[key]
	return ok
}

func (s *store[K, V]) count() int { return len(s.values) }

func (s *store[K, V]) expiration(key K) (int64, bool) {
	at, ok := s.expires[key]
	return at, ok
}

func (s *store[K, V]) setExpiration(key K, at int64) { s.expires[key] = at }

// remove drops the key from both maps and returns the value it held.
func (s *store[K, V]) remove(key K) (V, bool) {
	v, ok := s.values[key]
	delete(s.values, key)
	delete(s.expires, key)
	return v, ok
}

func (s *store[K, V]) clear() {
	clear(s.values)
	clear(s.expires)
}
