// Package expiry implements the expiration index: keys grouped into buckets
// by exact expiration timestamp, buckets ordered by timestamp, and one extra
// bucket for keys that never expire.
//
// The index holds no values and applies no policy. Grouping by timestamp
// lets "everything expired by now" and "the n soonest to expire" be answered
// by walking buckets from the front, touching only the affected keys.
package expiry

import (
	"iter"
	"math"

	"github.com/google/btree"

	"github.com/codewandler/ttlcache-go/core/ds"
)

// Never marks a key that never expires. It sorts after every finite timestamp.
const Never int64 = math.MaxInt64

const degree = 16

type bucket[K comparable] struct {
	at   int64
	keys *ds.Set[K]
}

func lessBucket[K comparable](a, b *bucket[K]) bool { return a.at < b.at }

// Index maps expiration timestamps to the ordered set of keys expiring at
// that instant. Within a bucket, keys keep the order in which they were
// inserted. It is not safe for concurrent use.
type Index[K comparable] struct {
	tree  *btree.BTreeG[*bucket[K]]
	never *ds.Set[K]
	n     int
}

// New creates an empty index.
func New[K comparable]() *Index[K] {
	return &Index[K]{
		tree:  btree.NewG(degree, lessBucket[K]),
		never: ds.NewSet[K](),
	}
}

// Len returns the number of keys across all buckets.
func (x *Index[K]) Len() int { return x.n }

// Insert appends key to the bucket for at, creating the bucket if needed.
// The caller must make sure the key is not present in another bucket.
func (x *Index[K]) Insert(key K, at int64) {
	if at == Never {
		if !x.never.Contains(key) {
			x.never.Add(key)
			x.n++
		}
		return
	}

	b, ok := x.tree.Get(&bucket[K]{at: at})
	if !ok {
		b = &bucket[K]{at: at, keys: ds.NewSet[K]()}
		x.tree.ReplaceOrInsert(b)
	}
	if !b.keys.Contains(key) {
		b.keys.Add(key)
		x.n++
	}
}

// Remove deletes key from the bucket for at. A bucket left empty is dropped.
// It reports whether the key was found there.
func (x *Index[K]) Remove(key K, at int64) bool {
	if at == Never {
		if x.never.Remove(key) == 0 {
			return false
		}
		x.n--
		return true
	}

	b, ok := x.tree.Get(&bucket[K]{at: at})
	if !ok || b.keys.Remove(key) == 0 {
		return false
	}
	x.n--
	if b.keys.IsEmpty() {
		x.tree.Delete(b)
	}
	return true
}

// Earliest returns the smallest finite timestamp that has keys.
func (x *Index[K]) Earliest() (int64, bool) {
	b, ok := x.tree.Min()
	if !ok {
		return 0, false
	}
	return b.at, true
}

// Take detaches the whole bucket for at and returns its keys in bucket order.
func (x *Index[K]) Take(at int64) []K {
	if at == Never {
		keys := x.never.Values()
		x.never.Clear()
		x.n -= len(keys)
		return keys
	}

	b, ok := x.tree.Delete(&bucket[K]{at: at})
	if !ok {
		return nil
	}
	keys := b.keys.Values()
	x.n -= len(keys)
	return keys
}

// Next returns a snapshot of the first non-empty bucket whose timestamp is
// greater than after. Finite buckets come first, then the Never bucket.
// Pass math.MinInt64 to start from the beginning.
func (x *Index[K]) Next(after int64) (at int64, keys []K, ok bool) {
	if after == Never {
		return 0, nil, false
	}
	x.tree.AscendGreaterOrEqual(&bucket[K]{at: after + 1}, func(b *bucket[K]) bool {
		at, keys, ok = b.at, b.keys.Values(), true
		return false
	})
	if ok {
		return at, keys, true
	}
	if x.never.IsEmpty() {
		return 0, nil, false
	}
	return Never, x.never.Values(), true
}

// All walks every key in expiration order: finite buckets ascending, each in
// insertion order, then the keys that never expire. The index must not be
// modified while the walk is running. The sequence can be ranged over again
// to restart it.
func (x *Index[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		stopped := false
		x.tree.Ascend(func(b *bucket[K]) bool {
			for k := range b.keys.All() {
				if !yield(k) {
					stopped = true
					return false
				}
			}
			return true
		})
		if stopped {
			return
		}
		for k := range x.never.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Clear drops every bucket.
func (x *Index[K]) Clear() {
	x.tree.Clear(false)
	x.never.Clear()
	x.n = 0
}
