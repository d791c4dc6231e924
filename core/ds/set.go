// Package ds provides generic data structures used by the expiration index.
package ds

import (
	"container/list"
	"iter"
)

// Set is an ordered set with O(1) membership testing, O(1) removal and
// insertion order preservation. Adding an element that is already present
// keeps its position; to move an element to the tail, Remove it and Add it
// again.
//
// # Mutation Semantics
//
// The following methods mutate the receiver:
//   - Add, Remove, Clear
//
// The following methods only read:
//   - Contains, Len, IsEmpty, ForEach, All, Values
type Set[T comparable] struct {
	items map[T]*list.Element
	order *list.List // preserves insertion order
}

// Add appends id to the set. No-op if already present. (mutates)
func (s *Set[T]) Add(id T) {
	if s.contains(id) {
		return
	}
	s.items[id] = s.order.PushBack(id)
}

// Len returns the number of elements in the set.
func (s *Set[T]) Len() int { return len(s.items) }

// Remove removes the given ids from the set and reports how many were
// present. (mutates)
func (s *Set[T]) Remove(ids ...T) (removed int) {
	for _, id := range ids {
		if e, ok := s.items[id]; ok {
			s.order.Remove(e)
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Contains returns true if v is present in the set.
func (s *Set[T]) Contains(v T) bool {
	return s.contains(v)
}

func (s *Set[T]) contains(id T) bool {
	_, ok := s.items[id]
	return ok
}

// ForEach iterates over all elements in insertion order until fn returns
// false. fn must not mutate the set.
func (s *Set[T]) ForEach(fn func(T) bool) {
	for e := s.order.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.(T)) {
			return
		}
	}
}

// All returns an iterator over the elements in insertion order. The set
// must not be mutated while the iterator is running.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		s.ForEach(yield)
	}
}

// IsEmpty returns true if the set contains no elements.
func (s *Set[T]) IsEmpty() bool { return len(s.items) == 0 }

// Values returns a copy of the elements in insertion order.
func (s *Set[T]) Values() []T {
	out := make([]T, 0, len(s.items))
	for e := s.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(T))
	}
	return out
}

// Clear removes all elements from the set. (mutates)
func (s *Set[T]) Clear() {
	s.items = make(map[T]*list.Element)
	s.order.Init()
}

// NewSet creates a new set with the given items.
func NewSet[T comparable](items ...T) *Set[T] {
	set := &Set[T]{items: make(map[T]*list.Element, len(items)), order: list.New()}
	for _, item := range items {
		set.Add(item)
	}
	return set
}
