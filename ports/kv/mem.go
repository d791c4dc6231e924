package kv

import (
	"bytes"
	"context"
	"reflect"
	"time"

	"github.com/codewandler/ttlcache-go/core/cache"
)

// MemStore is a Store held in a cache.TTL. Reads check the entry's age, so
// an expired entry is never returned even if it has not been purged yet.
type MemStore struct {
	c *cache.TTL[string, Entry]
}

// NewMemStore creates an in-memory store. opts are passed to the underlying
// cache, e.g. cache.WithMax to bound it or cache.WithDispose to observe
// removals.
func NewMemStore(opts ...cache.Option) (*MemStore, error) {
	base := []cache.Option{
		cache.WithCheckAgeOnGet(true),
		cache.WithEqual(entryEqual),
	}
	c, err := cache.NewTTL[string, Entry](append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &MemStore{c: c}, nil
}

func entryEqual(a, b Entry) bool {
	return bytes.Equal(a.Data, b.Data) && reflect.DeepEqual(a.Meta, b.Meta)
}

// putTTL maps PutOptions.TTL onto the cache's millisecond resolution,
// rounding up.
func putTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return cache.Forever
	}
	if r := ttl % time.Millisecond; r != 0 {
		ttl += time.Millisecond - r
	}
	return ttl
}

func (m *MemStore) Put(ctx context.Context, key string, entry Entry, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.c.Set(key, entry, cache.WithTTL(putTTL(opts.TTL)))
}

func (m *MemStore) Get(ctx context.Context, key string) (entry Entry, err error) {
	if err = ctx.Err(); err != nil {
		return entry, err
	}

	var ok bool
	entry, ok = m.c.Get(key)
	if !ok {
		return entry, ErrNotFound
	}

	return entry, nil
}

func (m *MemStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.c.Delete(key)
	return nil
}

// Len returns the number of stored entries.
func (m *MemStore) Len() int { return m.c.Len() }

var _ Store = (*MemStore)(nil)
