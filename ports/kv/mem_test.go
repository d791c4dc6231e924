package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/ttlcache-go/core/cache"
	"github.com/codewandler/ttlcache-go/core/clock"
)

func Test_Memory(t *testing.T) {
	type Foo struct {
		Name string
		Age  int
	}
	s, err := NewMemStore()
	require.NoError(t, err)

	_, err = Get[Foo](t.Context(), s, "foobar")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Put[Foo](t.Context(), s, "p1", Foo{Name: "P1", Age: 10}, PutOptions{}))
	require.NoError(t, Put[Foo](t.Context(), s, "p2", Foo{Name: "P2", Age: 20}, PutOptions{}))

	loaded, err := Get[Foo](t.Context(), s, "p1")
	require.NoError(t, err)
	require.Equal(t, Foo{Name: "P1", Age: 10}, loaded)

	require.NoError(t, s.Delete(t.Context(), "p1"))
	_, err = Get[Foo](t.Context(), s, "p1")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, s.Len())
}

func Test_Memory_TTL(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	s, err := NewMemStore(cache.WithClock(clk))
	require.NoError(t, err)

	require.NoError(t, Put(t.Context(), s, "short", "v", PutOptions{TTL: 50 * time.Millisecond}))
	require.NoError(t, Put(t.Context(), s, "rounded", "v", PutOptions{TTL: 1500 * time.Microsecond}))
	require.NoError(t, Put(t.Context(), s, "forever", "v", PutOptions{}))

	clk.Advance(2 * time.Millisecond)
	_, err = Get[string](t.Context(), s, "rounded")
	require.ErrorIs(t, err, ErrNotFound)

	clk.Advance(48 * time.Millisecond)
	_, err = Get[string](t.Context(), s, "short")
	require.ErrorIs(t, err, ErrNotFound)

	v, err := Get[string](t.Context(), s, "forever")
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func Test_Memory_Max(t *testing.T) {
	var evicted []string
	s, err := NewMemStore(
		cache.WithMax(1),
		cache.WithDispose(func(_ Entry, key string, r cache.Reason) {
			if r == cache.ReasonEvict {
				evicted = append(evicted, key)
			}
		}),
	)
	require.NoError(t, err)

	require.NoError(t, s.Put(t.Context(), "a", Entry{Data: []byte("1")}, PutOptions{TTL: time.Minute}))
	require.NoError(t, s.Put(t.Context(), "b", Entry{Data: []byte("2")}, PutOptions{TTL: time.Hour}))
	require.Equal(t, []string{"a"}, evicted)
	require.Equal(t, 1, s.Len())
}

func Test_Memory_Cancelled(t *testing.T) {
	s, err := NewMemStore()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.ErrorIs(t, s.Put(ctx, "a", Entry{}, PutOptions{}), context.Canceled)
	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Delete(ctx, "a"), context.Canceled)
}

func Test_Memory_InvalidOption(t *testing.T) {
	_, err := NewMemStore(cache.WithMax(0))
	require.ErrorIs(t, err, cache.ErrInvalidMax)
}
