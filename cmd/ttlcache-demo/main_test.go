package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/ttlcache-go/core/cache"
)

func TestCacheOptions(t *testing.T) {
	counted := &counters{}

	t.Run("unbounded", func(t *testing.T) {
		c, err := cache.NewTTL[string, []byte](cacheOptions(slog.Default(), cache.NopMetrics(), 100, 0, counted.dispose)...)
		require.NoError(t, err)
		require.Zero(t, c.Max())
	})

	t.Run("bounded", func(t *testing.T) {
		c, err := cache.NewTTL[string, []byte](cacheOptions(slog.Default(), cache.NopMetrics(), 100, 2, counted.dispose)...)
		require.NoError(t, err)
		require.Equal(t, 2, c.Max())

		require.NoError(t, c.Set("a", nil))
		require.NoError(t, c.Set("b", nil))
		require.NoError(t, c.Set("c", nil))
		require.EqualValues(t, 1, counted.evict.Load())
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
