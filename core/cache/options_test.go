package cache

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOptions_Defaults(t *testing.T) {
	o := newCacheOpts()
	require.NotNil(t, o.clock)
	require.Equal(t, slog.Default(), o.log)
	require.True(t, strings.HasPrefix(o.name, "cache-"))
	require.False(t, o.hasMax)
	require.False(t, o.hasTTL)

	c, err := NewTTL[string, int]()
	require.NoError(t, err)
	require.Zero(t, c.Max())
	require.True(t, strings.HasPrefix(c.Name(), "cache-"))
}

func TestOptions_NilIgnored(t *testing.T) {
	o := newCacheOpts(WithClock(nil), WithLogger(nil), WithMetrics(nil))
	require.NotNil(t, o.clock)
	require.NotNil(t, o.log)
	require.NotNil(t, o.metrics)
}

func TestOptions_Shadowing(t *testing.T) {
	c, _, _ := newTestCache(t,
		WithTTL(time.Second),
		WithNoUpdateTTL(true),
		WithCheckAgeOnGet(true),
	)

	t.Run("set", func(t *testing.T) {
		o, err := c.setOptions([]SetOption{WithTTL(5 * time.Millisecond), WithNoUpdateTTL(false)})
		require.NoError(t, err)
		require.Equal(t, 5*time.Millisecond, o.ttl)
		require.False(t, o.noUpdateTTL)

		require.True(t, c.setDefaults.noUpdateTTL, "overrides must not leak into defaults")
		require.Equal(t, time.Second, c.setDefaults.ttl)
	})

	t.Run("get", func(t *testing.T) {
		require.True(t, c.getDefaults.checkAgeOnGet)
		require.False(t, c.getDefaults.updateAgeOnGet)
	})
}

func TestOptions_Name(t *testing.T) {
	c, err := NewTTL[int, int](WithName("sessions"))
	require.NoError(t, err)
	require.Equal(t, "sessions", c.Name())
}

func TestCheckTTL(t *testing.T) {
	require.NoError(t, checkTTL(time.Millisecond, true))
	require.NoError(t, checkTTL(Forever, true))
	require.ErrorIs(t, checkTTL(time.Second, false), ErrTTLRequired)
	require.ErrorIs(t, checkTTL(time.Millisecond+1, true), ErrInvalidTTL)
}
