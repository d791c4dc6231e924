package sf

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleflight_Do(t *testing.T) {
	s := New[string]()
	v, shared, err := s.Do("k", func() (string, error) { return "v", nil })
	require.NoError(t, err)
	require.False(t, shared)
	require.Equal(t, "v", v)
}

func TestSingleflight_Error(t *testing.T) {
	s := New[int]()
	boom := errors.New("boom")
	v, _, err := s.Do("k", func() (int, error) { return 7, boom })
	require.ErrorIs(t, err, boom)
	require.Zero(t, v)
}

func TestSingleflight_Dedup(t *testing.T) {
	s := New[int]()

	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := s.Do("k", func() (int, error) {
				if calls.Add(1) == 1 {
					close(started)
				}
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	<-started
	// give the other callers a moment to join the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, []int{42, 42, 42, 42, 42}, results)
}
