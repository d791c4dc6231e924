package cache

import (
	"time"

	"github.com/codewandler/ttlcache-go/core/clock"
)

// scheduler keeps at most one pending callback, armed for the earliest
// expiration it has been asked to cover. It is idle when timer is nil.
// All methods run under the cache lock.
type scheduler struct {
	clock  clock.Clock
	timer  clock.Timer
	target int64
	gen    uint64
}

// arm makes sure a callback fires no later than target. It is a no-op when
// the pending callback already targets target or something earlier.
func (s *scheduler) arm(target int64, delay time.Duration, fire func(gen uint64)) {
	if s.timer != nil && s.target <= target {
		return
	}
	s.cancel()
	s.gen++
	gen := s.gen
	s.target = target
	s.timer = s.clock.AfterFunc(delay, func() { fire(gen) })
}

// cancel stops the pending callback, if any. Idempotent.
func (s *scheduler) cancel() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	s.timer = nil
}

// fired moves the scheduler to idle on behalf of the callback armed as gen.
// It returns false for callbacks whose timer was stopped or replaced after
// the runtime had already released them.
func (s *scheduler) fired(gen uint64) bool {
	if s.timer == nil || gen != s.gen {
		return false
	}
	s.timer = nil
	return true
}

func (s *scheduler) armed() (target int64, ok bool) {
	return s.target, s.timer != nil
}
