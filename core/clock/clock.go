// Package clock abstracts the time source used by the cache: a reading of
// the current time and a deferred callback that can be stopped.
//
// [Real] is backed by the time package. [Fake] is a manually advanced clock
// for deterministic tests.
package clock

import "time"

// Timer is a pending callback created by [Clock.AfterFunc].
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock supplies the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine (or, for fake clocks, inline
	// during Advance) once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Real returns the wall clock. Readings carry the monotonic component, so
// differences between them are not affected by wall-clock adjustments.
func Real() Clock { return realClock{} }

var _ Clock = realClock{}
