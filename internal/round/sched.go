// Package round drives the question lifecycle of a practice round.
package round

import "time"

// TimerHandle cancels a scheduled callback. Stop reports whether the
// callback was prevented from running; a handle whose callback is
// already in flight returns false, and the controller's sequence guard
// makes the late callback a no-op.
type TimerHandle interface {
	Stop() bool
}

// Scheduler arms one-shot timers. The controller holds at most one
// outstanding handle per timer kind and cancels before rescheduling.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) TimerHandle
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}

// WallClock returns the time.AfterFunc-backed scheduler.
func WallClock() Scheduler {
	return wallScheduler{}
}
