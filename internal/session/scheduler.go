package session

import "time"

// Timer is a cancellable pending task.
type Timer interface {
	// Stop cancels the task; it reports false if the task already fired.
	Stop() bool
}

// Scheduler defers a task by a fixed delay. The production implementation
// wraps time.AfterFunc; tests substitute a manual scheduler so round resets
// fire on demand instead of on the wall clock.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Timer
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
