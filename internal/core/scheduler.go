package core

import "time"

// Timer is a cancellable scheduled action. Stop reports whether the action
// had not fired yet.
type Timer interface {
	Stop() bool
}

// Scheduler defers work. The app layer never calls time.AfterFunc directly so
// tests can drive timers without wall-clock waits.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// WallClock is the production Scheduler.
type WallClock struct{}

func (WallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
