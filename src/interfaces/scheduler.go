package interfaces

import "time"

// -----------------------------------------------------------------------------
// ITimer is a cancellable scheduled callback.
// -----------------------------------------------------------------------------

type ITimer interface {
	// Stop prevents the callback from firing. It reports whether the timer was still pending.
	Stop() bool
}

// -----------------------------------------------------------------------------
// IScheduler schedules callbacks onto the event loop.
// -----------------------------------------------------------------------------

type IScheduler interface {
	AfterFunc(d time.Duration, fn func()) ITimer
}
