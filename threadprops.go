package eventloop

import "time"

// ThreadProperties is a point-in-time snapshot of the worker goroutine
// backing an Executor, minus the handful of fields (priority, full
// stack trace) that have no meaningful equivalent once "thread" becomes
// "goroutine".
type ThreadProperties struct {
	Name        string
	GoroutineID int64
	Alive       bool
	Interrupted bool
	State       string
	StartedAt   time.Time
}
