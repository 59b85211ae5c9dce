package eventloop

import "sync/atomic"

// Lifecycle states, monotonically increasing: NOT_STARTED < STARTED <
// SHUTTING_DOWN < SHUTDOWN < TERMINATED. A CAS loop never installs a
// smaller value than the one it read.
const (
	stateNotStarted   int32 = 1
	stateStarted      int32 = 2
	stateShuttingDown int32 = 3
	stateShutdown     int32 = 4
	stateTerminated   int32 = 5
)

func stateName(s int32) string {
	switch s {
	case stateNotStarted:
		return "NOT_STARTED"
	case stateStarted:
		return "STARTED"
	case stateShuttingDown:
		return "SHUTTING_DOWN"
	case stateShutdown:
		return "SHUTDOWN"
	case stateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// loadState and casState centralize the atomic access to Executor.state
// so every transition site reads the same memory ordering guarantees.
func (e *Executor) loadState() int32 {
	return atomic.LoadInt32(&e.state)
}

func (e *Executor) casState(old, new int32) bool {
	return atomic.CompareAndSwapInt32(&e.state, old, new)
}

func (e *Executor) storeState(s int32) {
	atomic.StoreInt32(&e.state, s)
	e.observeState(s)
}

// observeState updates the optional metrics gauge; a no-op when no
// GroupMetrics is attached.
func (e *Executor) observeState(s int32) {
	if e.metrics != nil {
		e.metrics.setState(e.name, s)
	}
}

// IsShuttingDown reports state >= SHUTTING_DOWN.
func (e *Executor) IsShuttingDown() bool {
	return e.loadState() >= stateShuttingDown
}

// IsShutdown reports state >= SHUTDOWN.
func (e *Executor) IsShutdown() bool {
	return e.loadState() >= stateShutdown
}

// IsTerminated reports state == TERMINATED.
func (e *Executor) IsTerminated() bool {
	return e.loadState() == stateTerminated
}

// State returns a human-readable label for the current lifecycle state;
// primarily useful for logging and the admin introspection endpoint.
func (e *Executor) State() string {
	return stateName(e.loadState())
}
