package eventloop

import "errors"

var (
	// ErrTaskCanceled is returned by a Future's Get when the underlying task was cancelled.
	ErrTaskCanceled = errors.New("eventloop: task has been canceled")

	// ErrRejectedExecution is returned (or passed to a RejectedExecutionHandler)
	// when a task cannot be enqueued because the executor has shut down or its
	// task queue is full.
	ErrRejectedExecution = errors.New("eventloop: task rejected")

	// ErrNilTask is returned when Execute, Submit or Schedule is called with a nil task.
	ErrNilTask = errors.New("eventloop: task must not be nil")

	// ErrNegativeQuietPeriod is returned by ShutdownGracefully when quietPeriod < 0.
	ErrNegativeQuietPeriod = errors.New("eventloop: quietPeriod must be >= 0")

	// ErrTimeoutBeforeQuietPeriod is returned by ShutdownGracefully when timeout < quietPeriod.
	ErrTimeoutBeforeQuietPeriod = errors.New("eventloop: timeout must be >= quietPeriod")

	// ErrSelfDeadlock is returned when a blocking, collective operation
	// (AwaitTermination, SubmitAll, SubmitAny) is invoked from the worker
	// goroutine itself, which would otherwise deadlock forever.
	ErrSelfDeadlock = errors.New("eventloop: calling this method from within the event loop is not allowed")

	// ErrNotInEventLoop is the panic value of helpers that assert they run
	// on the worker goroutine (ConfirmShutdown, takeTask,
	// fetchFromScheduledTaskQueue) when called elsewhere.
	ErrNotInEventLoop = errors.New("eventloop: must be invoked from the event loop")

	// ErrEmptyGroup is returned by NewGroup when asked to build a group of size <= 0.
	ErrEmptyGroup = errors.New("eventloop: executor group must have at least one member")

	// ErrInvalidTaskQueueCap is the panic value of NewExecutor when a negative task queue capacity is requested.
	ErrInvalidTaskQueueCap = errors.New("eventloop: task queue capacity must not be negative")
)

// RejectedExecutionHandler is invoked when a task cannot be added to an
// executor's task queue because the queue is full. A task submitted to
// an executor that has shut down is rejected with ErrRejectedExecution
// without consulting the handler.
type RejectedExecutionHandler interface {
	Rejected(task Task, e *Executor) error
}

// AbortPolicy is the default RejectedExecutionHandler: it returns
// ErrRejectedExecution and does nothing else.
type AbortPolicy struct{}

func (AbortPolicy) Rejected(task Task, e *Executor) error {
	return ErrRejectedExecution
}

// CallerRunsPolicy runs the rejected task synchronously on the calling
// goroutine instead of rejecting it outright. Useful for applying
// backpressure without dropping work.
type CallerRunsPolicy struct{}

func (CallerRunsPolicy) Rejected(task Task, e *Executor) error {
	task()
	return nil
}

// CountingRejectionHandler wraps another handler and counts how many
// times it has been invoked; used by tests that assert a handler was
// invoked exactly once.
type CountingRejectionHandler struct {
	Delegate RejectedExecutionHandler

	sem   chan struct{}
	count int
}

func NewCountingRejectionHandler(delegate RejectedExecutionHandler) *CountingRejectionHandler {
	if delegate == nil {
		delegate = AbortPolicy{}
	}
	h := &CountingRejectionHandler{Delegate: delegate, sem: make(chan struct{}, 1)}
	h.sem <- struct{}{}
	return h
}

func (h *CountingRejectionHandler) Rejected(task Task, e *Executor) error {
	<-h.sem
	h.count++
	h.sem <- struct{}{}
	return h.Delegate.Rejected(task, e)
}

func (h *CountingRejectionHandler) Count() int {
	<-h.sem
	n := h.count
	h.sem <- struct{}{}
	return n
}
