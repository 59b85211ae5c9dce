package eventloop

import (
	"context"
	"sync/atomic"
)

// Result is the outcome of a Callable submitted via Submit: a single
// Value/Err pair delivered exactly once.
type Result struct {
	Value any
	Err   error
}

// Callable is a task that produces a Result; Submit wraps one in a Future.
type Callable func(ctx context.Context) *Result

// Future is the handle returned by Submit and Schedule.
type Future interface {
	Get() *Result
	IsCancelled() bool
	Cancel() bool
	IsDone() bool
}

// ScheduledFuture additionally reports its deadline.
type ScheduledFuture interface {
	Future
	Deadline() int64 // UnixNano
}

type futureTask struct {
	c         Callable
	ch        chan *Result
	done      atomic.Bool
	cancelled atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func newFutureTask(ctx context.Context, c Callable) *futureTask {
	f := &futureTask{c: c, ch: make(chan *Result, 1)}
	f.ctx, f.cancel = context.WithCancel(ctx)
	return f
}

func (f *futureTask) Get() *Result {
	return <-f.ch
}

func (f *futureTask) IsCancelled() bool {
	return f.cancelled.Load()
}

func (f *futureTask) Cancel() bool {
	if !f.cancelled.CompareAndSwap(false, true) {
		return false
	}
	f.cancel()
	return true
}

func (f *futureTask) IsDone() bool {
	return f.done.Load()
}

// run executes the wrapped Callable and delivers exactly one Result,
// unless the future was cancelled before or during the call, in which
// case the computed Result (if any) is discarded and Get returns
// ErrTaskCanceled instead.
func (f *futureTask) run() {
	if f.IsCancelled() {
		f.deliver(&Result{Err: ErrTaskCanceled})
		return
	}
	res := f.c(f.ctx)
	if f.IsCancelled() {
		f.deliver(&Result{Err: ErrTaskCanceled})
		return
	}
	f.deliver(res)
}

func (f *futureTask) deliver(r *Result) {
	f.ch <- r
	f.done.Store(true)
}

type scheduledFutureTask struct {
	*futureTask
	st *scheduledTask
}

func (f *scheduledFutureTask) Deadline() int64 {
	return f.st.deadline
}

func (f *scheduledFutureTask) Cancel() bool {
	ok := f.futureTask.Cancel()
	f.st.cancel()
	return ok
}
