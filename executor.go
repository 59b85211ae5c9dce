package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Executor is a single-threaded event-executor core: exactly one worker
// goroutine, a bounded task queue producers hand work to, a scheduled
// queue the worker drains alongside it, and a five-state lifecycle that
// only ever moves forward.
type Executor struct {
	name     string
	loop     Loop
	launcher Launcher
	logger   Logger
	metrics  *GroupMetrics

	taskQueue *taskQueue
	scheduled *scheduledQueue

	addTaskWakesUp  bool
	maxPendingTasks int
	rejectedHandler RejectedExecutionHandler

	state int32 // atomic; see state.go

	workerGoroutineID atomic.Int64 // 0 until the worker records itself
	workerName        string       // set once, by the worker itself
	workerStarted     chan struct{}
	interruptPending  atomic.Bool
	interrupted       atomic.Bool
	workerStartedAt   time.Time

	lastExecutionTime           int64 // worker-owned, nanoseconds
	gracefulShutdownQuietPeriod time.Duration
	gracefulShutdownTimeout     time.Duration
	gracefulShutdownStartTime   int64 // 0 sentinel, worker-owned

	shutdownHooks []hookEntry // worker-owned

	terminationCh  chan struct{}
	terminationErr error
	terminateOnce  sync.Once

	threadProperties atomic.Pointer[ThreadProperties]

	startMu sync.Mutex // serializes the startThread CAS-and-spawn sequence
}

type hookEntry struct {
	id *hookID
	fn ShutdownHook
}

type hookID struct{}

// HookHandle identifies a previously added ShutdownHook so it can be
// removed again. Go func values aren't comparable, so — like removeTask
// — identity is tracked via an opaque token rather than the closure
// itself.
type HookHandle struct{ id *hookID }

// NewExecutor builds an Executor in the NOT_STARTED state. No worker
// goroutine is spawned until the first call to Execute, Submit,
// Schedule, Shutdown or ShutdownGracefully — lazy start is the whole
// point.
func NewExecutor(opts ...Option) *Executor {
	cfg := newExecutorConfig(opts...)
	e := &Executor{
		name:            cfg.name,
		loop:            cfg.loop,
		launcher:        cfg.launcher,
		logger:          cfg.logger,
		metrics:         cfg.metrics,
		addTaskWakesUp:  cfg.addTaskWakesUp,
		maxPendingTasks: cfg.maxPendingTasks,
		rejectedHandler: cfg.rejectedHandler,
		state:           stateNotStarted,
		taskQueue:       newTaskQueue(cfg.maxPendingTasks),
		scheduled:       newScheduledQueue(),
		workerStarted:   make(chan struct{}),
		terminationCh:   make(chan struct{}),
	}
	if cfg.metricsName == "" {
		e.metrics = nil // metrics without a name can't label collectors usefully
	}
	return e
}

// Name returns the human-readable identifier given via WithName or
// WithMetrics; empty if neither was set.
func (e *Executor) Name() string { return e.name }

// InEventLoop reports whether the calling goroutine is this executor's
// worker.
func (e *Executor) InEventLoop() bool {
	return e.InEventLoopID(currentGoroutineID())
}

// InEventLoopID reports whether goroutineID is this executor's worker —
// the goroutine-identity analogue of a thread-affinity check.
func (e *Executor) InEventLoopID(goroutineID int64) bool {
	id := e.workerGoroutineID.Load()
	return id != 0 && id == goroutineID
}

// PendingTasks returns the number of tasks currently queued. Expensive
// relative to a plain field read (it takes the queue's mutex); use with
// care on a hot path.
func (e *Executor) PendingTasks() int {
	n := e.taskQueue.Len()
	if e.metrics != nil {
		e.metrics.setPending(e.name, n)
	}
	return n
}

// Err returns the error, if any, that a failed worker bootstrap recorded
// on the termination path.
func (e *Executor) Err() error {
	return e.terminationErr
}

// TerminationCh is closed exactly once, after the worker has exited,
// confirmShutdown has returned true for the final time, Cleanup has run,
// and state has become TERMINATED.
func (e *Executor) TerminationCh() <-chan struct{} {
	return e.terminationCh
}

// AwaitTermination blocks up to timeout for TERMINATED, returning
// whether it was reached. Calling it from the worker itself would
// deadlock forever, so it is rejected instead.
func (e *Executor) AwaitTermination(timeout time.Duration) (bool, error) {
	if e.InEventLoop() {
		return false, ErrSelfDeadlock
	}
	if timeout <= 0 {
		select {
		case <-e.terminationCh:
			return true, nil
		default:
			return e.IsTerminated(), nil
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-e.terminationCh:
		return true, nil
	case <-timer.C:
		return e.IsTerminated(), nil
	}
}

// Execute submits task for fire-and-forget execution.
func (e *Executor) Execute(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	inEventLoop := e.InEventLoop()
	tagged, id := newTagged(task)
	if err := e.addTask(tagged); err != nil {
		return err
	}

	if !inEventLoop {
		e.startThread()
		if e.IsShutdown() && e.removeTaskByID(id) {
			return ErrRejectedExecution
		}
	}

	if !e.addTaskWakesUp && e.loop.WakesUpForTask(task) {
		e.wakeup(inEventLoop)
	}
	return nil
}

// Submit wraps a Callable in a Future and executes it on the worker.
func (e *Executor) Submit(c Callable) (Future, error) {
	if c == nil {
		return nil, ErrNilTask
	}
	f := newFutureTask(context.Background(), c)
	err := e.Execute(func() { f.run() })
	if err != nil {
		return nil, err
	}
	return f, nil
}

// SubmitAll submits every Callable in tasks and blocks until all of
// them complete, returning their Results in the same order. Calling it
// from the worker would have it waiting on its own Get forever, so it
// is rejected instead, same as AwaitTermination.
func (e *Executor) SubmitAll(tasks ...Callable) ([]*Result, error) {
	if e.InEventLoop() {
		return nil, ErrSelfDeadlock
	}
	futures := make([]Future, len(tasks))
	for i, c := range tasks {
		f, err := e.Submit(c)
		if err != nil {
			return nil, err
		}
		futures[i] = f
	}
	results := make([]*Result, len(tasks))
	for i, f := range futures {
		results[i] = f.Get()
	}
	return results, nil
}

// SubmitAny submits every Callable in tasks and returns the Result of
// whichever finishes first, cancelling the rest. Rejected the same way
// SubmitAll is when called from the worker.
func (e *Executor) SubmitAny(tasks ...Callable) (*Result, error) {
	if e.InEventLoop() {
		return nil, ErrSelfDeadlock
	}
	if len(tasks) == 0 {
		return nil, ErrNilTask
	}
	futures := make([]Future, len(tasks))
	for i, c := range tasks {
		f, err := e.Submit(c)
		if err != nil {
			return nil, err
		}
		futures[i] = f
	}

	type firstResult struct {
		index int
		res   *Result
	}
	done := make(chan firstResult, len(futures))
	for i, f := range futures {
		i, f := i, f
		go func() { done <- firstResult{i, f.Get()} }()
	}

	first := <-done
	for i, f := range futures {
		if i != first.index {
			f.Cancel()
		}
	}
	return first.res, nil
}

// Schedule arranges for task to run no earlier than delay from now. The
// scheduled queue is drained into the task queue by the worker's run-loop
// helpers (fetchFromScheduledTaskQueue), never executed directly here.
// The heap mutation itself is worker-owned: an in-loop caller adds
// directly, but an off-worker caller has the addition routed through
// Execute, exactly like any other off-worker submission, so a shut-down
// executor rejects the schedule instead of silently queuing a task
// nobody will ever poll again.
func (e *Executor) Schedule(task Task, delay time.Duration) (ScheduledFuture, error) {
	if task == nil {
		return nil, ErrNilTask
	}
	deadline := time.Now().Add(delay).UnixNano()
	ft := newFutureTask(context.Background(), func(ctx context.Context) *Result {
		task()
		return &Result{}
	})

	if e.InEventLoop() {
		st := e.scheduled.Add(func() { ft.run() }, deadline)
		e.wakeup(true)
		return &scheduledFutureTask{futureTask: ft, st: st}, nil
	}

	added := make(chan *scheduledTask, 1)
	if err := e.Execute(func() {
		added <- e.scheduled.Add(func() { ft.run() }, deadline)
	}); err != nil {
		return nil, err
	}
	return &scheduledFutureTask{futureTask: ft, st: <-added}, nil
}

// addTask is the queue-admission step: reject
// outright once shut down, otherwise hand the rejection handler anything
// the bounded queue can't take.
func (e *Executor) addTask(t taggedTask) error {
	if e.IsShutdown() {
		reason := "shutdown"
		if e.metrics != nil {
			e.metrics.incRejected(e.name, reason)
		}
		return ErrRejectedExecution
	}
	if e.taskQueue.Offer(t) {
		return nil
	}
	if e.metrics != nil {
		e.metrics.incRejected(e.name, "queue_full")
	}
	return e.rejectedHandler.Rejected(t.task, e)
}

func (e *Executor) removeTaskByID(id *taskID) bool {
	return e.taskQueue.Remove(func(t taggedTask) bool { return t.id == id })
}

// wakeup offers the sentinel task purely to unblock a worker parked in
// Take/PollTimeout. Offer failure is ignored: if the queue is full,
// something else is already pending and will wake the worker anyway.
func (e *Executor) wakeup(inEventLoop bool) {
	if !inEventLoop || e.loadState() == stateShuttingDown {
		e.taskQueue.Offer(newWakeupTagged())
	}
}

// InterruptThread sets a pending interrupt to be applied when the
// worker starts, or — if the worker is already running — flags it
// interrupted and nudges it out of any blocking wait via the same
// wakeup path Execute uses.
func (e *Executor) InterruptThread() {
	if e.workerGoroutineID.Load() == 0 {
		e.interruptPending.Store(true)
		return
	}
	e.interrupted.Store(true)
	e.taskQueue.Offer(newWakeupTagged())
}

// Interrupted reports whether InterruptThread has been called and not
// yet cleared. A Loop implementation may check this at the top of its
// first iteration.
func (e *Executor) Interrupted() bool {
	return e.interrupted.Load()
}

// AddShutdownHook registers h to run once, on the worker, while
// confirmShutdown drains the task queue. Off-worker
// callers have the mutation scheduled as a task instead of racing the
// worker's iteration over shutdownHooks.
func (e *Executor) AddShutdownHook(h ShutdownHook) HookHandle {
	entry := hookEntry{id: &hookID{}, fn: h}
	if e.InEventLoop() {
		e.shutdownHooks = append(e.shutdownHooks, entry)
	} else {
		e.Execute(func() { e.shutdownHooks = append(e.shutdownHooks, entry) })
	}
	return HookHandle{id: entry.id}
}

// RemoveShutdownHook undoes a prior AddShutdownHook.
func (e *Executor) RemoveShutdownHook(handle HookHandle) {
	remove := func() {
		for i, h := range e.shutdownHooks {
			if h.id == handle.id {
				e.shutdownHooks = append(e.shutdownHooks[:i], e.shutdownHooks[i+1:]...)
				return
			}
		}
	}
	if e.InEventLoop() {
		remove()
	} else {
		e.Execute(remove)
	}
}

// ThreadProperties returns a snapshot of the worker goroutine, starting
// it first (and blocking until it has recorded itself) if necessary.
func (e *Executor) ThreadProperties() ThreadProperties {
	if tp := e.threadProperties.Load(); tp != nil {
		return *tp
	}
	if e.workerGoroutineID.Load() == 0 {
		done := make(chan struct{})
		e.Execute(func() { close(done) })
		<-done
	}
	snap := ThreadProperties{
		Name:        e.workerName,
		GoroutineID: e.workerGoroutineID.Load(),
		Alive:       !e.IsTerminated(),
		Interrupted: e.Interrupted(),
		State:       e.State(),
		StartedAt:   e.workerStartedAt,
	}
	e.threadProperties.CompareAndSwap(nil, &snap)
	if tp := e.threadProperties.Load(); tp != nil {
		return *tp
	}
	return snap
}

// updateLastExecutionTime records now as the time a task last ran, which
// ConfirmShutdown's quiet-period check reads. runAllTasks and
// runShutdownHooks call it themselves; Loop code that runs tasks taken
// via pollTask/takeTask calls it after each one.
func (e *Executor) updateLastExecutionTime() {
	e.lastExecutionTime = time.Now().UnixNano()
}

func (e *Executor) now() int64 { return time.Now().UnixNano() }
