package eventloop

// Loop is the pluggable worker body: the main run loop, plus the
// handful of lifecycle hooks the core calls into around it.
type Loop interface {
	// Run is the worker's main loop. It must keep calling confirmShutdown
	// (via Executor.ConfirmShutdown) until that returns true before
	// returning; failing to do so is logged as a buggy Loop implementation.
	Run(e *Executor)

	// Cleanup runs exactly once, after the final confirmShutdown() and
	// before the executor is marked TERMINATED.
	Cleanup()

	// AfterRunningAllTasks runs after every runAllTasks/runAllTasksBudget
	// drain pass.
	AfterRunningAllTasks()

	// WakesUpForTask filters which tasks should trigger a wakeup when
	// AddTaskWakesUp is false. The default is to wake for everything.
	WakesUpForTask(task Task) bool
}

// DefaultLoop is the reference Loop: it cooperatively drains the task
// queue via takeTask:
//
//	for {
//	    task := takeTask()
//	    if task != nil { task(); updateLastExecutionTime() }
//	    if confirmShutdown() { break }
//	}
//
// Embed it to override only the hooks you need.
type DefaultLoop struct{}

func (*DefaultLoop) Run(e *Executor) {
	for {
		task, ok := e.takeTask()
		if ok {
			e.safeExecute(task)
			e.updateLastExecutionTime()
		}
		if e.ConfirmShutdown() {
			break
		}
	}
}

func (*DefaultLoop) Cleanup()                      {}
func (*DefaultLoop) AfterRunningAllTasks()         {}
func (*DefaultLoop) WakesUpForTask(task Task) bool { return true }

// BudgetedLoop runs RunAllTasks(budget) against a time-sliced pull of
// work instead of blocking on a single task at a time — the shape a
// cooperative scheduler (coroutine host, actor mailbox pump, ...) built
// on top of this package would actually want. It still idles via
// takeTask between slices so it costs nothing when the queue is empty.
type BudgetedLoop struct {
	// Budget bounds how long a single RunAllTasks pass may run before
	// yielding back to takeTask.
	Budget func() int64 // nanoseconds; nil means 5ms
}

func (l *BudgetedLoop) Run(e *Executor) {
	budget := int64(5_000_000)
	for {
		if l.Budget != nil {
			budget = l.Budget()
		}
		e.runAllTasksBudget(budget)
		if e.ConfirmShutdown() {
			break
		}
		task, ok := e.takeTask()
		if ok {
			e.safeExecute(task)
			e.updateLastExecutionTime()
		}
	}
}

func (*BudgetedLoop) Cleanup()                     {}
func (*BudgetedLoop) AfterRunningAllTasks()         {}
func (*BudgetedLoop) WakesUpForTask(task Task) bool { return true }
