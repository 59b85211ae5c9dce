package eventloop

import "time"

// takeTaskPollInterval bounds how long takeTask ever blocks with no
// scheduled task pending. It exists purely as a backstop: correct
// callers always pair a state transition with a wakeup/sentinel offer,
// but a missed one would otherwise park the worker forever since
// taskQueue.Take has no timeout of its own.
const takeTaskPollInterval = time.Second

// ConfirmShutdown is the work-draining step a Loop must call on every
// iteration once shutdown has begun: it cancels pending scheduled work,
// runs whatever is left in the task queue and the shutdown hooks, and
// reports true once the abrupt SHUTDOWN state was reached, the quiet
// period is zero or has elapsed without new work arriving, or the
// graceful-shutdown timeout has passed.
func (e *Executor) ConfirmShutdown() bool {
	if !e.IsShuttingDown() {
		return false
	}
	if !e.InEventLoop() {
		panic(ErrNotInEventLoop)
	}

	e.scheduled.CancelAll()
	if e.gracefulShutdownStartTime == 0 {
		e.gracefulShutdownStartTime = e.now()
	}

	if e.runAllTasks() || e.runShutdownHooks() {
		if e.IsShutdown() {
			return true
		}
		if e.gracefulShutdownQuietPeriod == 0 {
			return true
		}
		e.wakeup(true)
		return false
	}

	if e.IsShutdown() {
		return true
	}
	if e.now()-e.gracefulShutdownStartTime > int64(e.gracefulShutdownTimeout) {
		return true
	}
	if e.now()-e.lastExecutionTime <= int64(e.gracefulShutdownQuietPeriod) {
		// Work may still land within the quiet period; offer the wakeup
		// sentinel in case the worker would otherwise park in the next
		// takeTask, then give producers a moment before checking again.
		e.taskQueue.Offer(newWakeupTagged())
		time.Sleep(100 * time.Millisecond)
		return false
	}
	return true
}

// runShutdownHooks drains and runs every registered hook, including any
// a hook itself adds while running, until none remain.
func (e *Executor) runShutdownHooks() bool {
	ran := false
	for len(e.shutdownHooks) > 0 {
		hooks := e.shutdownHooks
		e.shutdownHooks = nil
		for _, h := range hooks {
			e.safeExecute(Task(h.fn))
			ran = true
		}
	}
	if ran {
		e.updateLastExecutionTime()
	}
	return ran
}

// safeExecute runs task, converting a panic into a logged warning so one
// bad task can't bring down the worker goroutine.
func (e *Executor) safeExecute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warnf("a task raised a panic: %v", r)
		}
		if e.metrics != nil {
			e.metrics.incExecuted(e.name)
		}
	}()
	task()
}

// pollTask removes and returns the next non-sentinel task, or ok=false
// if the queue holds nothing else to run right now.
func (e *Executor) pollTask() (Task, bool) {
	for {
		tagged, ok := e.taskQueue.Poll()
		if !ok {
			return nil, false
		}
		if tagged.isWakeup() {
			continue
		}
		return tagged.task, true
	}
}

// takeTask blocks until there is a task to run, cooperating with the
// scheduled queue so a due delayed task is promoted instead of leaving
// the worker parked past its deadline. It returns ok=false when it
// dequeues a wakeup sentinel, or when no scheduled task is pending and
// takeTaskPollInterval passes with nothing queued.
func (e *Executor) takeTask() (Task, bool) {
	if !e.InEventLoop() {
		panic(ErrNotInEventLoop)
	}
	for {
		st := e.scheduled.Peek()
		if st == nil {
			tagged, ok := e.taskQueue.PollTimeout(takeTaskPollInterval)
			if !ok {
				return nil, false
			}
			if tagged.isWakeup() {
				return nil, false
			}
			return tagged.task, true
		}

		delay := time.Duration(st.deadline - e.now())
		var tagged taggedTask
		var ok bool
		if delay > 0 {
			tagged, ok = e.taskQueue.PollTimeout(delay)
		} else {
			tagged, ok = e.taskQueue.Poll()
		}
		if !ok {
			e.fetchFromScheduledTaskQueue()
			tagged, ok = e.taskQueue.Poll()
		}
		if ok {
			if tagged.isWakeup() {
				return nil, false
			}
			return tagged.task, true
		}
	}
}

// fetchFromScheduledTaskQueue moves every scheduled task whose deadline
// has passed into the task queue. It returns false (and leaves the
// remainder in the scheduled queue) if the task queue fills up first.
func (e *Executor) fetchFromScheduledTaskQueue() bool {
	if !e.InEventLoop() {
		panic(ErrNotInEventLoop)
	}
	now := e.now()
	for {
		st := e.scheduled.PollDue(now)
		if st == nil {
			return true
		}
		tagged, _ := newTagged(st.task)
		if !e.taskQueue.Offer(tagged) {
			e.scheduled.AddBack(st)
			return false
		}
	}
}

// runAllTasks drains the task queue to empty, repeatedly promoting due
// scheduled work in between, and reports whether anything ran.
func (e *Executor) runAllTasks() bool {
	ranAtLeastOne := false
	for {
		fetchedAll := e.fetchFromScheduledTaskQueue()
		if e.runAllTasksFromQueue() {
			ranAtLeastOne = true
		}
		if fetchedAll {
			break
		}
	}
	if ranAtLeastOne {
		e.updateLastExecutionTime()
	}
	e.loop.AfterRunningAllTasks()
	return ranAtLeastOne
}

func (e *Executor) runAllTasksFromQueue() bool {
	task, ok := e.pollTask()
	if !ok {
		return false
	}
	for {
		e.safeExecute(task)
		task, ok = e.pollTask()
		if !ok {
			return true
		}
	}
}

// runAllTasksBudget runs tasks until the queue is empty or budgetNanos
// has elapsed, whichever comes first. Elapsed time is sampled every 64
// tasks rather than after each one, trading a little overrun for far
// fewer clock reads under heavy load.
func (e *Executor) runAllTasksBudget(budgetNanos int64) bool {
	e.fetchFromScheduledTaskQueue()
	task, ok := e.pollTask()
	if !ok {
		e.loop.AfterRunningAllTasks()
		return false
	}

	var deadline int64
	if budgetNanos > 0 {
		deadline = e.now() + budgetNanos
	}

	var runTasks int64
	var lastExec int64
	for {
		e.safeExecute(task)
		runTasks++
		if runTasks&0x3F == 0 {
			lastExec = e.now()
			if deadline > 0 && lastExec >= deadline {
				break
			}
		}
		task, ok = e.pollTask()
		if !ok {
			lastExec = e.now()
			break
		}
	}

	e.loop.AfterRunningAllTasks()
	e.lastExecutionTime = lastExec
	return true
}
