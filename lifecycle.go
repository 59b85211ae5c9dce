package eventloop

import (
	"fmt"
	"time"
)

// startThread implements the submission-path transition:
// NOT_STARTED -CAS-> STARTED, then spawn the worker; on a launcher
// panic, revert the CAS and re-panic (the Go stand-in for "rethrow").
func (e *Executor) startThread() {
	if e.loadState() != stateNotStarted {
		return
	}
	e.startMu.Lock()
	defer e.startMu.Unlock()
	if !e.casState(stateNotStarted, stateStarted) {
		return
	}
	e.observeState(stateStarted)
	defer func() {
		if r := recover(); r != nil {
			e.storeState(stateNotStarted)
			panic(r)
		}
	}()
	e.doStartThread()
}

// startThreadForShutdown is the variant shutdown()/ShutdownGracefully use
// when they observe NOT_STARTED: the worker must run at least once so it
// can drain the queue and call ConfirmShutdown, but a spawn failure here
// jumps straight to TERMINATED rather than back to NOT_STARTED.
func (e *Executor) startThreadForShutdown() {
	defer func() {
		if r := recover(); r != nil {
			e.storeState(stateTerminated)
			e.completeTermination(toError(r))
			if _, ok := r.(error); !ok {
				panic(r)
			}
		}
	}()
	e.doStartThread()
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("eventloop: worker bootstrap panic: %v", r)
}

// doStartThread hands the worker body to the Launcher.
func (e *Executor) doStartThread() {
	e.launcher.Launch(func() {
		e.workerStartedAt = time.Now()
		if gl, ok := e.launcher.(GoroutinePerTaskLauncher); ok {
			e.workerName = gl.nextWorkerName()
		} else {
			e.workerName = e.name
		}
		e.workerGoroutineID.Store(currentGoroutineID())
		if e.interruptPending.Load() {
			e.interrupted.Store(true)
		}
		close(e.workerStarted)
		e.updateLastExecutionTime()

		var fatal any
		success := false
		func() {
			defer func() {
				if r := recover(); r != nil {
					if err, ok := r.(error); ok {
						e.logger.Warnf("unexpected error from event executor: %v", err)
					} else {
						fatal = r
					}
					return
				}
				success = true
			}()
			e.loop.Run(e)
		}()

		e.finishWorker(success)
		if fatal != nil {
			panic(fatal)
		}
	})
}

// finishWorker is the worker-exit path:
// raise state to at least SHUTTING_DOWN, confirm shutdown until it
// agrees, clean up once, and terminate.
func (e *Executor) finishWorker(ranToCompletion bool) {
	for {
		old := e.loadState()
		if old >= stateShuttingDown {
			break
		}
		if e.casState(old, stateShuttingDown) {
			e.observeState(stateShuttingDown)
			break
		}
	}

	if ranToCompletion && e.gracefulShutdownStartTime == 0 {
		e.logger.Errorf("buggy Loop implementation; ConfirmShutdown() must be called before Run() returns")
	}

	for !e.ConfirmShutdown() {
	}

	e.loop.Cleanup()
	e.storeState(stateTerminated)
	if !e.taskQueue.IsEmpty() {
		e.logger.Warnf("event executor %q terminated with non-empty task queue (%d)", e.name, e.taskQueue.Len())
	}
	e.completeTermination(nil)
}

func (e *Executor) completeTermination(err error) {
	e.terminateOnce.Do(func() {
		e.terminationErr = err
		if e.metrics != nil && e.gracefulShutdownStartTime != 0 {
			e.metrics.observeShutdown(e.name, time.Duration(e.now()-e.gracefulShutdownStartTime))
		}
		close(e.terminationCh)
	})
}

// Shutdown performs the abrupt, deprecated shutdown path: state jumps
// straight to SHUTDOWN with no quiet period.
func (e *Executor) Shutdown() {
	if e.IsShutdown() {
		return
	}

	inEventLoop := e.InEventLoop()
	var oldState int32
	wakeup := true
	for {
		oldState = e.loadState()
		var newState int32
		wakeup = true
		if inEventLoop {
			newState = stateShutdown
		} else {
			switch oldState {
			case stateNotStarted, stateStarted, stateShuttingDown:
				newState = stateShutdown
			default:
				newState = oldState
				wakeup = false
			}
		}
		if e.casState(oldState, newState) {
			e.observeState(newState)
			break
		}
	}

	if oldState == stateNotStarted {
		e.startThreadForShutdown()
	}
	if wakeup {
		e.wakeup(inEventLoop)
	}
}

// ShutdownGracefully initiates the two-phase shutdown protocol: the
// worker keeps draining work until quietPeriod passes
// with nothing new arriving, or timeout elapses, whichever comes first.
func (e *Executor) ShutdownGracefully(quietPeriod, timeout time.Duration) (<-chan struct{}, error) {
	if quietPeriod < 0 {
		return nil, ErrNegativeQuietPeriod
	}
	if timeout < quietPeriod {
		return nil, ErrTimeoutBeforeQuietPeriod
	}
	if e.IsShuttingDown() {
		return e.terminationCh, nil
	}

	inEventLoop := e.InEventLoop()
	var oldState int32
	wakeup := true
	for {
		if e.IsShuttingDown() {
			return e.terminationCh, nil
		}
		oldState = e.loadState()
		var newState int32
		wakeup = true
		if inEventLoop {
			newState = stateShuttingDown
		} else {
			switch oldState {
			case stateNotStarted, stateStarted:
				newState = stateShuttingDown
			default:
				newState = oldState
				wakeup = false
			}
		}
		if e.casState(oldState, newState) {
			e.observeState(newState)
			break
		}
	}

	e.gracefulShutdownQuietPeriod = quietPeriod
	e.gracefulShutdownTimeout = timeout

	if oldState == stateNotStarted {
		e.startThreadForShutdown()
	}
	if wakeup {
		e.wakeup(inEventLoop)
	}

	return e.terminationCh, nil
}
