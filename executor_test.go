package eventloop

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: lazy start.
func TestLazyStart(t *testing.T) {
	e := NewExecutor(WithMaxPendingTasks(16), WithAddTaskWakesUp(false))
	assert.Equal(t, int64(0), e.workerGoroutineID.Load(), "no worker should exist before any submission")

	var slot atomic.Value
	done := make(chan struct{})
	err := e.Execute(func() {
		slot.Store("ok")
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}

	assert.NotEqual(t, int64(0), e.workerGoroutineID.Load(), "exactly one worker should exist after submission")
	assert.Equal(t, "ok", slot.Load())
}

// Scenario 4: rejection on full.
func TestRejectionOnFull(t *testing.T) {
	handler := NewCountingRejectionHandler(nil)
	e2 := NewExecutor(WithMaxPendingTasks(16), WithRejectedHandler(handler))

	var mu sync.Mutex
	var order []int
	latch := make(chan struct{})

	// Occupy the worker first, so the 16 tasks below stay queued and fill
	// the queue instead of one of them being dequeued right away.
	started := make(chan struct{})
	require.NoError(t, e2.Execute(func() {
		close(started)
		<-latch
	}))
	<-started

	for i := 0; i < 16; i++ {
		i := i
		err := e2.Execute(func() {
			<-latch
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
		require.NoError(t, err)
	}

	err := e2.Execute(func() {})
	assert.ErrorIs(t, err, ErrRejectedExecution)
	assert.Equal(t, 1, handler.Count())

	close(latch)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 16
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

// Scenario 5: graceful quiet period.
func TestGracefulQuietPeriod(t *testing.T) {
	e := NewExecutor()
	require.NoError(t, e.Execute(func() {}))
	require.Eventually(t, func() bool { return e.PendingTasks() == 0 }, time.Second, time.Millisecond)

	start := time.Now()
	ch, err := e.ShutdownGracefully(200*time.Millisecond, 2*time.Second)
	require.NoError(t, err)

	var lateRan atomic.Bool
	var lateAt time.Time
	var lateMu sync.Mutex
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = e.Execute(func() {
			lateMu.Lock()
			lateAt = time.Now()
			lateMu.Unlock()
			lateRan.Store(true)
		})
	}()

	<-ch
	elapsed := time.Since(start)

	assert.True(t, lateRan.Load(), "the late task should have run before termination")
	lateMu.Lock()
	sinceLate := time.Since(lateAt)
	lateMu.Unlock()
	assert.GreaterOrEqual(t, sinceLate, 200*time.Millisecond-20*time.Millisecond)
	assert.LessOrEqual(t, elapsed, 2*time.Second+200*time.Millisecond)
}

// Scenario 6: interrupt before start.
func TestInterruptBeforeStart(t *testing.T) {
	e := NewExecutor()
	e.InterruptThread()

	observed := make(chan bool, 1)
	require.NoError(t, e.Execute(func() {
		observed <- e.Interrupted()
	}))

	select {
	case v := <-observed:
		assert.True(t, v)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestStateNeverDecreases(t *testing.T) {
	e := NewExecutor()
	var lastSeen int32
	var mu sync.Mutex
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				mu.Lock()
				cur := e.loadState()
				assert.GreaterOrEqual(t, cur, lastSeen)
				lastSeen = cur
				mu.Unlock()
			}
		}
	}()

	require.NoError(t, e.Execute(func() {}))
	ch, err := e.ShutdownGracefully(0, time.Second)
	require.NoError(t, err)
	<-ch
	close(stop)
}

func TestWakeupSentinelNeverVisible(t *testing.T) {
	e := NewExecutor(WithAddTaskWakesUp(true))
	var ranCount atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Execute(func() {
			ranCount.Add(1)
		}))
	}
	require.Eventually(t, func() bool { return ranCount.Load() == 5 }, time.Second, time.Millisecond)
	ch, err := e.ShutdownGracefully(0, time.Second)
	require.NoError(t, err)
	<-ch
	assert.Equal(t, int32(5), ranCount.Load())
}

func TestTerminationChannelClosesExactlyOnce(t *testing.T) {
	e := NewExecutor()
	require.NoError(t, e.Execute(func() {}))

	var wg sync.WaitGroup
	results := make([]bool, 8)
	wg.Add(8)
	for i := 0; i < 8; i++ {
		i := i
		go func() {
			defer wg.Done()
			ok, err := e.AwaitTermination(2 * time.Second)
			results[i] = ok && err == nil
		}()
	}

	_, err := e.ShutdownGracefully(0, time.Second)
	require.NoError(t, err)
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok)
	}
	assert.True(t, e.IsTerminated())
}

func TestAwaitTerminationFromWorkerIsRejected(t *testing.T) {
	e := NewExecutor()
	errCh := make(chan error, 1)
	require.NoError(t, e.Execute(func() {
		_, err := e.AwaitTermination(time.Second)
		errCh <- err
	}))
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSelfDeadlock)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestScheduleRunsAfterDelayAndCanBeCancelled(t *testing.T) {
	e := NewExecutor()
	ran := make(chan struct{}, 1)
	sf, err := e.Schedule(func() { ran <- struct{}{} }, 30*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, sf)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("scheduled task never ran")
	}

	ran2 := make(chan struct{}, 1)
	sf2, err := e.Schedule(func() { ran2 <- struct{}{} }, time.Second)
	require.NoError(t, err)
	assert.True(t, sf2.Cancel())

	select {
	case <-ran2:
		t.Fatal("cancelled scheduled task should not have run")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestShutdownHookRunsOnce(t *testing.T) {
	e := NewExecutor()
	var hookRan atomic.Bool
	e.AddShutdownHook(func() { hookRan.Store(true) })
	require.NoError(t, e.Execute(func() {}))
	ch, err := e.ShutdownGracefully(0, time.Second)
	require.NoError(t, err)
	<-ch
	assert.True(t, hookRan.Load())
}

func TestRemoveShutdownHook(t *testing.T) {
	e := NewExecutor()
	var hookRan atomic.Bool
	handle := e.AddShutdownHook(func() { hookRan.Store(true) })
	require.NoError(t, e.Execute(func() {}))
	e.RemoveShutdownHook(handle)
	ch, err := e.ShutdownGracefully(0, time.Second)
	require.NoError(t, err)
	<-ch
	assert.False(t, hookRan.Load())
}

func TestWithMaxPendingTasksRejectsNegative(t *testing.T) {
	assert.PanicsWithValue(t, ErrInvalidTaskQueueCap, func() {
		NewExecutor(WithMaxPendingTasks(-1))
	})
}

func TestScheduleAfterShutdownIsRejected(t *testing.T) {
	e := NewExecutor()
	require.NoError(t, e.Execute(func() {}))
	ch, err := e.ShutdownGracefully(0, time.Second)
	require.NoError(t, err)
	<-ch

	_, err = e.Schedule(func() {}, time.Hour)
	assert.ErrorIs(t, err, ErrRejectedExecution)
}

func TestSubmitAllCollectsResultsInOrder(t *testing.T) {
	e := NewExecutor()
	results, err := e.SubmitAll(
		func(ctx context.Context) *Result { return &Result{Value: 1} },
		func(ctx context.Context) *Result { return &Result{Value: 2} },
		func(ctx context.Context) *Result { return &Result{Value: 3} },
	)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i+1, r.Value)
	}
}

func TestSubmitAllFromWorkerIsRejected(t *testing.T) {
	e := NewExecutor()
	errCh := make(chan error, 1)
	require.NoError(t, e.Execute(func() {
		_, err := e.SubmitAll(func(ctx context.Context) *Result { return &Result{} })
		errCh <- err
	}))
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSelfDeadlock)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestSubmitAnyReturnsFirstAndCancelsRest(t *testing.T) {
	e := NewExecutor()
	slow := make(chan struct{})
	// Tasks run one at a time in submission order, so the fast one goes
	// first; the slow one is still blocked (or cancelled) when it returns.
	res, err := e.SubmitAny(
		func(ctx context.Context) *Result { return &Result{Value: "fast"} },
		func(ctx context.Context) *Result {
			<-slow
			return &Result{Value: "slow"}
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "fast", res.Value)
	close(slow)
}

func TestSubmitAnyFromWorkerIsRejected(t *testing.T) {
	e := NewExecutor()
	errCh := make(chan error, 1)
	require.NoError(t, e.Execute(func() {
		_, err := e.SubmitAny(func(ctx context.Context) *Result { return &Result{} })
		errCh <- err
	}))
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSelfDeadlock)
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}
