package eventloop

import (
	"sync"
	"time"
)

// ExecutorGroup is a fixed-size pool of Executors fronted by a Chooser,
// the Go analogue of a round-robin worker-group front end: submitters
// talk to the group, the chooser decides which member actually runs the
// work.
type ExecutorGroup struct {
	executors []*Executor
	chooser   Chooser
}

// NewGroup builds size Executors via factory and wraps them behind a
// Chooser built by chooserFactory. Chooser behavior on an empty group is
// undefined, so size<=0 is rejected outright rather than silently
// producing a group nothing can ever run work on.
func NewGroup(size int, factory func() *Executor, chooserFactory ChooserFactory) (*ExecutorGroup, error) {
	if size <= 0 {
		return nil, ErrEmptyGroup
	}
	executors := make([]*Executor, size)
	for i := range executors {
		executors[i] = factory()
	}
	if chooserFactory == nil {
		chooserFactory = DefaultChooserFactory{}
	}
	return &ExecutorGroup{
		executors: executors,
		chooser:   chooserFactory.NewChooser(executors),
	}, nil
}

// Next returns the next Executor per the group's chooser policy.
func (g *ExecutorGroup) Next() *Executor {
	return g.chooser.Next()
}

// Len returns the number of executors in the group.
func (g *ExecutorGroup) Len() int { return len(g.executors) }

// ForEach calls fn once per member executor, in index order.
func (g *ExecutorGroup) ForEach(fn func(*Executor)) {
	for _, e := range g.executors {
		fn(e)
	}
}

// ShutdownGracefully fans ShutdownGracefully out to every member and
// returns a channel that closes once every member has terminated.
func (g *ExecutorGroup) ShutdownGracefully(quietPeriod, timeout time.Duration) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(len(g.executors))
	for _, e := range g.executors {
		e := e
		go func() {
			defer wg.Done()
			ch, err := e.ShutdownGracefully(quietPeriod, timeout)
			if err != nil {
				return
			}
			<-ch
		}()
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// AwaitTermination blocks up to timeout for every member to reach
// TERMINATED, returning whether all of them did.
func (g *ExecutorGroup) AwaitTermination(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for _, e := range g.executors {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		ok, err := e.AwaitTermination(remaining)
		if err != nil || !ok {
			return false
		}
	}
	return true
}
