package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corerun/eventloop"
)

type squareTask struct {
	param int
}

func (m *squareTask) call(ctx context.Context) *eventloop.Result {
	time.Sleep(1 * time.Second)
	return &eventloop.Result{Value: m.param * m.param}
}

func main() {
	group, err := eventloop.NewGroup(10, func() *eventloop.Executor {
		return eventloop.NewExecutor(eventloop.WithMaxPendingTasks(10))
	}, eventloop.DefaultChooserFactory{})
	if err != nil {
		panic(err)
	}

	var mu sync.Mutex
	futures := make([]eventloop.Future, 0, 100)
	go func() {
		for i := 0; i < 100; i++ {
			task := &squareTask{param: i}
			f, err := group.Next().Submit(task.call)
			if err == nil {
				mu.Lock()
				futures = append(futures, f)
				mu.Unlock()
			}
		}
	}()

	time.Sleep(10 * time.Second)
	done := group.ShutdownGracefully(time.Second, 10*time.Second)

	mu.Lock()
	snapshot := futures
	mu.Unlock()
	for _, f := range snapshot {
		result := f.Get()
		fmt.Println(result.Err, result.Value)
	}
	<-done
}
