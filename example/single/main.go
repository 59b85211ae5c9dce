package main

import (
	"context"
	"fmt"
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
	exec := eventloop.NewExecutor(eventloop.WithMaxPendingTasks(10), eventloop.WithName("single"))

	futures := make([]eventloop.Future, 0, 50)
	for i := 0; i < 50; i++ {
		task := &squareTask{param: i}
		f, err := exec.Submit(task.call)
		if err == nil {
			fmt.Println("add task", i)
			futures = append(futures, f)
		}
	}

	exec.Shutdown()
	for _, f := range futures {
		result := f.Get()
		fmt.Println(result.Err, result.Value)
	}
	exec.AwaitTermination(10 * time.Second)
}
