package main

import (
	"fmt"
	"time"

	"github.com/corerun/eventloop"
)

func main() {
	group, err := eventloop.NewGroup(8, func() *eventloop.Executor {
		return eventloop.NewExecutor()
	}, eventloop.DefaultChooserFactory{})
	if err != nil {
		panic(err)
	}

	var futures []eventloop.ScheduledFuture
	for i := 0; i < 20; i++ {
		i := i
		sf, err := group.Next().Schedule(func() {
			fmt.Println("fired", i)
		}, time.Duration(i) * 100 * time.Millisecond)
		if err == nil {
			futures = append(futures, sf)
		}
	}

	// Cancel every other one before it has a chance to fire.
	for i, sf := range futures {
		if i%2 == 0 {
			sf.Cancel()
		}
	}

	<-group.ShutdownGracefully(200*time.Millisecond, 5*time.Second)
}
