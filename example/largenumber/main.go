package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/corerun/eventloop"
)

/*
	When there are many tasks to be executed, a large number of task parameters or
	task execution results will be accumulated in the memory, resulting in huge memory overhead.
	If the task parameters are read from a database such as MySQL, be careful
	about the timeout problem of the connection with MySQL.
*/

const (
	dataFilePath = "/tmp/data.csv"
)

type squareTask struct {
	param int
}

func (m *squareTask) call(ctx context.Context) *eventloop.Result {
	return &eventloop.Result{Value: m.param * m.param}
}

func main() {
	// Generate data files
	genDataCSV()

	group, err := eventloop.NewGroup(50, func() *eventloop.Executor {
		return eventloop.NewExecutor()
	}, eventloop.DefaultChooserFactory{})
	if err != nil {
		log.Fatal(err)
	}
	futureCh := make(chan eventloop.Future, 10)

	// Child goroutine acts as producer of tasks
	go func() {
		file, err := os.Open(dataFilePath)
		if err != nil {
			log.Fatal(err)
		}
		defer file.Close()
		csvReader := csv.NewReader(file)

		for {
			rec, err := csvReader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				log.Fatal(err)
			}

			param, _ := strconv.Atoi(rec[0])
			task := &squareTask{param: param}
			f, err := group.Next().Submit(task.call)
			if err != nil {
				log.Fatal(err)
			} else {
				futureCh <- f
			}
		}
		close(futureCh)
	}()

	// Main goroutine acts as consumer
	for f := range futureCh {
		result := f.Get()
		fmt.Println(result.Err, result.Value)
	}
	<-group.ShutdownGracefully(0, 0)
}

func genDataCSV() {
	file, err := os.Create(dataFilePath)
	if err != nil {
		log.Fatalln("failed to open file", err)
	}
	defer file.Close()
	w := csv.NewWriter(file)
	defer w.Flush()
	for i := 0; i < 100001; i++ {
		row := []string{strconv.Itoa(i)}
		if err := w.Write(row); err != nil {
			log.Fatalln("error writing record to file", err)
		}
	}
}
