package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corerun/eventloop"
	"github.com/corerun/eventloop/admin"
)

type backgroundTask struct {
	param int
}

func (m *backgroundTask) call(ctx context.Context) *eventloop.Result {
	fmt.Println("do something in background...")
	time.Sleep(3 * time.Second)
	fmt.Println("result:", m.param*m.param)
	return &eventloop.Result{}
}

var group *eventloop.ExecutorGroup

func init() {
	registry := prometheus.NewRegistry()
	metrics := eventloop.NewGroupMetrics(registry, "background")

	var err error
	group, err = eventloop.NewGroup(5, func() *eventloop.Executor {
		return eventloop.NewExecutor(eventloop.WithMaxPendingTasks(5), eventloop.WithMetrics(metrics, "worker"))
	}, eventloop.DefaultChooserFactory{})
	if err != nil {
		log.Fatal(err)
	}

	adminRouter := admin.NewRouter(group, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() { log.Println(adminRouter.Run(":9090")) }()
}

type taskParam struct {
	Param int `json:"param"`
}

/*
	curl -XPOST http://localhost:8080/api/task -d '{"param":12}'
	curl -XPOST http://localhost:8080/api/task -d '{"param":10}'
*/
func main() {
	r := gin.Default()
	r.POST("/api/task", func(c *gin.Context) {
		p := taskParam{}
		c.BindJSON(&p)
		task := &backgroundTask{param: p.Param}
		_, err := group.Next().Submit(task.call)
		if err != nil {
			log.Println("error", err)
		}
		c.JSON(http.StatusOK, gin.H{
			"code": 0,
			"msg":  "submit success",
		})
	})

	go func() { log.Fatal(r.Run(":8080")) }()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
	<-ch
	<-group.ShutdownGracefully(5*time.Second, 30*time.Second)
}
