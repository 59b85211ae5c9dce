// Package admin exposes a small gin router for introspecting and
// operating an eventloop.ExecutorGroup from outside the process: list
// member state and queue depth, trigger a graceful shutdown on one
// member, and (when metrics are attached) hand off to promhttp.
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corerun/eventloop"
)

// executorStatus is the JSON shape returned by GET /executors.
type executorStatus struct {
	Index        int    `json:"index"`
	Name         string `json:"name"`
	State        string `json:"state"`
	PendingTasks int    `json:"pendingTasks"`
}

// NewRouter builds a gin.Engine fronting group. metricsHandler, if
// non-nil, is mounted at GET /metrics — pass promhttp.Handler() to
// expose a GroupMetrics registry, or nil to omit the endpoint entirely.
func NewRouter(group *eventloop.ExecutorGroup, metricsHandler http.Handler) *gin.Engine {
	r := gin.Default()

	r.GET("/executors", func(c *gin.Context) {
		statuses := make([]executorStatus, 0, group.Len())
		i := 0
		group.ForEach(func(e *eventloop.Executor) {
			statuses = append(statuses, executorStatus{
				Index:        i,
				Name:         e.Name(),
				State:        e.State(),
				PendingTasks: e.PendingTasks(),
			})
			i++
		})
		c.JSON(http.StatusOK, statuses)
	})

	r.POST("/executors/:index/shutdown", func(c *gin.Context) {
		idx, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
			return
		}
		target := executorAt(group, idx)
		if target == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such executor"})
			return
		}
		if _, err := target.ShutdownGracefully(time.Second, 30*time.Second); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "shutting down"})
	})

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return r
}

func executorAt(group *eventloop.ExecutorGroup, idx int) *eventloop.Executor {
	if idx < 0 || idx >= group.Len() {
		return nil
	}
	var found *eventloop.Executor
	i := 0
	group.ForEach(func(e *eventloop.Executor) {
		if i == idx {
			found = e
		}
		i++
	})
	return found
}
