package eventloop

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GroupMetrics holds the Prometheus collectors instrumenting one
// ExecutorGroup. It follows the promauto.With(registerer).New... style
// used throughout the retrieval pack's fluxor observability package:
// every collector is created against an explicit Registerer rather than
// prometheus's package-level default, so multiple groups (or tests) can
// run side by side without collector-name collisions.
type GroupMetrics struct {
	pendingTasks     *prometheus.GaugeVec
	tasksExecuted    *prometheus.CounterVec
	tasksRejected    *prometheus.CounterVec
	shutdownDuration *prometheus.HistogramVec
	state            *prometheus.GaugeVec
}

// NewGroupMetrics registers a fresh set of collectors under registerer,
// labelled with groupName so multiple groups can share one registry.
func NewGroupMetrics(registerer prometheus.Registerer, groupName string) *GroupMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)
	return &GroupMetrics{
		pendingTasks: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "eventloop_pending_tasks",
			Help:        "Number of tasks currently queued on an executor.",
			ConstLabels: prometheus.Labels{"group": groupName},
		}, []string{"executor"}),
		tasksExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "eventloop_tasks_executed_total",
			Help:        "Total number of tasks and shutdown hooks an executor has run, including ones that panicked.",
			ConstLabels: prometheus.Labels{"group": groupName},
		}, []string{"executor"}),
		tasksRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "eventloop_tasks_rejected_total",
			Help:        "Total number of tasks rejected by an executor.",
			ConstLabels: prometheus.Labels{"group": groupName},
		}, []string{"executor", "reason"}),
		shutdownDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "eventloop_shutdown_duration_seconds",
			Help:        "Wall time from shutdownGracefully() to worker termination.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"group": groupName},
		}, []string{"executor"}),
		state: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "eventloop_state",
			Help:        "Numeric lifecycle state of an executor (1=NOT_STARTED .. 5=TERMINATED).",
			ConstLabels: prometheus.Labels{"group": groupName},
		}, []string{"executor"}),
	}
}

func (m *GroupMetrics) setState(executorName string, s int32) {
	if m == nil {
		return
	}
	m.state.WithLabelValues(executorName).Set(float64(s))
}

func (m *GroupMetrics) setPending(executorName string, n int) {
	if m == nil {
		return
	}
	m.pendingTasks.WithLabelValues(executorName).Set(float64(n))
}

func (m *GroupMetrics) incExecuted(executorName string) {
	if m == nil {
		return
	}
	m.tasksExecuted.WithLabelValues(executorName).Inc()
}

func (m *GroupMetrics) incRejected(executorName, reason string) {
	if m == nil {
		return
	}
	m.tasksRejected.WithLabelValues(executorName, reason).Inc()
}

func (m *GroupMetrics) observeShutdown(executorName string, d time.Duration) {
	if m == nil {
		return
	}
	m.shutdownDuration.WithLabelValues(executorName).Observe(d.Seconds())
}
