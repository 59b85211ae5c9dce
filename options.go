package eventloop

import (
	"os"
	"strconv"
)

// minPendingTasks is the configured floor: maxPendingTasks is
// at least 16 regardless of the requested value.
const minPendingTasks = 16

// maxPendingTasksEnvVar lets an operator override the default task-queue
// capacity without a code change, when WithMaxPendingTasks is not given.
const maxPendingTasksEnvVar = "EVENTLOOP_MAX_PENDING_TASKS"

func defaultMaxPendingTasks() int {
	if v := os.Getenv(maxPendingTasksEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return int(^uint32(0) >> 1) // max positive int32
}

type executorConfig struct {
	loop             Loop
	launcher         Launcher
	addTaskWakesUp   bool
	maxPendingTasks  int
	rejectedHandler  RejectedExecutionHandler
	metrics          *GroupMetrics
	metricsName      string
	logger           Logger
	name             string
}

// Option configures an Executor at construction time using the
// functional-options pattern.
type Option func(*executorConfig)

// WithLoop supplies the worker's main loop. Defaults to DefaultLoop,
// which cooperatively drains tasks and scheduled work until shutdown is
// requested.
func WithLoop(loop Loop) Option {
	return func(c *executorConfig) { c.loop = loop }
}

// WithLauncher overrides how the worker goroutine gets started.
func WithLauncher(l Launcher) Option {
	return func(c *executorConfig) { c.launcher = l }
}

// WithAddTaskWakesUp reports whether enqueuing a task is by itself enough
// to wake the worker. When true (the default), Execute posts no wakeup
// sentinel; when false, Execute posts one after enqueuing any task the
// Loop's WakesUpForTask accepts (e.g. because the Loop blocks on an
// external event source rather than the task queue).
func WithAddTaskWakesUp(v bool) Option {
	return func(c *executorConfig) { c.addTaskWakesUp = v }
}

// WithMaxPendingTasks bounds the task queue; values below 16 are
// clamped up to 16. A negative value is rejected outright (see
// newExecutorConfig), not clamped.
func WithMaxPendingTasks(n int) Option {
	return func(c *executorConfig) { c.maxPendingTasks = n }
}

// WithRejectedHandler overrides the default AbortPolicy.
func WithRejectedHandler(h RejectedExecutionHandler) Option {
	return func(c *executorConfig) { c.rejectedHandler = h }
}

// WithMetrics attaches a GroupMetrics instance and the name this
// executor will be labelled with in every collector.
func WithMetrics(m *GroupMetrics, name string) Option {
	return func(c *executorConfig) {
		c.metrics = m
		c.metricsName = name
	}
}

// WithLogger overrides the default simplelog-backed Logger.
func WithLogger(l Logger) Option {
	return func(c *executorConfig) { c.logger = l }
}

// WithName sets a human-readable identifier used in logs and metrics
// when no WithMetrics name is given.
func WithName(name string) Option {
	return func(c *executorConfig) { c.name = name }
}

func newExecutorConfig(opts ...Option) *executorConfig {
	c := &executorConfig{
		addTaskWakesUp:  true,
		maxPendingTasks: defaultMaxPendingTasks(),
		launcher:        GoroutinePerTaskLauncher{},
		rejectedHandler: AbortPolicy{},
		logger:          defaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxPendingTasks < 0 {
		panic(ErrInvalidTaskQueueCap)
	}
	if c.maxPendingTasks < minPendingTasks {
		c.maxPendingTasks = minPendingTasks
	}
	if c.loop == nil {
		c.loop = &DefaultLoop{}
	}
	if c.metricsName != "" {
		c.name = c.metricsName
	}
	return c
}
