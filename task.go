package eventloop

// Task is the unit of work an Executor runs. It carries no return value;
// callers that need a result use Submit, which wraps a Callable in a
// Future.
type Task func()

// ShutdownHook runs once, on the worker, while confirmShutdown drains the
// task queue. Hooks may add or remove further hooks while running.
type ShutdownHook func()

// wakeupTask is the sentinel offered to the task queue purely to unblock
// a worker parked in a blocking poll of the queue. Dequeue helpers recognize it by pointer
// identity (via wakeupMarker) and discard it before it is ever visible
// to a Loop implementation.
type wakeupMarker struct{}

var sentinelMarker = &wakeupMarker{}

// wakeupTask never runs; isWakeup reports whether a polled task is the
// sentinel rather than user work.
func wakeupTask() {}

// taskID gives each submission a unique, comparable identity so
// removeTask can find it again even though Go func values are not
// comparable. A fresh *taskID is allocated per call to newTagged.
type taskID struct{}

// taggedTask pairs a Task with an optional sentinel marker so the queue
// can special-case the wakeup without relying on function-value identity.
type taggedTask struct {
	task Task
	id   *taskID
	mark *wakeupMarker
}

func (t taggedTask) isWakeup() bool {
	return t.mark == sentinelMarker
}

func newWakeupTagged() taggedTask {
	return taggedTask{task: wakeupTask, mark: sentinelMarker}
}

func newTagged(task Task) (taggedTask, *taskID) {
	id := &taskID{}
	return taggedTask{task: task, id: id}, id
}
