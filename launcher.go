package eventloop

import "github.com/google/uuid"

// Launcher starts a closure on a fresh goroutine of execution. It is the
// minimal spawn abstraction: the only thing
// the core needs in order to spawn its worker on demand.
type Launcher interface {
	Launch(task func())
}

// GoroutinePerTaskLauncher is the default Launcher: every Launch call
// spawns a brand-new goroutine.
type GoroutinePerTaskLauncher struct {
	// NamePrefix, when set, is used to derive a unique per-worker name
	// (NamePrefix-<uuid>) recorded on ThreadProperties for observability;
	// it has no effect on Go scheduling, goroutines have no OS name.
	NamePrefix string
}

func (l GoroutinePerTaskLauncher) Launch(task func()) {
	go task()
}

// nextWorkerName derives a human-readable worker identifier, using
// github.com/google/uuid for a stable, collision-free suffix.
func (l GoroutinePerTaskLauncher) nextWorkerName() string {
	prefix := l.NamePrefix
	if prefix == "" {
		prefix = "eventloop-worker"
	}
	return prefix + "-" + uuid.NewString()
}
