package eventloop

import "sync/atomic"

// Chooser maps a monotonically increasing call count to one member of a
// fixed executor array, round-robin.
type Chooser interface {
	Next() *Executor
}

// ChooserFactory builds a Chooser over a non-empty executor array.
// Behavior on an empty array is undefined at this layer — NewGroup
// rejects it before a ChooserFactory is ever consulted.
type ChooserFactory interface {
	NewChooser(executors []*Executor) Chooser
}

// DefaultChooserFactory picks a power-of-two chooser when len(executors)
// is a power of two, and a generic modulo chooser otherwise.
type DefaultChooserFactory struct{}

func (DefaultChooserFactory) NewChooser(executors []*Executor) Chooser {
	if isPowerOfTwo(len(executors)) {
		return &powerOfTwoChooser{executors: executors}
	}
	return &genericChooser{executors: executors}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(-n) == n
}

// powerOfTwoChooser is selected when N & -N == N: the index is a cheap
// bitmask instead of a modulo.
type powerOfTwoChooser struct {
	idx       uint32
	executors []*Executor
}

func (c *powerOfTwoChooser) Next() *Executor {
	i := atomic.AddUint32(&c.idx, 1) - 1
	return c.executors[i&uint32(len(c.executors)-1)]
}

// genericChooser handles any N via modulo. idx is a uint32 counter, so
// it wraps at 2^32 rather than overflowing into negative territory the
// way a signed fixed-width int would — the single-skipped-slot-on-exact-wrap
// behavior is acceptable noise, and is preserved by
// computing the index with the same wraparound arithmetic, just in the
// unsigned domain Go makes natural.
type genericChooser struct {
	idx       uint32
	executors []*Executor
}

func (c *genericChooser) Next() *Executor {
	i := atomic.AddUint32(&c.idx, 1) - 1
	return c.executors[i%uint32(len(c.executors))]
}
