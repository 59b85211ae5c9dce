package eventloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagged(fn Task) taggedTask {
	t, _ := newTagged(fn)
	return t
}

func TestTaskQueueOfferRespectsCapacity(t *testing.T) {
	q := newTaskQueue(2)
	assert.True(t, q.Offer(tagged(func() {})))
	assert.True(t, q.Offer(tagged(func() {})))
	assert.False(t, q.Offer(tagged(func() {})))
	assert.Equal(t, 2, q.Len())
}

func TestTaskQueuePollEmpty(t *testing.T) {
	q := newTaskQueue(4)
	_, ok := q.Poll()
	assert.False(t, ok)
}

func TestTaskQueueTakeBlocksUntilOffer(t *testing.T) {
	q := newTaskQueue(4)
	done := make(chan taggedTask, 1)
	go func() {
		done <- q.Take()
	}()

	select {
	case <-done:
		t.Fatal("Take returned before anything was offered")
	case <-time.After(50 * time.Millisecond):
	}

	want := tagged(func() {})
	q.Offer(want)

	select {
	case got := <-done:
		assert.Equal(t, want.id, got.id)
	case <-time.After(time.Second):
		t.Fatal("Take never returned")
	}
}

func TestTaskQueuePollTimeout(t *testing.T) {
	q := newTaskQueue(4)
	start := time.Now()
	_, ok := q.PollTimeout(50 * time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestTaskQueueRemove(t *testing.T) {
	q := newTaskQueue(4)
	a := tagged(func() {})
	b := tagged(func() {})
	require.True(t, q.Offer(a))
	require.True(t, q.Offer(b))

	assert.True(t, q.Remove(func(tt taggedTask) bool { return tt.id == a.id }))
	assert.False(t, q.Remove(func(tt taggedTask) bool { return tt.id == a.id }))
	assert.Equal(t, 1, q.Len())

	got, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, b.id, got.id)
}

func TestWakeupTaskIsDistinguishable(t *testing.T) {
	w := newWakeupTagged()
	assert.True(t, w.isWakeup())
	assert.False(t, tagged(func() {}).isWakeup())
}
