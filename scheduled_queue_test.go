package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledQueueOrdersByDeadlineThenSequence(t *testing.T) {
	q := newScheduledQueue()
	q.Add(func() {}, 300)
	q.Add(func() {}, 100)
	q.Add(func() {}, 100)
	q.Add(func() {}, 200)

	var deadlines []int64
	for {
		st := q.PollDue(300)
		if st == nil {
			break
		}
		deadlines = append(deadlines, st.deadline)
	}
	assert.Equal(t, []int64{100, 100, 200, 300}, deadlines)
}

func TestScheduledQueuePollDueRespectsNow(t *testing.T) {
	q := newScheduledQueue()
	q.Add(func() {}, 1000)

	assert.Nil(t, q.PollDue(500))
	st := q.PollDue(1000)
	require.NotNil(t, st)
	assert.Equal(t, int64(1000), st.deadline)
}

func TestScheduledQueueCancelledEntriesAreSkipped(t *testing.T) {
	q := newScheduledQueue()
	a := q.Add(func() {}, 100)
	q.Add(func() {}, 200)
	a.cancel()

	st := q.PollDue(200)
	require.NotNil(t, st)
	assert.Equal(t, int64(200), st.deadline)
}

func TestScheduledQueueCancelAllEmptiesQueue(t *testing.T) {
	q := newScheduledQueue()
	q.Add(func() {}, 100)
	q.Add(func() {}, 200)
	q.CancelAll()
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Peek())
}

func TestScheduledQueueNextDelay(t *testing.T) {
	q := newScheduledQueue()
	assert.Equal(t, int64(1234), int64(q.NextDelay(0, 1234)))

	q.Add(func() {}, 500)
	assert.Equal(t, int64(500), int64(q.NextDelay(0, 9999)))
	assert.Equal(t, int64(0), int64(q.NextDelay(600, 9999)))
}
