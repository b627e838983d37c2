// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestWorkQueue_FIFO(t *testing.T) {
	q := newWorkQueue()
	ctx := context.Background()
	for _, p := range []string{"a", "b", "c"} {
		q.reserve()
		q.put(p)
	}
	assert.Equal(t, 3, q.depth())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.get(ctx, time.Second)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.Zero(t, q.depth())
}

func TestWorkQueue_GetTimesOut(t *testing.T) {
	q := newWorkQueue()
	start := time.Now()
	_, ok := q.get(context.Background(), 20*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestWorkQueue_GetHonorsContext(t *testing.T) {
	q := newWorkQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := q.get(ctx, time.Minute)
	assert.False(t, ok)
}

func TestWorkQueue_GetWakesOnPut(t *testing.T) {
	q := newWorkQueue()
	q.reserve()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.put("late")
	}()
	got, ok := q.get(context.Background(), time.Second)
	assert.True(t, ok)
	assert.Equal(t, "late", got)
}

func TestWorkQueue_Drained(t *testing.T) {
	q := newWorkQueue()
	assert.True(t, isClosed(q.drained()), "empty queue is drained")

	q.reserve()
	q.reserve()
	ch := q.drained()
	assert.False(t, isClosed(ch))

	q.put("x")
	_, _ = q.get(context.Background(), time.Second)
	q.done()
	assert.False(t, isClosed(ch), "one reservation still open")

	q.done()
	assert.True(t, isClosed(ch))

	q.done()
	assert.True(t, isClosed(q.drained()), "extra done is ignored")
}

func TestWorkQueue_Discard(t *testing.T) {
	q := newWorkQueue()
	q.reserve()
	q.put("a")
	q.reserve()
	q.put("b")

	assert.Equal(t, []string{"a", "b"}, q.discard())
	assert.Zero(t, q.depth())
	assert.True(t, isClosed(q.drained()))
}
