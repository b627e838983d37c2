// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"sync"
	"time"
)

// workQueue is an unbounded FIFO of file paths shared by all workers.
// Every reserved slot must be acknowledged with done, whether the item was
// processed, failed, or abandoned before it reached the queue, so that
// drained reports when all accepted work has finished.
type workQueue struct {
	mu      sync.Mutex
	items   []string
	pending int
	signal  chan struct{}
	idle    chan struct{}
}

func newWorkQueue() *workQueue {
	idle := make(chan struct{})
	close(idle)
	return &workQueue{signal: make(chan struct{}, 1), idle: idle}
}

// reserve counts one unit of work that will later be put or released.
func (q *workQueue) reserve() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == 0 {
		q.idle = make(chan struct{})
	}
	q.pending++
}

// put appends a reserved item and wakes one waiting worker.
func (q *workQueue) put(path string) {
	q.mu.Lock()
	q.items = append(q.items, path)
	q.mu.Unlock()
	q.wake()
}

func (q *workQueue) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// get pops the oldest item, waiting at most timeout. It returns false on
// timeout or when ctx is done.
func (q *workQueue) get(ctx context.Context, timeout time.Duration) (string, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			path := q.items[0]
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			if more {
				q.wake()
			}
			return path, true
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-timer.C:
			return "", false
		case <-ctx.Done():
			return "", false
		}
	}
}

// done acknowledges one reserved unit of work.
func (q *workQueue) done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == 0 {
		return
	}
	q.pending--
	if q.pending == 0 {
		close(q.idle)
	}
}

// drained returns a channel closed once no reserved work remains.
func (q *workQueue) drained() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.idle
}

// depth returns the number of items waiting for a worker.
func (q *workQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// discard drops queued items that no worker will pick up and acknowledges
// them. It returns the dropped paths.
func (q *workQueue) discard() []string {
	q.mu.Lock()
	dropped := q.items
	q.items = nil
	q.mu.Unlock()
	for range dropped {
		q.done()
	}
	return dropped
}
