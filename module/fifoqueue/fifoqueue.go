package fifoqueue

import (
	"fmt"
	"sync"

	"github.com/ef-ds/deque"

	"github.com/orbitnet/orbit/model/orbit"
)

// FifoQueue is the bounded ingest queue between the transport layer and the
// driver loop. Artifacts exceeding the capacity are silently dropped; the
// sender re-broadcasts consensus artifacts anyway, so a drop only delays
// convergence.
//
// Safe for concurrent use.
type FifoQueue struct {
	mu          sync.Mutex
	queue       deque.Deque
	maxCapacity int
	observer    LengthObserver
}

// LengthObserver is called with the new queue length on every change. Must
// be non-blocking.
type LengthObserver func(int)

// NewFifoQueue creates a queue with the given capacity.
func NewFifoQueue(maxCapacity int, observer LengthObserver) (*FifoQueue, error) {
	if maxCapacity < 1 {
		return nil, fmt.Errorf("capacity must be positive, got %d", maxCapacity)
	}
	if observer == nil {
		observer = func(int) {}
	}
	return &FifoQueue{
		maxCapacity: maxCapacity,
		observer:    observer,
	}, nil
}

// Push appends the artifact to the tail of the queue. Returns false when the
// queue is at capacity and the artifact was dropped.
func (q *FifoQueue) Push(artifact orbit.Artifact) bool {
	q.mu.Lock()
	length := q.queue.Len()
	if length >= q.maxCapacity {
		q.mu.Unlock()
		return false
	}
	q.queue.PushBack(artifact)
	q.mu.Unlock()
	q.observer(length + 1)
	return true
}

// Pop removes and returns the head of the queue.
func (q *FifoQueue) Pop() (orbit.Artifact, bool) {
	q.mu.Lock()
	element, ok := q.queue.PopFront()
	length := q.queue.Len()
	q.mu.Unlock()
	if !ok {
		return nil, false
	}
	q.observer(length)
	return element.(orbit.Artifact), true
}

// Len returns the current queue length.
func (q *FifoQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len()
}
