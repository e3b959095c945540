// Package queue provides the unbounded FIFO event-intake queues that decouple
// webhook and OAuth producers from the single worker loop draining each queue.
// Enqueue is safe from arbitrary goroutines; the queue is the only
// synchronization point between producers and the consumer.
package queue

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO with one blocking consumer. Items are dequeued
// in strict enqueue order.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// New constructs an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item. Enqueueing on a closed queue drops the item.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, item)
	q.cond.Signal()
}

// Dequeue blocks until an item is available, the queue is closed, or ctx is
// done. The second return reports whether an item was delivered.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, bool) {
	var zero T

	// Wake the cond wait when the context is cancelled.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 {
		if q.closed || ctx.Err() != nil {
			return zero, false
		}
		q.cond.Wait()
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Len reports the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue. Blocked Dequeue calls return once remaining items
// drain; further Enqueue calls are dropped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
