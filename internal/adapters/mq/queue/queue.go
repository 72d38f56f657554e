// Package queue defines the contract for enqueuing and consuming work items.
//
// The in-memory implementation is a bounded buffered channel. It carries
// engine commands into a session's frame loop and throw summaries out to the
// grading workers.
package queue

import (
	"context"
	"sync"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
	defaultBufferSize    = 1024
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue[T any] interface {
	// Enqueue adds an item to the queue.
	// Returns false if the queue is full and the item was not enqueued.
	Enqueue(ctx context.Context, item T) bool

	// Dequeue returns a channel that will receive items as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan T

	// Drain removes up to max queued items without blocking; max <= 0
	// drains everything queued.
	Drain(ctx context.Context, max int) []T

	// Len returns the current number of queued items.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new items can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue[T any] struct {
	items      chan T
	capacity   int
	bufferSize int
	meter      Meter

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue[T any](opts ...Option[T]) *InMemoryQueue[T] {
	q := &InMemoryQueue[T]{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
		meter:      nopMeter{},
	}

	for _, opt := range opts {
		opt(q)
	}

	if q.bufferSize < q.capacity {
		q.bufferSize = q.capacity
	}
	q.items = make(chan T, q.bufferSize)

	q.meter.Init(q.capacity)

	return q
}

// Capacity returns the maximum number of queued items.
func (q *InMemoryQueue[T]) Capacity() int {
	return q.capacity
}

// Enqueue adds an item to the queue.
func (q *InMemoryQueue[T]) Enqueue(ctx context.Context, item T) bool { //nolint:gocritic // hugeParam: items are passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.meter.Rejected(ReasonClosed)
		return false
	}

	if len(q.items) >= q.capacity {
		q.meter.Rejected(ReasonCapacityExceeded)
		return false
	}

	select {
	case q.items <- item:
		q.meter.Enqueued(len(q.items), q.capacity)
		return true
	case <-ctx.Done():
		q.meter.Rejected(ReasonContextCancelled)
		return false
	default:
		q.meter.Rejected(ReasonQueueFull)
		return false
	}
}

// Dequeue returns a channel that will receive items as they become available.
func (q *InMemoryQueue[T]) Dequeue(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case item, ok := <-q.items:
				if !ok {
					return
				}
				select {
				case out <- item:
					q.meter.Dequeued(len(q.items), q.capacity)
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Drain removes up to max queued items without blocking.
func (q *InMemoryQueue[T]) Drain(ctx context.Context, max int) []T {
	var out []T
	for (max <= 0 || len(out) < max) && ctx.Err() == nil {
		select {
		case item, ok := <-q.items:
			if !ok {
				return out
			}
			out = append(out, item)
			q.meter.Dequeued(len(q.items), q.capacity)
		default:
			return out
		}
	}
	return out
}

// Len returns the current number of queued items.
func (q *InMemoryQueue[T]) Len(ctx context.Context) int {
	return len(q.items)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.items)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue[T]) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
