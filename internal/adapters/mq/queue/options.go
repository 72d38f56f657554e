package queue

// Option applies a configuration option to the InMemoryQueue.
type Option[T any] func(*InMemoryQueue[T])

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity[T any](capacity int) Option[T] {
	return func(q *InMemoryQueue[T]) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithBufferSize sets the buffer size for the items channel. It is raised to
// the capacity when smaller.
func WithBufferSize[T any](size int) Option[T] {
	return func(q *InMemoryQueue[T]) {
		if size > 0 {
			q.bufferSize = size
		}
	}
}

// WithMeter sets the observer for queue traffic.
func WithMeter[T any](m Meter) Option[T] {
	return func(q *InMemoryQueue[T]) {
		if m != nil {
			q.meter = m
		}
	}
}
