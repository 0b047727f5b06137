package queue

// Option applies a configuration option to the in-memory queue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of buffered submissions.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
