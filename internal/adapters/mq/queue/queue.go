// Package queue defines the contract for enqueuing and consuming score
// submissions.
//
// Implementations may use channels or more advanced structures; the
// in-memory bounded queue is the default.
package queue

import (
	"context"
	"sync"

	"github.com/ngage-io/tally/internal/domain/model"
	"github.com/ngage-io/tally/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 100000
)

// Submission is the payload type flowing through the queue.
type Submission = model.ScoreSubmission

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a submission to the queue.
	// Returns false if the queue is full and the submission was not enqueued.
	Enqueue(ctx context.Context, s Submission) bool

	// Dequeue returns a channel that will receive submissions as they become
	// available. The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Submission

	// Len returns the current number of queued submissions.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new submissions can be enqueued and the dequeue
	// channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	submissions chan Submission
	capacity    int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.submissions = make(chan Submission, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a submission to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Submission) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.submissions <- s:
		metrics.RecordQueueEnqueue()
		currentSize := len(q.submissions)
		metrics.UpdateQueueSize(currentSize)
		metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive submissions as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Submission {
	out := make(chan Submission)
	go func() {
		defer close(out)
		for s := range q.submissions {
			select {
			case out <- s:
				metrics.RecordQueueDequeue()
				currentSize := len(q.submissions)
				metrics.UpdateQueueSize(currentSize)
				metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued submissions.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.submissions)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.submissions)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
