// Package dedupe defines the interface for idempotency tracking.
//
// Score submissions are tracked under a compound key derived from the
// submission and judge identifiers, so a retried POST from the same judge
// is recognized instead of producing a second record.
package dedupe

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// Deduper records seen submission keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key from the seen set, allowing it to be retried.
	// Use only when a submission was marked seen but failed downstream
	// (e.g. queue backpressure).
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the compound idempotency key for one judge's submission.
// The digest distinguishes edits from retries: a resubmission with changed
// values carries a different digest and is processed as an update.
func Key(submissionID, judgeID, digest string) string {
	return strings.Join([]string{submissionID, judgeID, digest}, ":")
}

// inMemoryDeduper implements Deduper with a map plus a FIFO eviction ring.
// Bounded mode (maxSize > 0) evicts the oldest key once full; unbounded
// mode (maxSize <= 0) never evicts.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000, // default max size
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}

	return d
}

// SeenAndRecord atomically checks if key was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}

	if d.maxSize > 0 {
		if evicted := d.ring[d.next]; evicted != "" {
			if _, exists := d.seen[evicted]; exists {
				delete(d.seen, evicted)
				d.size.Add(-1)
			}
		}
		d.ring[d.next] = key
		d.next = (d.next + 1) % d.maxSize
	}

	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

// Unrecord removes a key from the seen set.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// Size returns the current number of tracked keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
