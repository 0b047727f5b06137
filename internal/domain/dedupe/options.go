// Package dedupe defines the interface for idempotency tracking.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of keys to keep in memory.
// maxSize > 0 enables bounded mode with FIFO eviction; maxSize <= 0
// disables eviction entirely.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
