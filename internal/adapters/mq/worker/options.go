package worker

// Option applies a configuration option to an ingest worker.
type Option func(*IngestWorker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *IngestWorker) {
		if name != "" {
			w.name = name
		}
	}
}
