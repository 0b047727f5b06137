// Package worker defines worker contracts for asynchronous score ingest.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/ngage-io/tally/internal/domain/model"
	"github.com/ngage-io/tally/internal/domain/rubric"
	"github.com/ngage-io/tally/pkg/logger"
	"github.com/ngage-io/tally/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Submission abstracts what workers read off the queue.
type Submission = model.ScoreSubmission

// Upserter writes validated score records.
type Upserter interface {
	Upsert(ctx context.Context, score model.Score) (model.Score, bool, error)
}

// RubricSource resolves and freezes rubric definitions.
type RubricSource interface {
	Get(ctx context.Context, id string) (model.ScoringRubric, error)
	Reference(ctx context.Context, id string) error
}

// Unrecorder releases idempotency keys for failed submissions.
type Unrecorder interface {
	Unrecord(ctx context.Context, key string)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes score submissions and writes records using the provided
// interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining submissions before stopping.
	Shutdown(ctx context.Context) error
}

// IngestWorker implements Worker for processing score submissions.
type IngestWorker struct {
	queue   Queue
	store   Upserter
	rubrics RubricSource
	dedupe  Unrecorder
	name    string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewIngestWorker creates a new worker with configuration options.
func NewIngestWorker(queue Queue, store Upserter, rubrics RubricSource, dedupe Unrecorder, opts ...Option) *IngestWorker {
	w := &IngestWorker{
		queue:    queue,
		store:    store,
		rubrics:  rubrics,
		dedupe:   dedupe,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *IngestWorker) Run(ctx context.Context) {
	defer close(w.done)

	submissions := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-submissions:
			if !ok {
				return
			}

			if err := w.process(ctx, s); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *IngestWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process handles a single submission: validate against the rubric when one
// is named, then upsert the normalized record.
func (w *IngestWorker) process(ctx context.Context, s Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	score := model.Score{
		SubmissionID: s.SubmissionID,
		JudgeID:      s.JudgeID,
		EventID:      s.EventID,
		RubricID:     s.RubricID,
		Comments:     s.Comments,
		TotalScore:   s.TotalScore,
	}

	if s.RubricID != "" {
		def, err := w.rubrics.Get(ctx, s.RubricID)
		if err != nil {
			w.fail(ctx, s, "rubric_not_found")
			return fmt.Errorf("rubric %s lookup failed: %w", s.RubricID, err)
		}

		values, err := rubric.Validate(s.Values, def)
		if err != nil {
			w.fail(ctx, s, failureReason(err))
			w.logger.Warn(ctx, "submission rejected by rubric",
				logger.String("submissionID", s.SubmissionID),
				logger.String("judgeID", s.JudgeID),
				logger.Error(err),
			)
			return fmt.Errorf("rubric validation failed for submission %s: %w", s.SubmissionID, err)
		}
		score.Values = values
	} else {
		score.Values = looseValues(s.Values)
	}

	if _, _, err := w.store.Upsert(ctx, score); err != nil {
		w.fail(ctx, s, "store_error")
		return fmt.Errorf("score upsert failed: %w", err)
	}

	if s.RubricID != "" {
		// Freeze the rubric now that a record depends on it.
		if err := w.rubrics.Reference(ctx, s.RubricID); err != nil {
			w.logger.Warn(ctx, "rubric reference failed",
				logger.String("rubricID", s.RubricID),
				logger.Error(err),
			)
		}
	}

	metrics.RecordIngestLatency(float64(time.Since(s.ReceivedAt).Milliseconds()))
	return nil
}

// fail records metrics for a rejected submission and releases its
// idempotency key so the client can retry with a fixed payload.
func (w *IngestWorker) fail(ctx context.Context, s Submission, reason string) {
	metrics.RecordValidationFailure(reason)
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", reason)
	if s.DedupeKey != "" {
		w.dedupe.Unrecord(ctx, s.DedupeKey)
	}
}

// failureReason maps validation errors to a metrics label.
func failureReason(err error) string {
	var missing *rubric.MissingRequiredFieldError
	var outOfRange *rubric.OutOfRangeError
	var unknown *rubric.UnknownCriterionError
	var invalidType *rubric.InvalidTypeError

	switch {
	case errors.As(err, &missing):
		return "missing_required"
	case errors.As(err, &outOfRange):
		return "out_of_range"
	case errors.As(err, &unknown):
		return "unknown_criterion"
	case errors.As(err, &invalidType):
		return "invalid_type"
	default:
		return "validation"
	}
}

// looseValues converts raw values without a rubric: numbers and booleans
// pass through, anything else is dropped.
func looseValues(raw map[string]any) map[string]model.CriterionValue {
	out := make(map[string]model.CriterionValue, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case bool:
			out[key] = model.BoolValue(v)
		case float64:
			out[key] = model.NumberValue(v)
		case int:
			out[key] = model.NumberValue(float64(v))
		case int64:
			out[key] = model.NumberValue(float64(v))
		}
	}
	return out
}

// Pool manages multiple workers.
type Pool struct {
	workers []*IngestWorker
	queue   Queue

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, store Upserter, rubrics RubricSource, dedupe Unrecorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*IngestWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewIngestWorker(
			queue,
			store,
			rubrics,
			dedupe,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Stop stops all workers without draining the queue.
func (p *Pool) Stop() {
	for _, worker := range p.workers {
		close(worker.shutdown)
	}

	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so workers drain the backlog and exit.
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
