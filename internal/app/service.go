// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	submissionqueue "github.com/ngage-io/tally/internal/adapters/mq/queue"
	workerpool "github.com/ngage-io/tally/internal/adapters/mq/worker"
	repository "github.com/ngage-io/tally/internal/adapters/repository"
	"github.com/ngage-io/tally/internal/domain/aggregate"
	"github.com/ngage-io/tally/internal/domain/dedupe"
	"github.com/ngage-io/tally/internal/domain/leaderboard"
	"github.com/ngage-io/tally/internal/domain/model"
	"github.com/ngage-io/tally/internal/domain/rubric"
	"github.com/ngage-io/tally/pkg/logger"
	"github.com/ngage-io/tally/pkg/metrics"
)

// Service implements the API dependencies for the judging system.
type Service struct {
	mu sync.RWMutex

	// Core components
	scores      repository.ScoreStore
	rubrics     repository.RubricStore
	submissions repository.SubmissionStore
	teams       repository.TeamStore
	deduper     dedupe.Deduper
	queue       submissionqueue.Queue
	workerPool  *workerpool.Pool
	builder     *leaderboard.Builder

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	method       aggregate.Method
	trimFraction float64
	combineMode  leaderboard.CombineMode
	epsilon      float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingest worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAggregationMethod sets how per-judge totals combine into a
// submission score.
func WithAggregationMethod(m aggregate.Method) Option {
	return func(s *Service) {
		switch m {
		case aggregate.MethodMean, aggregate.MethodMedian, aggregate.MethodTrimmedMean:
			s.method = m
		}
	}
}

// WithTrimFraction sets the fraction trimmed from each end for the
// trimmed-mean method.
func WithTrimFraction(f float64) Option {
	return func(s *Service) {
		if f > 0 && f < 0.5 {
			s.trimFraction = f
		}
	}
}

// WithCombineMode sets how multiple submissions per team fold into one
// leaderboard entry.
func WithCombineMode(mode leaderboard.CombineMode) Option {
	return func(s *Service) {
		switch mode {
		case leaderboard.CombineAverage, leaderboard.CombineBest:
			s.combineMode = mode
		}
	}
}

// WithEpsilon sets the tie-comparison precision for leaderboard ordering.
func WithEpsilon(eps float64) Option {
	return func(s *Service) {
		if eps > 0 {
			s.epsilon = eps
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    100000,
		dedupeSize:   50000,
		method:       aggregate.MethodMean,
		trimFraction: 0.1,
		combineMode:  leaderboard.CombineAverage,
		epsilon:      1e-9,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting judging service...")

	s.scores = repository.NewMemScoreStore()
	s.rubrics = repository.NewMemRubricStore()
	s.submissions = repository.NewMemSubmissionStore()
	s.teams = repository.NewMemTeamStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)
	s.builder = leaderboard.New(
		leaderboard.WithCombineMode(s.combineMode),
		leaderboard.WithEpsilon(s.epsilon),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.scores, s.rubrics, s.deduper)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "judging service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("method", s.method.String()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping judging service...")

	// Shutting down the pool closes the queue first, so queued submissions
	// drain into the store before workers exit.
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "judging service stopped")
}

// SeenAndRecord atomically checks if a submission key was seen and records
// it if not. Returns true if the key was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, key string) bool {
	seen := s.deduper.SeenAndRecord(ctx, key)
	if seen {
		metrics.RecordScoreDuplicate()
	}
	return seen
}

// Unrecord removes a submission key from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, key string) {
	s.deduper.Unrecord(ctx, key)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a score for asynchronous processing.
func (s *Service) Enqueue(ctx context.Context, sub model.ScoreSubmission) bool {
	s.logger.Debug(ctx, "enqueueing score submission",
		logger.String("submissionID", sub.SubmissionID),
		logger.String("judgeID", sub.JudgeID),
	)

	ok := s.queue.Enqueue(ctx, sub)
	if ok {
		metrics.RecordScoreAccepted()
	}
	return ok
}

// SubmissionScore returns the aggregated score for one submission.
// A registered but unscored submission yields a zero-judge summary.
func (s *Service) SubmissionScore(ctx context.Context, submissionID string) (model.AggregatedScore, error) {
	if _, err := s.submissions.Get(ctx, submissionID); err != nil {
		return model.AggregatedScore{}, err
	}

	records, err := s.scores.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return model.AggregatedScore{}, err
	}

	agg := s.aggregate(ctx, submissionID, records)
	agg.IndividualScores = records
	return agg, nil
}

// Leaderboard computes the full ranking for an event.
func (s *Service) Leaderboard(ctx context.Context, eventID string) (model.Leaderboard, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardBuildLatency(float64(time.Since(start).Milliseconds()))
	}()

	submissions, err := s.submissions.GetByEventID(ctx, eventID)
	if err != nil {
		return model.Leaderboard{}, err
	}

	ids := make([]string, len(submissions))
	for i, sub := range submissions {
		ids[i] = sub.ID
	}
	batch, err := s.scores.GetBySubmissionIDs(ctx, ids)
	if err != nil {
		return model.Leaderboard{}, err
	}

	aggregates := make(map[string]model.AggregatedScore, len(batch))
	for id, records := range batch {
		aggregates[id] = s.aggregate(ctx, id, records)
	}

	lb := s.builder.Build(eventID, submissions, s.teams.Names(ctx), aggregates)
	metrics.RecordLeaderboardBuild()
	return lb, nil
}

// TopN computes the event ranking truncated to the first n entries.
func (s *Service) TopN(ctx context.Context, eventID string, n int) (model.Leaderboard, error) {
	if n < 1 {
		return model.Leaderboard{}, repository.ErrInvalidLimit
	}
	lb, err := s.Leaderboard(ctx, eventID)
	if err != nil {
		return model.Leaderboard{}, err
	}
	lb.Entries = leaderboard.TopEntries(lb, n)
	return lb, nil
}

// Standing returns one team's entry in an event's ranking.
func (s *Service) Standing(ctx context.Context, eventID, teamID string) (model.LeaderboardEntry, error) {
	lb, err := s.Leaderboard(ctx, eventID)
	if err != nil {
		return model.LeaderboardEntry{}, err
	}
	for _, entry := range lb.Entries {
		if entry.TeamID == teamID {
			return entry, nil
		}
	}
	return model.LeaderboardEntry{}, repository.ErrNotFound
}

// RegisterSubmission records a submission for ranking.
func (s *Service) RegisterSubmission(ctx context.Context, sub model.Submission) error {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	return s.submissions.Put(ctx, sub)
}

// RegisterTeam records a team name for leaderboard display.
func (s *Service) RegisterTeam(ctx context.Context, team model.Team) error {
	return s.teams.Put(ctx, team)
}

// CreateRubric validates and stores a new rubric definition.
func (s *Service) CreateRubric(ctx context.Context, def model.ScoringRubric) (model.ScoringRubric, error) {
	if err := rubric.ValidateDefinition(def); err != nil {
		return model.ScoringRubric{}, err
	}
	return s.rubrics.Create(ctx, def)
}

// GetRubric returns a rubric by ID.
func (s *Service) GetRubric(ctx context.Context, id string) (model.ScoringRubric, error) {
	return s.rubrics.Get(ctx, id)
}

// UpdateRubric validates and replaces an unreferenced rubric.
func (s *Service) UpdateRubric(ctx context.Context, def model.ScoringRubric) (model.ScoringRubric, error) {
	if err := rubric.ValidateDefinition(def); err != nil {
		return model.ScoringRubric{}, err
	}
	return s.rubrics.Update(ctx, def)
}

// CloneRubric copies a rubric under a fresh ID bound to an event.
func (s *Service) CloneRubric(ctx context.Context, id, eventID string) (model.ScoringRubric, error) {
	return s.rubrics.Clone(ctx, id, eventID)
}

// ListRubrics returns all rubrics, optionally filtered by event.
func (s *Service) ListRubrics(ctx context.Context, eventID string) ([]model.ScoringRubric, error) {
	return s.rubrics.List(ctx, eventID)
}

// aggregate combines records for one submission, binding the rubric the
// records were judged against when one is named.
func (s *Service) aggregate(ctx context.Context, submissionID string, records []model.Score) model.AggregatedScore {
	start := time.Now()
	defer func() {
		metrics.RecordAggregationLatency(float64(time.Since(start).Milliseconds()))
	}()

	opts := []aggregate.Option{
		aggregate.WithMethod(s.method),
		aggregate.WithTrimFraction(s.trimFraction),
	}
	for _, record := range records {
		if record.RubricID == "" {
			continue
		}
		def, err := s.rubrics.Get(ctx, record.RubricID)
		if err != nil {
			s.logger.Warn(ctx, "rubric lookup failed during aggregation",
				logger.String("rubricID", record.RubricID),
				logger.Error(err),
			)
			break
		}
		opts = append(opts, aggregate.WithRubric(def))
		break
	}

	agg := aggregate.New(opts...).Aggregate(submissionID, records)
	metrics.RecordAggregation()
	return agg
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"method":      s.method.String(),
		"combineMode": string(s.combineMode),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["totalScores"] = s.scores.Count(ctx)
		stats["totalSubmissions"] = s.submissions.Count(ctx)
		stats["totalTeams"] = s.teams.Count(ctx)
		stats["totalRubrics"] = s.rubrics.Count(ctx)

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalScores(s.scores.Count(ctx))
		metrics.UpdateTotalSubmissions(s.submissions.Count(ctx))
		metrics.UpdateTotalRubrics(s.rubrics.Count(ctx))
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
