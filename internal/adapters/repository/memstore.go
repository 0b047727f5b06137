package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	model "github.com/ngage-io/tally/internal/domain/model"
	"github.com/ngage-io/tally/pkg/metrics"
)

// In-memory ScoreStore implementation.
//
// Records live in a byID map with secondary indexes per submission, judge,
// and event. Reads return copies sorted newest-first with ID ascending as
// the tie-breaker, so identical stores always list in the same order.

type memScoreStore struct {
	settings

	mu           sync.RWMutex
	byID         map[string]model.Score
	bySubmission map[string][]string
	byJudge      map[string][]string
	byEvent      map[string][]string
	// pairKey(submissionID, judgeID) -> record ID, the upsert identity.
	byPair map[string]string
}

// NewMemScoreStore creates an empty in-memory score store.
func NewMemScoreStore(opts ...Option) ScoreStore {
	return &memScoreStore{
		settings:     newSettings(opts...),
		byID:         make(map[string]model.Score),
		bySubmission: make(map[string][]string),
		byJudge:      make(map[string][]string),
		byEvent:      make(map[string][]string),
		byPair:       make(map[string]string),
	}
}

func pairKey(submissionID, judgeID string) string {
	return submissionID + "\x00" + judgeID
}

// Create stores a new score record.
func (s *memScoreStore) Create(_ context.Context, score model.Score) (model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	pk := pairKey(score.SubmissionID, score.JudgeID)
	if _, exists := s.byPair[pk]; exists {
		return model.Score{}, ErrDuplicate
	}
	if _, exists := s.byID[score.ID]; exists {
		return model.Score{}, ErrDuplicate
	}

	stored := s.insertLocked(score)
	metrics.RecordScoreUpserted()
	metrics.UpdateTotalScores(len(s.byID))
	return stored, nil
}

// Update replaces an existing record by ID.
func (s *memScoreStore) Update(_ context.Context, score model.Score) (model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.byID[score.ID]
	if !exists {
		return model.Score{}, ErrNotFound
	}

	stored := s.replaceLocked(prev, score)
	metrics.RecordScoreUpserted()
	return stored, nil
}

// Upsert creates or replaces the record for (submission, judge).
func (s *memScoreStore) Upsert(_ context.Context, score model.Score) (model.Score, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	pk := pairKey(score.SubmissionID, score.JudgeID)
	if id, exists := s.byPair[pk]; exists {
		prev := s.byID[id]
		score.ID = prev.ID
		stored := s.replaceLocked(prev, score)
		metrics.RecordScoreUpserted()
		return stored, false, nil
	}
	if _, exists := s.byID[score.ID]; exists {
		return model.Score{}, false, ErrDuplicate
	}

	stored := s.insertLocked(score)
	metrics.RecordScoreUpserted()
	metrics.UpdateTotalScores(len(s.byID))
	return stored, true, nil
}

// insertLocked adds a fresh record and all its index entries.
func (s *memScoreStore) insertLocked(score model.Score) model.Score {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	now := s.now()
	if score.CreatedAt.IsZero() {
		score.CreatedAt = now
	}
	score.UpdatedAt = now
	score.Values = cloneValues(score.Values)

	s.byID[score.ID] = score
	s.bySubmission[score.SubmissionID] = append(s.bySubmission[score.SubmissionID], score.ID)
	s.byJudge[score.JudgeID] = append(s.byJudge[score.JudgeID], score.ID)
	s.byEvent[score.EventID] = append(s.byEvent[score.EventID], score.ID)
	s.byPair[pairKey(score.SubmissionID, score.JudgeID)] = score.ID

	score.Values = cloneValues(score.Values)
	return score
}

// replaceLocked overwrites prev with the incoming record, keeping identity
// and creation time.
func (s *memScoreStore) replaceLocked(prev, score model.Score) model.Score {
	score.ID = prev.ID
	score.SubmissionID = prev.SubmissionID
	score.JudgeID = prev.JudgeID
	score.CreatedAt = prev.CreatedAt
	score.UpdatedAt = s.now()
	score.Values = cloneValues(score.Values)

	if score.EventID != prev.EventID {
		s.byEvent[prev.EventID] = removeID(s.byEvent[prev.EventID], prev.ID)
		s.byEvent[score.EventID] = append(s.byEvent[score.EventID], score.ID)
	}
	s.byID[score.ID] = score

	score.Values = cloneValues(score.Values)
	return score
}

// GetByID returns a single record.
func (s *memScoreStore) GetByID(_ context.Context, id string) (model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	score, exists := s.byID[id]
	if !exists {
		return model.Score{}, ErrNotFound
	}
	score.Values = cloneValues(score.Values)
	return score, nil
}

// GetBySubmissionID returns all records for a submission, newest first.
func (s *memScoreStore) GetBySubmissionID(_ context.Context, submissionID string) ([]model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(s.bySubmission[submissionID]), nil
}

// GetByJudgeID returns all records written by a judge, newest first.
func (s *memScoreStore) GetByJudgeID(_ context.Context, judgeID string) ([]model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(s.byJudge[judgeID]), nil
}

// GetByEventID returns all records for an event, newest first.
func (s *memScoreStore) GetByEventID(_ context.Context, eventID string) ([]model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(s.byEvent[eventID]), nil
}

// GetBySubmissionIDs returns records for a batch of submissions.
func (s *memScoreStore) GetBySubmissionIDs(_ context.Context, submissionIDs []string) (map[string][]model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]model.Score, len(submissionIDs))
	for _, id := range submissionIDs {
		if _, seen := out[id]; seen {
			continue
		}
		out[id] = s.collectLocked(s.bySubmission[id])
	}
	return out, nil
}

// Count returns the number of score records tracked.
func (s *memScoreStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// collectLocked copies the records behind ids, sorted newest first with ID
// ascending breaking timestamp ties.
func (s *memScoreStore) collectLocked(ids []string) []model.Score {
	out := make([]model.Score, 0, len(ids))
	for _, id := range ids {
		score, exists := s.byID[id]
		if !exists {
			continue
		}
		score.Values = cloneValues(score.Values)
		out = append(out, score)
	}
	slices.SortFunc(out, func(a, b model.Score) int {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func cloneValues(values map[string]model.CriterionValue) map[string]model.CriterionValue {
	if values == nil {
		return nil
	}
	out := make(map[string]model.CriterionValue, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
