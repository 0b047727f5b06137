package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	model "github.com/ngage-io/tally/internal/domain/model"
	"github.com/ngage-io/tally/pkg/metrics"
)

// In-memory submission and team registries. Both are simple keyed maps;
// the leaderboard builder reads them wholesale when ranking an event.

type memSubmissionStore struct {
	mu      sync.RWMutex
	byID    map[string]model.Submission
	byEvent map[string][]string
}

// NewMemSubmissionStore creates an empty in-memory submission registry.
func NewMemSubmissionStore() SubmissionStore {
	return &memSubmissionStore{
		byID:    make(map[string]model.Submission),
		byEvent: make(map[string][]string),
	}
}

// Put stores or replaces a submission.
func (s *memSubmissionStore) Put(_ context.Context, submission model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, exists := s.byID[submission.ID]; exists && prev.EventID != submission.EventID {
		s.byEvent[prev.EventID] = removeID(s.byEvent[prev.EventID], prev.ID)
		s.byEvent[submission.EventID] = append(s.byEvent[submission.EventID], submission.ID)
	} else if !exists {
		s.byEvent[submission.EventID] = append(s.byEvent[submission.EventID], submission.ID)
	}

	s.byID[submission.ID] = submission
	metrics.UpdateTotalSubmissions(len(s.byID))
	return nil
}

// Get returns a submission by ID.
func (s *memSubmissionStore) Get(_ context.Context, id string) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	submission, exists := s.byID[id]
	if !exists {
		return model.Submission{}, ErrNotFound
	}
	return submission, nil
}

// GetByEventID returns all submissions registered for an event, ID ascending.
func (s *memSubmissionStore) GetByEventID(_ context.Context, eventID string) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byEvent[eventID]
	out := make([]model.Submission, 0, len(ids))
	for _, id := range ids {
		if submission, exists := s.byID[id]; exists {
			out = append(out, submission)
		}
	}
	slices.SortFunc(out, func(a, b model.Submission) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Count returns the number of submissions tracked.
func (s *memSubmissionStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

type memTeamStore struct {
	mu   sync.RWMutex
	byID map[string]model.Team
}

// NewMemTeamStore creates an empty in-memory team registry.
func NewMemTeamStore() TeamStore {
	return &memTeamStore{byID: make(map[string]model.Team)}
}

// Put stores or replaces a team.
func (s *memTeamStore) Put(_ context.Context, team model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[team.ID] = team
	return nil
}

// Get returns a team by ID.
func (s *memTeamStore) Get(_ context.Context, id string) (model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, exists := s.byID[id]
	if !exists {
		return model.Team{}, ErrNotFound
	}
	return team, nil
}

// Names returns the ID-to-name mapping for all known teams.
func (s *memTeamStore) Names(_ context.Context) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.byID))
	for id, team := range s.byID {
		out[id] = team.Name
	}
	return out
}

// Count returns the number of teams tracked.
func (s *memTeamStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
