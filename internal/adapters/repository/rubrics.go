package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	model "github.com/ngage-io/tally/internal/domain/model"
	"github.com/ngage-io/tally/pkg/metrics"
)

// In-memory RubricStore implementation.
//
// A rubric is mutable until the first score record references it. After
// that the definition is frozen so every historical score keeps meaning
// the same thing; edits go through Clone instead.

type memRubricStore struct {
	settings

	mu         sync.RWMutex
	byID       map[string]model.ScoringRubric
	referenced map[string]struct{}
}

// NewMemRubricStore creates an empty in-memory rubric store.
func NewMemRubricStore(opts ...Option) RubricStore {
	return &memRubricStore{
		settings:   newSettings(opts...),
		byID:       make(map[string]model.ScoringRubric),
		referenced: make(map[string]struct{}),
	}
}

// Create stores a new rubric.
func (s *memRubricStore) Create(_ context.Context, rubric model.ScoringRubric) (model.ScoringRubric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rubric.ID == "" {
		rubric.ID = uuid.NewString()
	} else if _, exists := s.byID[rubric.ID]; exists {
		return model.ScoringRubric{}, ErrDuplicate
	}
	if rubric.CreatedAt.IsZero() {
		rubric.CreatedAt = s.now()
	}
	rubric.Criteria = slices.Clone(rubric.Criteria)
	s.byID[rubric.ID] = rubric

	rubric.Criteria = slices.Clone(rubric.Criteria)
	metrics.UpdateTotalRubrics(len(s.byID))
	return rubric, nil
}

// Get returns a rubric by ID.
func (s *memRubricStore) Get(_ context.Context, id string) (model.ScoringRubric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rubric, exists := s.byID[id]
	if !exists {
		return model.ScoringRubric{}, ErrNotFound
	}
	rubric.Criteria = slices.Clone(rubric.Criteria)
	return rubric, nil
}

// Update replaces an unreferenced rubric.
func (s *memRubricStore) Update(_ context.Context, rubric model.ScoringRubric) (model.ScoringRubric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.byID[rubric.ID]
	if !exists {
		return model.ScoringRubric{}, ErrNotFound
	}
	if _, inUse := s.referenced[rubric.ID]; inUse {
		return model.ScoringRubric{}, ErrRubricInUse
	}

	rubric.CreatedAt = prev.CreatedAt
	rubric.Criteria = slices.Clone(rubric.Criteria)
	s.byID[rubric.ID] = rubric

	rubric.Criteria = slices.Clone(rubric.Criteria)
	return rubric, nil
}

// Clone copies a rubric under a fresh ID bound to eventID.
func (s *memRubricStore) Clone(_ context.Context, id string, eventID string) (model.ScoringRubric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, exists := s.byID[id]
	if !exists {
		return model.ScoringRubric{}, ErrNotFound
	}

	clone := source.Clone(uuid.NewString(), eventID, s.now())
	s.byID[clone.ID] = clone
	metrics.UpdateTotalRubrics(len(s.byID))
	return clone, nil
}

// Reference marks a rubric as used by a score record.
func (s *memRubricStore) Reference(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return ErrNotFound
	}
	s.referenced[id] = struct{}{}
	return nil
}

// List returns all rubrics, optionally filtered by event, name ascending.
func (s *memRubricStore) List(_ context.Context, eventID string) ([]model.ScoringRubric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ScoringRubric, 0, len(s.byID))
	for _, rubric := range s.byID {
		if eventID != "" && rubric.EventID != eventID {
			continue
		}
		rubric.Criteria = slices.Clone(rubric.Criteria)
		out = append(out, rubric)
	}
	slices.SortFunc(out, func(a, b model.ScoringRubric) int {
		if a.Name != b.Name {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Count returns the number of rubrics tracked.
func (s *memRubricStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
