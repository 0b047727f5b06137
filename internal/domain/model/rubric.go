// Package model contains domain models passed between layers.
package model

import "time"

// CriterionType enumerates the kinds of rubric criteria.
type CriterionType string

const (
	// CriterionNumeric is a free numeric value in [0, MaxScore].
	CriterionNumeric CriterionType = "numeric"
	// CriterionScale is a numeric value constrained to [MinScore, MaxScore].
	CriterionScale CriterionType = "scale"
	// CriterionBoolean is a yes/no judgment.
	CriterionBoolean CriterionType = "boolean"
)

// String returns the string representation of the criterion type.
func (t CriterionType) String() string { return string(t) }

// ScoringCriterion is one evaluable dimension of a rubric.
type ScoringCriterion struct {
	Key         string        `json:"key" validate:"required"`
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description,omitempty"`
	Type        CriterionType `json:"type" validate:"required,oneof=numeric scale boolean"`
	MaxScore    float64       `json:"max_score" validate:"gt=0"`
	// MinScore is the lower bound for scale criteria; zero otherwise.
	MinScore float64 `json:"min_score,omitempty" validate:"gte=0,ltefield=MaxScore"`
	Weight   float64 `json:"weight" validate:"gt=0"`
	Required bool    `json:"required"`
}

// ScoringRubric is a named, ordered collection of criteria. A rubric is
// either a reusable template or scoped to one event/group.
type ScoringRubric struct {
	ID          string             `json:"id"`
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description,omitempty"`
	Criteria    []ScoringCriterion `json:"criteria" validate:"required,min=1,unique=Key,dive"`
	IsTemplate  bool               `json:"is_template"`
	EventID     string             `json:"event_id,omitempty"`
	GroupID     string             `json:"group_id,omitempty"`
	CreatedBy   string             `json:"created_by,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Criterion looks up a criterion by key.
func (r ScoringRubric) Criterion(key string) (ScoringCriterion, bool) {
	for _, c := range r.Criteria {
		if c.Key == key {
			return c, true
		}
	}
	return ScoringCriterion{}, false
}

// MaxPossibleScore is the sum of MaxScore over all criteria.
func (r ScoringRubric) MaxPossibleScore() float64 {
	var total float64
	for _, c := range r.Criteria {
		total += c.MaxScore
	}
	return total
}

// Clone derives an event-scoped, non-template copy of the rubric.
// Criteria are deep-copied so later template edits do not leak into the copy.
func (r ScoringRubric) Clone(id, eventID string, now time.Time) ScoringRubric {
	criteria := make([]ScoringCriterion, len(r.Criteria))
	copy(criteria, r.Criteria)
	return ScoringRubric{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Criteria:    criteria,
		IsTemplate:  false,
		EventID:     eventID,
		GroupID:     r.GroupID,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   now,
	}
}
