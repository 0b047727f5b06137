package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ValueKind discriminates the arms of CriterionValue.
type ValueKind uint8

const (
	// NumberKind marks a numeric criterion value.
	NumberKind ValueKind = iota
	// BoolKind marks a boolean criterion value.
	BoolKind
)

// CriterionValue holds one judge-supplied value for a criterion.
// Exactly one arm is meaningful, discriminated by Kind. Constructing values
// through Number/Boolean keeps invalid types out of the data model; raw
// client input is normalized by the rubric validator before it gets here.
type CriterionValue struct {
	Kind   ValueKind
	Number float64
	Bool   bool
}

// NumberValue constructs a numeric criterion value.
func NumberValue(v float64) CriterionValue {
	return CriterionValue{Kind: NumberKind, Number: v}
}

// BoolValue constructs a boolean criterion value.
func BoolValue(b bool) CriterionValue {
	return CriterionValue{Kind: BoolKind, Bool: b}
}

// Points converts the value to points against a criterion: numeric values
// pass through, booleans contribute the criterion's MaxScore when true.
func (v CriterionValue) Points(c ScoringCriterion) float64 {
	if v.Kind == BoolKind {
		if v.Bool {
			return c.MaxScore
		}
		return 0
	}
	return v.Number
}

// MarshalJSON encodes the value as a bare JSON number or boolean.
func (v CriterionValue) MarshalJSON() ([]byte, error) {
	if v.Kind == BoolKind {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Number)
}

// UnmarshalJSON decodes a bare JSON number or boolean.
func (v *CriterionValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberValue(n)
		return nil
	}
	return fmt.Errorf("criterion value must be a number or boolean, got %s", data)
}

// Score is one judge's evaluation of one submission against one rubric.
type Score struct {
	ID           string                    `json:"id"`
	SubmissionID string                    `json:"submission_id"`
	JudgeID      string                    `json:"judge_id"`
	EventID      string                    `json:"event_id"`
	RubricID     string                    `json:"rubric_id,omitempty"`
	Values       map[string]CriterionValue `json:"values"`
	Comments     string                    `json:"comments,omitempty"`
	// TotalScore is this judge's precomputed aggregate, when present.
	TotalScore *float64  `json:"total_score,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScoreRange is the min/max spread of per-judge totals.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AggregatedScore is the derived, read-only summary over all Score records
// for one submission. A zero JudgeCount means "not yet scored", not an error.
type AggregatedScore struct {
	SubmissionID     string             `json:"submission_id"`
	JudgeCount       int                `json:"judge_count"`
	AverageScore     float64            `json:"average_score"`
	ScoreRange       ScoreRange         `json:"score_range"`
	CriteriaAverages map[string]float64 `json:"criteria_averages"`
	IndividualScores []Score            `json:"individual_scores,omitempty"`
}

// HasScores reports whether at least one judge has scored the submission.
func (a AggregatedScore) HasScores() bool { return a.JudgeCount > 0 }
