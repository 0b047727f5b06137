package model

import "time"

// ScoreSubmission is a judge's raw score payload as received on the wire,
// before rubric validation normalizes its values. It is what flows through
// the ingest queue.
type ScoreSubmission struct {
	SubmissionID string         `json:"submission_id"`
	JudgeID      string         `json:"judge_id"`
	EventID      string         `json:"event_id"`
	RubricID     string         `json:"rubric_id,omitempty"`
	Values       map[string]any `json:"values"`
	Comments     string         `json:"comments,omitempty"`
	TotalScore   *float64       `json:"total_score,omitempty"`

	// DedupeKey is the idempotency key recorded at ingest; workers clear
	// it when processing fails so the client can retry.
	DedupeKey  string    `json:"-"`
	ReceivedAt time.Time `json:"-"`
}
