// Package repository defines the score record store interfaces and errors.
package repository

import (
	"context"

	model "github.com/ngage-io/tally/internal/domain/model"
)

// ScoreStore provides read/write access to judge score records.
//
// A submission holds at most one record per judge. Writes are keyed by
// (submission ID, judge ID); a second write from the same judge replaces
// the earlier record.
type ScoreStore interface {
	// Create stores a new score record. Returns ErrDuplicate if the judge
	// already scored the submission.
	Create(ctx context.Context, score model.Score) (model.Score, error)

	// Update replaces an existing record by ID. Returns ErrNotFound if the
	// record is unknown.
	Update(ctx context.Context, score model.Score) (model.Score, error)

	// Upsert creates or replaces the record for (submission, judge).
	// Returns the stored record and true when a new record was created.
	Upsert(ctx context.Context, score model.Score) (model.Score, bool, error)

	// GetByID returns a single record. Returns ErrNotFound if unknown.
	GetByID(ctx context.Context, id string) (model.Score, error)

	// GetBySubmissionID returns all records for a submission, newest first.
	GetBySubmissionID(ctx context.Context, submissionID string) ([]model.Score, error)

	// GetByJudgeID returns all records written by a judge, newest first.
	GetByJudgeID(ctx context.Context, judgeID string) ([]model.Score, error)

	// GetByEventID returns all records for an event, newest first.
	GetByEventID(ctx context.Context, eventID string) ([]model.Score, error)

	// GetBySubmissionIDs returns records for a batch of submissions. The
	// result holds an entry for every requested ID; unscored submissions
	// map to an empty slice.
	GetBySubmissionIDs(ctx context.Context, submissionIDs []string) (map[string][]model.Score, error)

	// Count returns the number of score records tracked.
	Count(ctx context.Context) int
}

// RubricStore manages scoring rubric definitions.
//
// A rubric becomes immutable once a score record references it; Update
// then returns ErrRubricInUse and callers should Clone instead.
type RubricStore interface {
	// Create stores a new rubric. Returns ErrDuplicate on ID collision.
	Create(ctx context.Context, rubric model.ScoringRubric) (model.ScoringRubric, error)

	// Get returns a rubric by ID. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (model.ScoringRubric, error)

	// Update replaces an unreferenced rubric. Returns ErrRubricInUse once
	// any score references it.
	Update(ctx context.Context, rubric model.ScoringRubric) (model.ScoringRubric, error)

	// Clone copies a rubric under a fresh ID bound to eventID.
	Clone(ctx context.Context, id string, eventID string) (model.ScoringRubric, error)

	// Reference marks a rubric as used by a score record.
	Reference(ctx context.Context, id string) error

	// List returns all rubrics, optionally filtered by event.
	List(ctx context.Context, eventID string) ([]model.ScoringRubric, error)

	// Count returns the number of rubrics tracked.
	Count(ctx context.Context) int
}

// SubmissionStore registers the submissions a leaderboard ranks over.
type SubmissionStore interface {
	// Put stores or replaces a submission.
	Put(ctx context.Context, submission model.Submission) error

	// Get returns a submission by ID. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (model.Submission, error)

	// GetByEventID returns all submissions registered for an event.
	GetByEventID(ctx context.Context, eventID string) ([]model.Submission, error)

	// Count returns the number of submissions tracked.
	Count(ctx context.Context) int
}

// TeamStore resolves team IDs to display names.
type TeamStore interface {
	// Put stores or replaces a team.
	Put(ctx context.Context, team model.Team) error

	// Get returns a team by ID. Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (model.Team, error)

	// Names returns the ID-to-name mapping for all known teams.
	Names(ctx context.Context) map[string]string

	// Count returns the number of teams tracked.
	Count(ctx context.Context) int
}
