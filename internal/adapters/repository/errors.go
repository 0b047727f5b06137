package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("record already exists")
	ErrRubricInUse  = errors.New("rubric is referenced by scores")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
