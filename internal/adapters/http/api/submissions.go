// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ngage-io/tally/internal/domain/model"
)

// ScoreReadDependencies defines the interface for aggregated score reads.
type ScoreReadDependencies interface {
	SubmissionScore(ctx context.Context, submissionID string) (model.AggregatedScore, error)
}

// RegistryDependencies defines the interface for submission and team
// registration.
type RegistryDependencies interface {
	RegisterSubmission(ctx context.Context, submission model.Submission) error
	RegisterTeam(ctx context.Context, team model.Team) error
}

// SubmissionsHandler handles submission registration and score reads.
type SubmissionsHandler struct {
	reads    ScoreReadDependencies
	registry RegistryDependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps interface {
	ScoreReadDependencies
	RegistryDependencies
}) *SubmissionsHandler {
	return &SubmissionsHandler{reads: deps, registry: deps}
}

// HandleRegister handles POST /submissions requests.
func (h *SubmissionsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_submission"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var submission model.Submission
	if err := decodeBody(r, &submission); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(submission.ID) == "" || strings.TrimSpace(submission.EventID) == "" ||
		strings.TrimSpace(submission.TeamID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("id, event_id and team_id are required")))
		return
	}
	if err := h.registry.RegisterSubmission(r.Context(), submission); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

// HandleGetScore handles GET /submissions/{id}/score requests.
func (h *SubmissionsHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_submission_score"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/submissions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "score" {
		http.NotFound(w, r)
		return
	}

	score, err := h.reads.SubmissionScore(r.Context(), parts[0])
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// TeamsHandler handles team registration requests.
type TeamsHandler struct {
	registry RegistryDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps RegistryDependencies) *TeamsHandler {
	return &TeamsHandler{registry: deps}
}

// HandleRegister handles POST /teams requests.
func (h *TeamsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_team"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var team model.Team
	if err := decodeBody(r, &team); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(team.ID) == "" || strings.TrimSpace(team.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("id and name are required")))
		return
	}
	if err := h.registry.RegisterTeam(r.Context(), team); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}
