// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ngage-io/tally/internal/adapters/repository"
	"github.com/ngage-io/tally/internal/domain/rubric"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreIngestDependencies
	ScoreReadDependencies
	LeaderboardDependencies
	RubricDependencies
	RegistryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	submissionsHandler *SubmissionsHandler
	leaderboardHandler *LeaderboardHandler
	standingHandler    *StandingHandler
	rubricsHandler     *RubricsHandler
	teamsHandler       *TeamsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		scoresHandler:      NewScoresHandler(deps),
		submissionsHandler: NewSubmissionsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		standingHandler:    NewStandingHandler(deps),
		rubricsHandler:     NewRubricsHandler(deps),
		teamsHandler:       NewTeamsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandlePostScore, "scores"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandleRegister, "submissions"))
	mux.HandleFunc("/submissions/", MetricsMiddleware(s.submissionsHandler.HandleGetScore, "submission_score"))
	mux.HandleFunc("/teams", MetricsMiddleware(s.teamsHandler.HandleRegister, "teams"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/standing/", MetricsMiddleware(s.standingHandler.HandleGetStanding, "standing"))
	mux.HandleFunc("/rubrics", MetricsMiddleware(s.rubricsHandler.HandleCollection, "rubrics"))
	mux.HandleFunc("/rubrics/", MetricsMiddleware(s.rubricsHandler.HandleItem, "rubric"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates store and validation errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, repository.ErrRubricInUse):
		writeError(w, http.StatusConflict, "rubric_in_use", Wrap(op, err))
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", Wrap(op, err))
	case errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, rubric.ErrInvalidDefinition),
		errors.Is(err, rubric.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return Wrap("api.decode", err)
	}
	return nil
}
