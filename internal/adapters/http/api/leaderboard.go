// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ngage-io/tally/internal/domain/model"
)

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, eventID string) (model.Leaderboard, error)
	TopN(ctx context.Context, eventID string, n int) (model.Leaderboard, error)
	Standing(ctx context.Context, eventID, teamID string) (model.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?event_id=X&limit=N requests.
// Omitting limit returns the full ranking.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("missing event_id")))
		return
	}

	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		lb, err := h.deps.Leaderboard(r.Context(), eventID)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, lb)
		return
	}

	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	lb, err := h.deps.TopN(r.Context(), eventID, n)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// StandingHandler handles per-team standing requests.
type StandingHandler struct {
	deps LeaderboardDependencies
}

// NewStandingHandler creates a new standing handler.
func NewStandingHandler(deps LeaderboardDependencies) *StandingHandler {
	return &StandingHandler{deps: deps}
}

// HandleGetStanding handles GET /standing/{eventID}/{teamID} requests.
func (h *StandingHandler) HandleGetStanding(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standing"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/standing/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		http.NotFound(w, r)
		return
	}

	entry, err := h.deps.Standing(r.Context(), parts[0], parts[1])
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
