// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/ngage-io/tally/internal/domain/model"
)

// RubricDependencies defines the interface for rubric management.
type RubricDependencies interface {
	CreateRubric(ctx context.Context, r model.ScoringRubric) (model.ScoringRubric, error)
	GetRubric(ctx context.Context, id string) (model.ScoringRubric, error)
	UpdateRubric(ctx context.Context, r model.ScoringRubric) (model.ScoringRubric, error)
	CloneRubric(ctx context.Context, id, eventID string) (model.ScoringRubric, error)
	ListRubrics(ctx context.Context, eventID string) ([]model.ScoringRubric, error)
}

// RubricsHandler handles rubric management requests.
type RubricsHandler struct {
	deps RubricDependencies
}

// NewRubricsHandler creates a new rubrics handler.
func NewRubricsHandler(deps RubricDependencies) *RubricsHandler {
	return &RubricsHandler{deps: deps}
}

// HandleCollection handles /rubrics requests: POST creates a rubric, GET
// lists rubrics with an optional event_id filter.
func (h *RubricsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	const op = "api.rubrics"
	switch r.Method {
	case http.MethodPost:
		var def model.ScoringRubric
		if err := decodeBody(r, &def); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		created, err := h.deps.CreateRubric(r.Context(), def)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		rubrics, err := h.deps.ListRubrics(r.Context(), r.URL.Query().Get("event_id"))
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, rubrics)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles /rubrics/{id} and /rubrics/{id}/clone requests.
func (h *RubricsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.rubric"
	rest := strings.TrimPrefix(r.URL.Path, "/rubrics/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		h.handleRubric(w, r, op, parts[0])
	case len(parts) == 2 && parts[0] != "" && parts[1] == "clone":
		h.handleClone(w, r, op, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *RubricsHandler) handleRubric(w http.ResponseWriter, r *http.Request, op, id string) {
	switch r.Method {
	case http.MethodGet:
		rubric, err := h.deps.GetRubric(r.Context(), id)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, rubric)
	case http.MethodPut:
		var def model.ScoringRubric
		if err := decodeBody(r, &def); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		def.ID = id
		updated, err := h.deps.UpdateRubric(r.Context(), def)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		http.NotFound(w, r)
	}
}

type cloneRequest struct {
	EventID string `json:"event_id"`
}

func (h *RubricsHandler) handleClone(w http.ResponseWriter, r *http.Request, op, id string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req cloneRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	clone, err := h.deps.CloneRubric(r.Context(), id, req.EventID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, clone)
}
