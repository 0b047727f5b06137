// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ngage-io/tally/internal/domain/dedupe"
	"github.com/ngage-io/tally/internal/domain/model"
)

// ScoreIngestDependencies defines the interface for score ingest.
type ScoreIngestDependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, s model.ScoreSubmission) bool
}

// ScoresHandler handles score submission requests.
type ScoresHandler struct {
	deps ScoreIngestDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreIngestDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// scoreRequest mirrors the OpenAPI schema for POST /scores.
type scoreRequest struct {
	SubmissionID string         `json:"submission_id"`
	JudgeID      string         `json:"judge_id"`
	EventID      string         `json:"event_id"`
	RubricID     string         `json:"rubric_id"`
	Values       map[string]any `json:"values"`
	Comments     string         `json:"comments"`
	TotalScore   *float64       `json:"total_score"`
}

func (s scoreRequest) validate() error {
	switch {
	case strings.TrimSpace(s.SubmissionID) == "":
		return errors.New("missing submission_id")
	case strings.TrimSpace(s.JudgeID) == "":
		return errors.New("missing judge_id")
	case strings.TrimSpace(s.EventID) == "":
		return errors.New("missing event_id")
	case len(s.Values) == 0 && s.TotalScore == nil:
		return errors.New("missing values")
	}
	return nil
}

// digest fingerprints the judgment payload so a retry of the same values is
// a duplicate while an edited payload is processed as an update.
func (s scoreRequest) digest() string {
	payload, _ := json.Marshal(struct {
		Values     map[string]any `json:"values"`
		Comments   string         `json:"comments"`
		TotalScore *float64       `json:"total_score"`
	}{s.Values, s.Comments, s.TotalScore})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// HandlePostScore handles POST /scores requests.
func (h *ScoresHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	key := dedupe.Key(req.SubmissionID, req.JudgeID, req.digest())
	if h.deps.SeenAndRecord(r.Context(), key) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	submission := model.ScoreSubmission{
		SubmissionID: req.SubmissionID,
		JudgeID:      req.JudgeID,
		EventID:      req.EventID,
		RubricID:     req.RubricID,
		Values:       req.Values,
		Comments:     req.Comments,
		TotalScore:   req.TotalScore,
		DedupeKey:    key,
		ReceivedAt:   time.Now(),
	}

	if ok := h.deps.Enqueue(r.Context(), submission); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), key)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
