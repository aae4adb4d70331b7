package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/internal/domain/types"
)

// ScoreDependencies scores a record outside the cohort.
type ScoreDependencies interface {
	ScoreRecord(ctx context.Context, rec model.ClientRecord) types.ScoreResult
}

// ScoreHandler handles ad-hoc scoring requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleScore handles POST /score. The body is one client record; metric
// fields may be numbers, strings or null.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var rec model.ClientRecord
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ScoreRecord(r.Context(), rec))
}
