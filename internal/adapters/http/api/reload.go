package api

import (
	"context"
	"net/http"

	"github.com/okian/prioritise/internal/domain/types"
)

// ReloadDependencies rebuilds the cohort snapshot.
type ReloadDependencies interface {
	Refresh(ctx context.Context) (types.SnapshotInfo, error)
}

// ReloadHandler handles on-demand snapshot rebuilds.
type ReloadHandler struct {
	deps ReloadDependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandleReload handles POST /reload.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	info, err := h.deps.Refresh(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
