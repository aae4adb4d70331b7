package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/prioritise/internal/domain/types"
)

// ClientsDependencies defines the read operations over the cohort.
type ClientsDependencies interface {
	TopN(ctx context.Context, n int) ([]types.Entry, error)
	Client(ctx context.Context, id string) (types.ClientDetail, error)
}

// ClientsHandler serves the priority list and per-client detail.
type ClientsHandler struct {
	deps     ClientsDependencies
	maxLimit int
}

// NewClientsHandler creates a new clients handler.
func NewClientsHandler(deps ClientsDependencies, maxLimit int) *ClientsHandler {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	return &ClientsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleList handles GET /clients?limit=N. A missing limit lists up to 50.
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_clients"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := min(defaultListLimit, h.maxLimit)
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded",
				WrapKind(op, ErrLimitExceeded, fmt.Errorf("max %d", h.maxLimit)))
			return
		}
		n = v
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGet handles GET /clients/{id}.
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_client"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/clients/")
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	detail, err := h.deps.Client(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
