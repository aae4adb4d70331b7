package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/prioritise/internal/app"
	"github.com/okian/prioritise/internal/domain/model"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// CohortStats reads the statistics of the loaded cohort.
type CohortStats interface {
	Stats(ctx context.Context) (model.Statistics, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	cohort        CohortStats
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(cohort CohortStats, statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{cohort: cohort, statsProvider: statsProvider}
}

type statsResponse struct {
	Cohort  *model.Statistics      `json:"cohort,omitempty"`
	Service map[string]interface{} `json:"service"`
}

// HandleStats handles GET /stats requests. Service counters are always
// returned; cohort statistics only once a snapshot is loaded.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := statsResponse{Service: map[string]interface{}{}}
	if h.statsProvider != nil {
		resp.Service = h.statsProvider.GetStats()
	}
	st, err := h.cohort.Stats(r.Context())
	switch {
	case err == nil:
		resp.Cohort = &st
	case errors.Is(err, service.ErrNotReady):
	default:
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
