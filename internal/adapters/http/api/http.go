// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/prioritise/internal/app"
	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/internal/domain/ranking"
	"github.com/okian/prioritise/internal/domain/types"
)

// Default limits.
const (
	defaultListLimit = 50
	defaultMaxLimit  = 500
	maxBodyBytes     = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TopN(ctx context.Context, n int) ([]types.Entry, error)
	Client(ctx context.Context, id string) (types.ClientDetail, error)
	Stats(ctx context.Context) (model.Statistics, error)
	ScoreRecord(ctx context.Context, rec model.ClientRecord) types.ScoreResult
	Refresh(ctx context.Context) (types.SnapshotInfo, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	clientsHandler *ClientsHandler
	scoreHandler   *ScoreHandler
	reloadHandler  *ReloadHandler
}

// Option configures a Server.
type Option func(*options)

type options struct {
	maxLimit int
}

// WithMaxListLimit caps the limit accepted by GET /clients.
func WithMaxListLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps, statsProvider),
		clientsHandler: NewClientsHandler(deps, o.maxLimit),
		scoreHandler:   NewScoreHandler(deps),
		reloadHandler:  NewReloadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/clients", MetricsMiddleware(s.clientsHandler.HandleList, "clients"))
	mux.HandleFunc("/clients/", MetricsMiddleware(s.clientsHandler.HandleGet, "client"))
	mux.HandleFunc("/score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
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

// writeServiceError maps service and engine errors to a status and code.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, ErrLimitExceeded):
		writeError(w, http.StatusBadRequest, "limit_exceeded", Wrap(op, err))
	case errors.Is(err, ranking.ErrClientNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrNotReady), errors.Is(err, ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
