// Package service loads, scores and ranks the client cohort and answers the
// read queries the HTTP API and CLI need.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/prioritise/internal/adapters/repository"
	"github.com/okian/prioritise/internal/adapters/worker"
	"github.com/okian/prioritise/internal/domain/explain"
	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/internal/domain/ranking"
	"github.com/okian/prioritise/internal/domain/scoring"
	"github.com/okian/prioritise/internal/domain/stats"
	"github.com/okian/prioritise/internal/domain/types"
	"github.com/okian/prioritise/pkg/logger"
	"github.com/okian/prioritise/pkg/metrics"
)

// Service owns the published cohort snapshot.
type Service struct {
	mu       sync.RWMutex
	reloadMu sync.Mutex

	// Core components
	source repository.Source
	scorer scoring.Scorer
	pool   *worker.Pool

	// Configuration
	scoreWorkers   int
	reloadInterval time.Duration

	// State
	snapshot atomic.Pointer[Snapshot]
	started  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scorer:       scoring.New(),
		scoreWorkers: runtime.NumCPU(),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the first snapshot and, when configured, begins periodic reloads.
// A failed initial load is returned and leaves the service stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting prioritisation service...")

	s.pool = worker.NewPool(s.scoreWorkers, worker.WithLogger(s.logger.Named("worker")))
	if _, err := s.reload(ctx); err != nil {
		return err
	}

	if s.reloadInterval > 0 {
		s.stopCh = make(chan struct{})
		s.startPeriodicReloads(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "prioritisation service started",
		logger.Int("scoreWorkers", s.scoreWorkers),
		logger.String("reloadInterval", s.reloadInterval.String()),
	)
	return nil
}

// Stop halts periodic reloads. The last snapshot stays readable.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.logger.Info(context.Background(), "stopping prioritisation service...")
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(context.Background(), "prioritisation service stopped")
}

func (s *Service) startPeriodicReloads(ctx context.Context) {
	stop := s.stopCh
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.reloadInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				if _, err := s.reload(ctx); err != nil {
					s.logger.Warn(ctx, "periodic reload failed, keeping previous snapshot", logger.Error(err))
				}
			}
		}
	}()
}

// Reload rebuilds the snapshot from the source and publishes it. On failure
// the previous snapshot stays in place.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	ready := s.pool != nil
	s.mu.RUnlock()
	if !ready {
		return nil, ErrNotReady
	}
	return s.reload(ctx)
}

// Refresh reloads the cohort and reports the published snapshot.
func (s *Service) Refresh(ctx context.Context) (types.SnapshotInfo, error) {
	snap, err := s.Reload(ctx)
	if err != nil {
		return types.SnapshotInfo{}, err
	}
	return snap.Info(), nil
}

func (s *Service) reload(ctx context.Context) (*Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	snap, err := s.build(ctx)
	if err != nil {
		metrics.RecordSnapshotError()
		metrics.RecordErrorByComponent("service", "reload")
		s.logger.Error(ctx, "snapshot reload failed", logger.Error(err))
		return nil, err
	}
	s.snapshot.Store(snap)

	tiers := map[string]int{
		string(model.TierHigh):   snap.Stats.High,
		string(model.TierMedium): snap.Stats.Medium,
		string(model.TierLow):    snap.Stats.Low,
	}
	metrics.UpdateCohort(snap.Size(), tiers, snap.Stats.AverageScore)
	metrics.RecordSnapshotReload(float64(time.Since(start).Microseconds())/1000.0, float64(snap.LoadedAt.Unix()))
	s.logger.Info(ctx, "snapshot published",
		logger.String("snapshot", snap.ID),
		logger.Int("clients", snap.Size()),
		logger.Int("high", snap.Stats.High),
		logger.Int("medium", snap.Stats.Medium),
		logger.Int("low", snap.Stats.Low),
		logger.String("averageScore", snap.Stats.FormattedAverage()),
	)
	return snap, nil
}

func (s *Service) build(ctx context.Context) (*Snapshot, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}
	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cohort: %w", err)
	}
	clients := model.NormalizeAll(records)

	priorities, err := s.pool.Score(ctx, clients, s.scorer)
	if err != nil {
		return nil, fmt.Errorf("score cohort: %w", err)
	}

	members := make([]model.ScoredClient, len(clients))
	for i := range clients {
		members[i] = model.ScoredClient{Client: clients[i], Priority: &priorities[i]}
	}
	st, err := stats.Aggregate(members)
	if err != nil {
		return nil, fmt.Errorf("aggregate cohort: %w", err)
	}
	return newSnapshot(uuid.NewString(), time.Now().UTC(), clients, priorities, st), nil
}

// Snapshot returns the published snapshot, or nil before the first load.
func (s *Service) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

func (s *Service) current() (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap, nil
}

// TopN returns the n highest priority clients, score desc with ties in
// cohort order.
func (s *Service) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return snap.top(n), nil
}

// Client returns the priority, rankings and explanation of one cohort member.
func (s *Service) Client(_ context.Context, id string) (types.ClientDetail, error) {
	snap, err := s.current()
	if err != nil {
		return types.ClientDetail{}, err
	}
	rk, err := snap.index.Rank(id)
	if err != nil {
		if errors.Is(err, ranking.ErrClientNotFound) {
			metrics.RecordRankLookup("not_found")
		}
		return types.ClientDetail{}, err
	}
	metrics.RecordRankLookup("found")

	pos := snap.byID[id]
	c, ps := snap.Clients[pos], snap.Priorities[pos]
	return types.ClientDetail{
		Client:      c,
		Priority:    ps,
		Rankings:    rk,
		Explanation: explain.Explain(c, ps, &rk),
	}, nil
}

// Stats returns the tier counts and mean score of the current cohort.
func (s *Service) Stats(_ context.Context) (model.Statistics, error) {
	snap, err := s.current()
	if err != nil {
		return model.Statistics{}, err
	}
	return snap.Stats, nil
}

// ScoreRecord scores a record that is not part of the cohort. The result
// carries no rankings.
func (s *Service) ScoreRecord(_ context.Context, rec model.ClientRecord) types.ScoreResult {
	c := rec.Normalize()
	ps := s.scorer.Score(c)
	return types.ScoreResult{
		Client:      c,
		Priority:    ps,
		Explanation: explain.Explain(c, ps, nil),
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started":          s.started,
		"scoreWorkers":     s.scoreWorkers,
		"reloadIntervalMs": s.reloadInterval.Milliseconds(),
	}
	if snap := s.snapshot.Load(); snap != nil {
		out["snapshotId"] = snap.ID
		out["loadedAt"] = snap.LoadedAt.Format(time.RFC3339)
		out["totalClients"] = snap.Size()
	}
	return out
}
