// Package worker scores client cohorts in parallel.
package worker

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/internal/domain/scoring"
	"github.com/okian/prioritise/pkg/logger"
	"github.com/okian/prioritise/pkg/metrics"
)

// defaultChunkSize keeps per-task overhead small relative to scoring cost.
const defaultChunkSize = 256

// Pool scores cohorts with a bounded number of goroutines.
type Pool struct {
	workers   int
	chunkSize int
	name      string
	logger    logger.Logger
}

// NewPool creates a pool. A non-positive worker count uses runtime.NumCPU().
func NewPool(workers int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		workers:   workers,
		chunkSize: defaultChunkSize,
		name:      "worker",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	metrics.UpdateScoreWorkers(workers)
	return p
}

// Workers returns the configured parallelism.
func (p *Pool) Workers() int { return p.workers }

// Score computes a priority for every client. The result is index-aligned with
// clients. Scoring stops early only when ctx is done.
func (p *Pool) Score(ctx context.Context, clients []model.Client, scorer scoring.Scorer) ([]model.PriorityScore, error) {
	start := time.Now()
	out := make([]model.PriorityScore, len(clients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for lo := 0; lo < len(clients); lo += p.chunkSize {
		hi := min(lo+p.chunkSize, len(clients))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				out[i] = scorer.Score(clients[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordScoringError()
		metrics.RecordErrorByComponent("worker", "cancelled")
		p.logger.Warn(ctx, "cohort scoring aborted", logger.Int("clients", len(clients)), logger.Error(err))
		return nil, err
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.RecordScoringLatency(elapsed)
	tiers := make(map[string]int, len(model.Tiers))
	for _, ps := range out {
		tiers[string(ps.Tier)]++
	}
	metrics.RecordClientsScored(tiers)
	p.logger.Debug(ctx, "cohort scored",
		logger.Int("clients", len(clients)),
		logger.Int("workers", p.workers),
		logger.Float64("elapsed_ms", elapsed))
	return out, nil
}

// ScoreCohort scores clients on a pool of the given size.
func ScoreCohort(ctx context.Context, clients []model.Client, scorer scoring.Scorer, workers int) ([]model.PriorityScore, error) {
	return NewPool(workers).Score(ctx, clients, scorer)
}
