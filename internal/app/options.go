package service

import (
	"time"

	"github.com/okian/prioritise/internal/adapters/repository"
	"github.com/okian/prioritise/internal/domain/scoring"
	"github.com/okian/prioritise/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where the cohort is loaded from.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithScorer replaces the scoring rules.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithScoreWorkers sets the number of goroutines scoring a cohort.
func WithScoreWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.scoreWorkers = count
		}
	}
}

// WithReloadInterval enables periodic reloads. Zero disables them.
func WithReloadInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval >= 0 {
			s.reloadInterval = interval
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
