// Package stats aggregates tier counts and the mean score of a scored cohort.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/okian/prioritise/internal/domain/model"
)

// Aggregate summarises members. Every member must already carry a priority
// with a known tier; the first one that does not is reported as a
// *MissingPriorityError or *UnknownTierError and no partial statistics are
// returned. An empty cohort yields all zeros.
func Aggregate(members []model.ScoredClient) (model.Statistics, error) {
	var (
		s   model.Statistics
		sum decimal.Decimal
	)
	for i, m := range members {
		if m.Priority == nil {
			return model.Statistics{}, &MissingPriorityError{Index: i, ClientID: m.Client.ID}
		}
		switch m.Priority.Tier {
		case model.TierHigh:
			s.High++
		case model.TierMedium:
			s.Medium++
		case model.TierLow:
			s.Low++
		default:
			return model.Statistics{}, &UnknownTierError{Index: i, ClientID: m.Client.ID, Tier: string(m.Priority.Tier)}
		}
		sum = sum.Add(decimal.NewFromFloat(m.Priority.Score))
	}

	s.Total = len(members)
	if s.Total == 0 {
		return s, nil
	}
	s.AverageScore = sum.Div(decimal.NewFromInt(int64(s.Total))).Round(2).InexactFloat64()
	return s, nil
}

// FromPriorities aggregates bare priorities.
func FromPriorities(priorities []model.PriorityScore) (model.Statistics, error) {
	members := make([]model.ScoredClient, len(priorities))
	for i := range priorities {
		members[i].Priority = &priorities[i]
	}
	return Aggregate(members)
}
