// Package ranking computes a client's ordinal position within a cohort on
// each scored metric.
//
// Ordering: metric DESC, ties keep the cohort's input order (stable). Ranks
// are 1-based and distinct, so for N clients every rank 1..N is used exactly
// once per metric.
package ranking

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/prioritise/internal/domain/model"
)

// Metric selects the value a ranking orders by.
type Metric int

// Ranked metrics.
const (
	MetricAUA Metric = iota
	MetricFees
	MetricEngagement
)

func (m Metric) value(c model.Client) float64 {
	switch m {
	case MetricAUA:
		return c.AUA
	case MetricFees:
		return c.Fees
	case MetricEngagement:
		return c.Engagement()
	default:
		return 0
	}
}

// String returns the metric name.
func (m Metric) String() string {
	switch m {
	case MetricAUA:
		return "aua"
	case MetricFees:
		return "fees"
	case MetricEngagement:
		return "engagement"
	default:
		return "unknown"
	}
}

var metrics = [...]Metric{MetricAUA, MetricFees, MetricEngagement}

// Rank returns client's rankings within cohort. The cohort must contain the
// client's identifier; otherwise ErrClientNotFound is returned.
//
// Each call sorts the cohort afresh. Callers ranking many clients against
// the same snapshot should build an Index once instead.
func Rank(client model.Client, cohort []model.Client) (model.Rankings, error) {
	pos := slices.IndexFunc(cohort, func(c model.Client) bool { return c.ID == client.ID })
	if pos < 0 {
		return model.Rankings{}, fmt.Errorf("rank %q: %w", client.ID, ErrClientNotFound)
	}

	var ranks [len(metrics)]int
	for i, m := range metrics {
		order := sortedPositions(cohort, m)
		ranks[i] = slices.Index(order, pos) + 1
	}
	return model.Rankings{
		AUA:          ranks[MetricAUA],
		Fees:         ranks[MetricFees],
		Engagement:   ranks[MetricEngagement],
		TotalClients: len(cohort),
	}, nil
}

// Index holds the three metric orderings of one cohort snapshot. It is
// immutable after construction and safe for concurrent use.
type Index struct {
	size  int
	first map[string]int // id -> position of first occurrence
	ranks [len(metrics)][]int
}

// NewIndex sorts cohort once per metric. The cohort slice is not retained.
func NewIndex(cohort []model.Client) *Index {
	idx := &Index{
		size:  len(cohort),
		first: make(map[string]int, len(cohort)),
	}
	for i, c := range cohort {
		if _, ok := idx.first[c.ID]; !ok {
			idx.first[c.ID] = i
		}
	}
	for i, m := range metrics {
		order := sortedPositions(cohort, m)
		ranks := make([]int, len(cohort))
		for r, p := range order {
			ranks[p] = r + 1
		}
		idx.ranks[i] = ranks
	}
	return idx
}

// Size returns the number of clients in the indexed cohort.
func (x *Index) Size() int { return x.size }

// Rank returns the rankings for id, matching Rank on the same cohort.
func (x *Index) Rank(id string) (model.Rankings, error) {
	pos, ok := x.first[id]
	if !ok {
		return model.Rankings{}, fmt.Errorf("rank %q: %w", id, ErrClientNotFound)
	}
	return model.Rankings{
		AUA:          x.ranks[MetricAUA][pos],
		Fees:         x.ranks[MetricFees][pos],
		Engagement:   x.ranks[MetricEngagement][pos],
		TotalClients: x.size,
	}, nil
}

// Order returns cohort positions sorted by m, best first.
func (x *Index) Order(m Metric) []int {
	if m < 0 || int(m) >= len(x.ranks) {
		return nil
	}
	ranks := x.ranks[m]
	out := make([]int, len(ranks))
	for p, r := range ranks {
		out[r-1] = p
	}
	return out
}

// sortedPositions returns cohort positions ordered by m descending.
func sortedPositions(cohort []model.Client, m Metric) []int {
	order := make([]int, len(cohort))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(m.value(cohort[b]), m.value(cohort[a]))
	})
	return order
}
