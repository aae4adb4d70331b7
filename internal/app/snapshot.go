package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/internal/domain/ranking"
	"github.com/okian/prioritise/internal/domain/types"
)

// Snapshot is an immutable scored cohort. Readers share it without locking.
type Snapshot struct {
	ID       string
	LoadedAt time.Time

	Clients    []model.Client
	Priorities []model.PriorityScore
	Stats      model.Statistics

	index  *ranking.Index
	byID   map[string]int
	byRank []int // cohort positions, score desc, ties in cohort order
}

func newSnapshot(id string, at time.Time, clients []model.Client, priorities []model.PriorityScore, st model.Statistics) *Snapshot {
	s := &Snapshot{
		ID:         id,
		LoadedAt:   at,
		Clients:    clients,
		Priorities: priorities,
		Stats:      st,
		index:      ranking.NewIndex(clients),
		byID:       make(map[string]int, len(clients)),
		byRank:     make([]int, len(clients)),
	}
	for i, c := range clients {
		if _, ok := s.byID[c.ID]; !ok {
			s.byID[c.ID] = i
		}
		s.byRank[i] = i
	}
	slices.SortStableFunc(s.byRank, func(a, b int) int {
		return cmp.Compare(priorities[b].Score, priorities[a].Score)
	})
	return s
}

// Size returns the number of clients in the cohort.
func (s *Snapshot) Size() int { return len(s.Clients) }

// top returns the first n entries of the priority list.
func (s *Snapshot) top(n int) []types.Entry {
	n = min(n, len(s.byRank))
	out := make([]types.Entry, n)
	for r, pos := range s.byRank[:n] {
		c := s.Clients[pos]
		out[r] = types.Entry{
			Rank:     r + 1,
			ClientID: c.ID,
			Name:     c.Name,
			Score:    s.Priorities[pos].Score,
			Tier:     s.Priorities[pos].Tier,
		}
	}
	return out
}

// Info summarises the snapshot for callers that only need its identity.
func (s *Snapshot) Info() types.SnapshotInfo {
	return types.SnapshotInfo{
		ID:           s.ID,
		LoadedAt:     s.LoadedAt,
		TotalClients: s.Size(),
		Stats:        s.Stats,
	}
}
