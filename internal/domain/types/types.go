// Package types contains the read views shared by the service and HTTP layers.
package types

import (
	"time"

	"github.com/okian/prioritise/internal/domain/model"
)

// Entry is one row of the priority list.
type Entry struct {
	Rank     int        `json:"rank"`
	ClientID string     `json:"client_id"`
	Name     string     `json:"name,omitempty"`
	Score    float64    `json:"score"`
	Tier     model.Tier `json:"tier"`
}

// ClientDetail is everything known about one client in the current cohort.
type ClientDetail struct {
	Client      model.Client        `json:"client"`
	Priority    model.PriorityScore `json:"priority"`
	Rankings    model.Rankings      `json:"rankings"`
	Explanation model.Explanation   `json:"explanation"`
}

// ScoreResult is an ad-hoc score for a record outside the cohort.
type ScoreResult struct {
	Client      model.Client        `json:"client"`
	Priority    model.PriorityScore `json:"priority"`
	Explanation model.Explanation   `json:"explanation"`
}

// SnapshotInfo identifies a published cohort snapshot.
type SnapshotInfo struct {
	ID           string           `json:"snapshot_id"`
	LoadedAt     time.Time        `json:"loaded_at"`
	TotalClients int              `json:"total_clients"`
	Stats        model.Statistics `json:"stats"`
}
