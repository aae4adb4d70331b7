package model

import "github.com/shopspring/decimal"

// Tier is the coarse bucket derived from a priority score.
type Tier string

// Tiers, highest first.
const (
	TierHigh   Tier = "High"
	TierMedium Tier = "Medium"
	TierLow    Tier = "Low"
)

// Tiers lists every tier in descending order.
var Tiers = []Tier{TierHigh, TierMedium, TierLow}

// Breakdown holds the three component contributions to a score.
type Breakdown struct {
	AUA        float64 `json:"aua"`
	Fees       float64 `json:"fees"`
	Engagement float64 `json:"engagement"`
}

// Total sums the components and rounds half-up to the hundredths.
func (b Breakdown) Total() float64 {
	return Round2(b.AUA + b.Fees + b.Engagement)
}

// PriorityScore is the scorer output for one client.
type PriorityScore struct {
	Score     float64   `json:"score"`
	Tier      Tier      `json:"tier"`
	Breakdown Breakdown `json:"breakdown"`
}

// Rankings are 1-based ordinal positions within one cohort snapshot. They are
// meaningless against any other cohort.
type Rankings struct {
	AUA          int `json:"auaRank"`
	Fees         int `json:"feesRank"`
	Engagement   int `json:"engagementRank"`
	TotalClients int `json:"totalClients"`
}

// ScoredClient pairs a client with its computed priority. Priority is nil
// until the scorer has run.
type ScoredClient struct {
	Client   Client         `json:"client"`
	Priority *PriorityScore `json:"priority,omitempty"`
}

// Statistics summarises a scored cohort.
type Statistics struct {
	High         int     `json:"high"`
	Medium       int     `json:"medium"`
	Low          int     `json:"low"`
	Total        int     `json:"total"`
	AverageScore float64 `json:"averageScore"`
}

// FormattedAverage renders the mean score with exactly two decimals.
func (s Statistics) FormattedAverage() string {
	return decimal.NewFromFloat(s.AverageScore).StringFixed(2)
}

// Count returns the member count for tier t.
func (s Statistics) Count(t Tier) int {
	switch t {
	case TierHigh:
		return s.High
	case TierMedium:
		return s.Medium
	case TierLow:
		return s.Low
	default:
		return 0
	}
}

// Factor is one line of an explanation.
type Factor struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Value     string  `json:"value"`
	Points    float64 `json:"points"`
	MaxPoints float64 `json:"maxPoints"`
	Rank      *int    `json:"rank,omitempty"`
}

// Explanation is the display-ready reshaping of a client's score.
type Explanation struct {
	ClientID     string   `json:"clientId"`
	Score        float64  `json:"score"`
	Tier         Tier     `json:"tier"`
	Factors      []Factor `json:"factors"`
	TotalClients *int     `json:"totalClients,omitempty"`
}

// Round2 rounds half-up at the hundredths digit. Decimal arithmetic keeps
// values such as 1.005 from drifting below the midpoint.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
