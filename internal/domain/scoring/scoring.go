// Package scoring computes a bounded priority score, tier and breakdown from
// a client's account metrics.
package scoring

import (
	"math"

	"github.com/okian/prioritise/internal/domain/model"
)

// Component caps.
const (
	MaxAUAPoints        = 50
	MaxFeesPoints       = 30
	MaxEngagementPoints = 20
	MaxScore            = MaxAUAPoints + MaxFeesPoints + MaxEngagementPoints
)

// Tier cutoffs on the final rounded score.
const (
	HighTierMin   = 75
	MediumTierMin = 60
)

// step maps a lower bound (inclusive) to the points awarded at or above it.
type step struct {
	min    float64
	points float64
}

// Steps are ordered from the highest bound down.
var (
	auaSteps = []step{
		{min: 600_000, points: 50},
		{min: 400_000, points: 40},
		{min: 250_000, points: 30},
		{min: 150_000, points: 20},
		{min: 75_000, points: 10},
	}
	feeSteps = []step{
		{min: 10_000, points: 30},
		{min: 7_500, points: 24},
		{min: 5_000, points: 18},
		{min: 2_500, points: 12},
		{min: 1_000, points: 6},
	}
)

// Tail ramps below the lowest step.
const (
	auaTailDivisor = 7_500
	auaTailCap     = 5
	feeTailDivisor = 200
	feeTailCap     = 3

	loginsDivisor   = 18
	loginsCap       = 10
	meetingsDivisor = 5
	meetingsCap     = 10
)

// Scorer computes a priority for a single client.
type Scorer interface {
	// Score never fails; inputs are already coerced.
	Score(c model.Client) model.PriorityScore
}

// Rules is the fixed rule-set scorer. The zero value is ready to use.
type Rules struct{}

// New returns the rule-set scorer.
func New() Rules { return Rules{} }

// Score implements Scorer.
func (Rules) Score(c model.Client) model.PriorityScore {
	return Score(c)
}

// Score computes the priority for c.
func Score(c model.Client) model.PriorityScore {
	b := model.Breakdown{
		AUA:        AUAPoints(c.AUA),
		Fees:       FeesPoints(c.Fees),
		Engagement: EngagementPoints(c.Logins, c.Meetings),
	}
	score := b.Total()
	return model.PriorityScore{
		Score:     score,
		Tier:      TierFor(score),
		Breakdown: b,
	}
}

// AUAPoints returns the assets-under-advice component (0..50).
func AUAPoints(aua float64) float64 {
	return stepped(aua, auaSteps, auaTailDivisor, auaTailCap)
}

// FeesPoints returns the fees component (0..30).
func FeesPoints(fees float64) float64 {
	return stepped(fees, feeSteps, feeTailDivisor, feeTailCap)
}

// EngagementPoints returns the engagement component (0..20). Logins and
// meetings are capped independently.
func EngagementPoints(logins, meetings float64) float64 {
	return math.Min(clean(logins)/loginsDivisor, loginsCap) +
		math.Min(clean(meetings)/meetingsDivisor, meetingsCap)
}

// TierFor buckets a final rounded score.
func TierFor(score float64) model.Tier {
	switch {
	case score >= HighTierMin:
		return model.TierHigh
	case score >= MediumTierMin:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

func stepped(v float64, steps []step, tailDivisor, tailCap float64) float64 {
	v = clean(v)
	for _, s := range steps {
		if v >= s.min {
			return s.points
		}
	}
	return math.Min(v/tailDivisor, tailCap)
}

// clean guards callers that build a Client by hand instead of via Normalize.
func clean(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}
