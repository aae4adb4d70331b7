// Package explain reshapes a computed score into a display-ready factor list.
package explain

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/internal/domain/scoring"
)

// Factor keys, in presentation order.
const (
	FactorAUA        = "aua"
	FactorFees       = "fees"
	FactorEngagement = "engagement"
)

const amountFormat = "#,###.##"

// Explain builds the explanation for client. rankings may be nil, in which
// case factor ranks are omitted. Nothing is recomputed here.
func Explain(client model.Client, priority model.PriorityScore, rankings *model.Rankings) model.Explanation {
	factors := []model.Factor{
		{
			Key:       FactorAUA,
			Label:     "Assets Under Advice",
			Value:     humanize.FormatFloat(amountFormat, client.AUA),
			Points:    priority.Breakdown.AUA,
			MaxPoints: scoring.MaxAUAPoints,
		},
		{
			Key:       FactorFees,
			Label:     "Fees Paid",
			Value:     humanize.FormatFloat(amountFormat, client.Fees),
			Points:    priority.Breakdown.Fees,
			MaxPoints: scoring.MaxFeesPoints,
		},
		{
			Key:       FactorEngagement,
			Label:     "Engagement",
			Value:     engagementValue(client),
			Points:    priority.Breakdown.Engagement,
			MaxPoints: scoring.MaxEngagementPoints,
		},
	}

	e := model.Explanation{
		ClientID: client.ID,
		Score:    priority.Score,
		Tier:     priority.Tier,
		Factors:  factors,
	}
	if rankings != nil {
		aua, fees, eng, total := rankings.AUA, rankings.Fees, rankings.Engagement, rankings.TotalClients
		e.Factors[0].Rank = &aua
		e.Factors[1].Rank = &fees
		e.Factors[2].Rank = &eng
		e.TotalClients = &total
	}
	return e
}

func engagementValue(c model.Client) string {
	return fmt.Sprintf("%s logins, %s meetings", humanize.Commaf(c.Logins), humanize.Commaf(c.Meetings))
}
