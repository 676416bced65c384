package analytics

import "github.com/PratikDhanave/campaign-analytics-service/internal/models"

// MergeInsights outer-joins fatigue and engagement records on contact id.
// Missing touches and scores become 0 and a missing flag becomes false.
func MergeInsights(fatigue []models.FatigueRecord, engagement []models.EngagementRecord) []models.Insight {
	byID := make(map[string]*models.Insight, len(fatigue)+len(engagement))
	get := func(id string) *models.Insight {
		in, ok := byID[id]
		if !ok {
			in = &models.Insight{ContactID: id}
			byID[id] = in
		}
		return in
	}
	for _, f := range fatigue {
		in := get(f.ContactID)
		in.Touches = f.Touches
		in.FatigueFlag = f.FatigueFlag
	}
	for _, e := range engagement {
		get(e.ContactID).EngagementScore = e.EngagementScore
	}

	out := make([]models.Insight, 0, len(byID))
	for _, id := range sortedKeys(byID) {
		out = append(out, *byID[id])
	}
	return out
}

// FatiguedSegment keeps the flagged contacts.
func FatiguedSegment(insights []models.Insight) []models.Insight {
	out := make([]models.Insight, 0)
	for _, in := range insights {
		if in.FatigueFlag {
			out = append(out, in)
		}
	}
	return out
}

// HighEngagementSegment keeps contacts scoring at least minScore.
func HighEngagementSegment(insights []models.Insight, minScore float64) []models.Insight {
	out := make([]models.Insight, 0)
	for _, in := range insights {
		if in.EngagementScore >= minScore {
			out = append(out, in)
		}
	}
	return out
}
