package analytics

import "github.com/PratikDhanave/campaign-analytics-service/internal/models"

const (
	openWeight   = 40.0
	clickWeight  = 70.0
	unsubPenalty = 100.0
)

type engagementAcc struct {
	rows         int
	opened       float64
	clicked      float64
	unsubscribed float64
}

// EngagementScore scores every contact active in the 28 days before the latest event:
// 40*open rate + 70*click rate - 100*unsub rate, floored at 0.
// There is no ceiling; a contact that always opens and clicks scores 110.
func EngagementScore(events []models.Event) []models.EngagementRecord {
	recent := trailing(events, EngagementWindowDays)
	if len(recent) == 0 {
		return []models.EngagementRecord{}
	}

	accs := make(map[string]*engagementAcc)
	for _, ev := range recent {
		a, ok := accs[ev.ContactID]
		if !ok {
			a = &engagementAcc{}
			accs[ev.ContactID] = a
		}
		a.rows++
		a.opened += float64(ev.Opened)
		a.clicked += float64(ev.Clicked)
		a.unsubscribed += float64(ev.Unsubscribed)
	}

	out := make([]models.EngagementRecord, 0, len(accs))
	for _, id := range sortedKeys(accs) {
		a := accs[id]
		n := float64(a.rows)
		score := openWeight*(a.opened/n) + clickWeight*(a.clicked/n) - unsubPenalty*(a.unsubscribed/n)
		if score < 0 {
			score = 0
		}
		out = append(out, models.EngagementRecord{ContactID: id, EngagementScore: score})
	}
	return out
}
