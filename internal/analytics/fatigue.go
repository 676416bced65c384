package analytics

import "github.com/PratikDhanave/campaign-analytics-service/internal/models"

// ComputeFatigue counts each contact's touches in the windowDays before the latest
// event of the table and flags contacts with more than threshold touches.
// The window start is inclusive. Contacts without events in the window are absent.
func ComputeFatigue(events []models.Event, windowDays, threshold int) []models.FatigueRecord {
	recent := trailing(events, windowDays)
	if len(recent) == 0 {
		return []models.FatigueRecord{}
	}

	touches := make(map[string]int)
	for _, ev := range recent {
		touches[ev.ContactID]++
	}

	out := make([]models.FatigueRecord, 0, len(touches))
	for _, id := range sortedKeys(touches) {
		n := touches[id]
		out = append(out, models.FatigueRecord{
			ContactID:   id,
			Touches:     n,
			FatigueFlag: n > threshold,
		})
	}
	return out
}
