package analytics

import "github.com/PratikDhanave/campaign-analytics-service/internal/models"

// ComputeKPIs reduces an already filtered event table to a KPISnapshot.
// An empty table leaves every field nil. CTOR is 0 when no event was opened.
func ComputeKPIs(events []models.Event) models.KPISnapshot {
	if len(events) == 0 {
		return models.KPISnapshot{}
	}

	var opened, clicked, unsubscribed float64
	var openedRows, clickedWhenOpened float64
	for _, ev := range events {
		opened += float64(ev.Opened)
		clicked += float64(ev.Clicked)
		unsubscribed += float64(ev.Unsubscribed)
		if ev.Opened == 1 {
			openedRows++
			clickedWhenOpened += float64(ev.Clicked)
		}
	}

	n := float64(len(events))
	ctor := 0.0
	if openedRows > 0 {
		ctor = clickedWhenOpened / openedRows
	}

	sends := int64(len(events))
	return models.KPISnapshot{
		Sends:     &sends,
		OpenRate:  ptr(round4(opened / n)),
		CTR:       ptr(round4(clicked / n)),
		CTOR:      ptr(round4(ctor)),
		UnsubRate: ptr(round4(unsubscribed / n)),
	}
}

func ptr[T any](v T) *T {
	return &v
}
