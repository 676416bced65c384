// Package analytics computes campaign engagement metrics over in-memory event tables.
//
// Every function here is pure: inputs are never modified, no I/O is performed and
// empty input yields an empty (or undefined) result rather than an error.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

const (
	DefaultFatigueWindowDays = 7
	DefaultFatigueThreshold  = 4
	EngagementWindowDays     = 28
	DefaultUplift            = 0.08
	DefaultSubjectLineCount  = 6
	HighEngagementScore      = 60.0
)

const day = 24 * time.Hour

// LatestEventTime returns the maximum EventDT of events, or false when events is empty.
func LatestEventTime(events []models.Event) (time.Time, bool) {
	if len(events) == 0 {
		return time.Time{}, false
	}
	latest := events[0].EventDT
	for _, ev := range events[1:] {
		if ev.EventDT.After(latest) {
			latest = ev.EventDT
		}
	}
	return latest, true
}

// trailing returns the events at or after max(EventDT) minus days.
func trailing(events []models.Event, days int) []models.Event {
	latest, ok := LatestEventTime(events)
	if !ok {
		return nil
	}
	start := latest.Add(-time.Duration(days) * day)
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if !ev.EventDT.Before(start) {
			out = append(out, ev)
		}
	}
	return out
}

// round4 rounds to 4 decimal places.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
