package analytics

import (
	"sort"
	"time"

	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

// Filter narrows an event table. Empty persona or channel sets match everything;
// From and To are both inclusive.
type Filter struct {
	Personas []string
	Channels []string
	From     *time.Time
	To       *time.Time
}

// Empty reports whether f matches every event.
func (f Filter) Empty() bool {
	return len(f.Personas) == 0 && len(f.Channels) == 0 && f.From == nil && f.To == nil
}

// Apply returns the events matching f. events is not modified.
func (f Filter) Apply(events []models.Event) []models.Event {
	personas := toSet(f.Personas)
	channels := toSet(f.Channels)

	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if personas != nil {
			if _, ok := personas[ev.Persona]; !ok {
				continue
			}
		}
		if channels != nil {
			if _, ok := channels[ev.Channel]; !ok {
				continue
			}
		}
		if f.From != nil && ev.EventDT.Before(*f.From) {
			continue
		}
		if f.To != nil && ev.EventDT.After(*f.To) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Personas lists the distinct contact personas, sorted.
func Personas(contacts []models.Contact) []string {
	vals := make([]string, 0, len(contacts))
	for _, c := range contacts {
		vals = append(vals, c.Persona)
	}
	return distinct(vals)
}

// Channels lists the distinct event channels, sorted.
func Channels(events []models.Event) []string {
	vals := make([]string, 0, len(events))
	for _, ev := range events {
		vals = append(vals, ev.Channel)
	}
	return distinct(vals)
}

func toSet(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

func distinct(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0)
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
