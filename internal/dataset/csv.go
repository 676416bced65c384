// Package dataset loads the contact and campaign event tables from CSV exports.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

var (
	contactColumns = []string{"contact_id", "persona", "created_at"}
	eventColumns   = []string{"contact_id", "event_dt", "channel", "persona", "opened", "clicked", "unsubscribed"}
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadContacts parses a contacts CSV with a header row.
func LoadContacts(r io.Reader) ([]models.Contact, error) {
	rows, idx, err := readTable(r, contactColumns)
	if err != nil {
		return nil, fmt.Errorf("contacts: %w", err)
	}

	out := make([]models.Contact, 0, len(rows))
	for i, row := range rows {
		created, err := ParseTime(row[idx["created_at"]])
		if err != nil {
			return nil, fmt.Errorf("contacts line %d: created_at: %w", i+2, err)
		}
		out = append(out, models.Contact{
			ContactID: row[idx["contact_id"]],
			Persona:   row[idx["persona"]],
			CreatedAt: created,
		})
	}
	return out, nil
}

// LoadEvents parses a campaign events CSV with a header row.
func LoadEvents(r io.Reader) ([]models.Event, error) {
	rows, idx, err := readTable(r, eventColumns)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	out := make([]models.Event, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		at, err := ParseTime(row[idx["event_dt"]])
		if err != nil {
			return nil, fmt.Errorf("events line %d: event_dt: %w", line, err)
		}
		ev := models.Event{
			ContactID: row[idx["contact_id"]],
			EventDT:   at,
			Channel:   row[idx["channel"]],
			Persona:   row[idx["persona"]],
		}
		if col, ok := idx["event_id"]; ok {
			ev.EventID = row[col]
		}
		for _, f := range []struct {
			col string
			dst *int
		}{
			{"opened", &ev.Opened},
			{"clicked", &ev.Clicked},
			{"unsubscribed", &ev.Unsubscribed},
		} {
			v, err := parseIndicator(row[idx[f.col]])
			if err != nil {
				return nil, fmt.Errorf("events line %d: %s: %w", line, f.col, err)
			}
			*f.dst = v
		}
		out = append(out, ev)
	}
	return out, nil
}

// LoadContactsFile opens path and parses it with LoadContacts.
func LoadContactsFile(path string) ([]models.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadContacts(f)
}

// LoadEventsFile opens path and parses it with LoadEvents.
func LoadEventsFile(path string) ([]models.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadEvents(f)
}

// ParseTime accepts the timestamp layouts found in exports and API payloads.
// Values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func readTable(r io.Reader, required []string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, nil, err
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return rows, idx, nil
}

// parseIndicator reads 0/1 style flags. Other integers are kept as-is; whole floats
// such as "1.0" are accepted, fractional ones are rejected rather than truncated.
func parseIndicator(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("invalid indicator %q", s)
		}
		return int(f), nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return 0, fmt.Errorf("invalid indicator %q", s)
	}
	if b {
		return 1, nil
	}
	return 0, nil
}

// WriteInsights writes insights as CSV with a header row.
func WriteInsights(w io.Writer, insights []models.Insight) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"contact_id", "touches", "fatigue_flag", "engagement_score"}); err != nil {
		return err
	}
	for _, in := range insights {
		err := cw.Write([]string{
			in.ContactID,
			strconv.Itoa(in.Touches),
			strconv.FormatBool(in.FatigueFlag),
			strconv.FormatFloat(in.EngagementScore, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
