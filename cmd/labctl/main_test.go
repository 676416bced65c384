package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PratikDhanave/campaign-analytics-service/internal/analytics"
	"github.com/PratikDhanave/campaign-analytics-service/internal/brief"
	"github.com/PratikDhanave/campaign-analytics-service/internal/cache"
	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

type recordingStore struct {
	contacts   []models.Contact
	events     []models.Event
	duplicates bool
	err        error
}

func (s *recordingStore) UpsertContact(_ context.Context, _ string, c models.Contact) error {
	s.contacts = append(s.contacts, c)
	return s.err
}

func (s *recordingStore) InsertEvents(_ context.Context, _ string, events []models.Event) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.duplicates {
		return 0, nil
	}
	s.events = append(s.events, events...)
	return len(events), nil
}

// countingCache records version bumps per key.
type countingCache struct {
	cache.Nop
	incrs map[string]int64
}

func (c *countingCache) Incr(_ context.Context, key string) (int64, error) {
	if c.incrs == nil {
		c.incrs = map[string]int64{}
	}
	c.incrs[key]++
	return c.incrs[key], nil
}

func TestSeed_AssignsStableEventIDs(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ContactID: "C1", EventDT: at, Channel: "email"},
		{ContactID: "C1", EventDT: at, Channel: "email"},
		{EventID: "given", ContactID: "C2", EventDT: at, Channel: "ads"},
	}

	first := &recordingStore{}
	n, err := seed(context.Background(), first, cache.Nop{}, "tenant1", []models.Contact{{ContactID: "C1", Persona: "Analyst"}}, events)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, first.contacts, 1)

	second := &recordingStore{}
	_, err = seed(context.Background(), second, cache.Nop{}, "tenant1", nil, events)
	require.NoError(t, err)

	assert.Equal(t, first.events[0].EventID, second.events[0].EventID)
	assert.NotEqual(t, first.events[0].EventID, first.events[1].EventID, "identical rows stay distinct")
	assert.Equal(t, "given", first.events[2].EventID)
	assert.Empty(t, events[0].EventID, "input is not modified")
}

func TestSeed_InvalidatesCachedKPIsWhenRowsAdded(t *testing.T) {
	events := []models.Event{{ContactID: "C1", EventDT: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}}
	c := &countingCache{}

	_, err := seed(context.Background(), &recordingStore{}, c, "tenant1", nil, events)
	require.NoError(t, err)
	assert.Len(t, c.incrs, 1)

	_, err = seed(context.Background(), &recordingStore{duplicates: true}, c, "tenant2", nil, events)
	require.NoError(t, err)
	assert.Len(t, c.incrs, 1, "nothing inserted, nothing invalidated")
}

func TestSeed_PropagatesStoreError(t *testing.T) {
	st := &recordingStore{err: errors.New("boom")}

	_, err := seed(context.Background(), st, cache.Nop{}, "tenant1", nil, []models.Event{{ContactID: "C1"}})

	assert.ErrorContains(t, err, "boom")
}

func TestBuildFilter(t *testing.T) {
	f, err := buildFilter([]string{"Analyst"}, nil, "2025-03-01", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"Analyst"}, f.Personas)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999999999, time.UTC), *f.To)

	f, err = buildFilter(nil, nil, "", "2025-03-10T12:00:00Z")
	require.NoError(t, err)
	assert.Nil(t, f.From)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), *f.To)

	_, err = buildFilter(nil, nil, "2025-03-11", "2025-03-10")
	assert.Error(t, err)

	_, err = buildFilter(nil, nil, "last week", "")
	assert.Error(t, err)
}

func TestRenderOfflineBrief(t *testing.T) {
	latest := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ContactID: "C1", EventDT: latest, Persona: "Analyst", Opened: 1, Clicked: 1},
		{ContactID: "C2", EventDT: latest.Add(-time.Hour), Persona: "Ops Leader"},
	}
	exp := brief.NewExporter(nil, zap.NewNop())

	doc := renderOfflineBrief(events, analytics.Filter{Personas: []string{"Ops Leader"}}, false, 0.08, brief.FormatMarkdown, exp)

	md := string(doc.Data)
	assert.Equal(t, brief.FormatMarkdown, doc.Format)
	assert.True(t, strings.Contains(md, "2025-03-31"), "dated by the whole table")
	assert.Contains(t, md, "- Sends: 1")
	assert.Contains(t, md, "- Open Rate: 0.0%")
}

func TestRenderOfflineBrief_PDFUnavailableFallsBack(t *testing.T) {
	exp := brief.NewExporter(nil, zap.NewNop())

	doc := renderOfflineBrief(nil, analytics.Filter{}, true, 0.08, brief.FormatPDF, exp)

	assert.Equal(t, brief.FormatMarkdown, doc.Format)
	assert.Contains(t, string(doc.Data), "n/a")
}

type fakeTenants []string

func (f fakeTenants) ListTenants(context.Context) ([]string, error) {
	return f, nil
}

type fakeBriefer struct {
	fail map[string]bool
}

func (b fakeBriefer) Brief(_ context.Context, tenantID string, _ analytics.Filter, _ bool, _ brief.Format) (brief.Document, error) {
	if b.fail[tenantID] {
		return brief.Document{}, errors.New("no data")
	}
	return brief.Document{Format: brief.FormatMarkdown, Data: []byte("# " + tenantID), Filename: "executive_brief.md"}, nil
}

func TestBriefJob_WritesOneFilePerTenant(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	job := &briefJob{
		tenants: fakeTenants{"tenant1", "tenant2", "tenant3"},
		briefs:  fakeBriefer{fail: map[string]bool{"tenant2": true}},
		dir:     dir,
		format:  brief.FormatMarkdown,
		now:     func() time.Time { return time.Date(2025, 4, 7, 8, 0, 0, 0, time.UTC) },
		log:     zap.NewNop(),
	}

	written, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "tenant1_20250407.md"),
		filepath.Join(dir, "tenant3_20250407.md"),
	}, written)

	data, err := os.ReadFile(written[1])
	require.NoError(t, err)
	assert.Equal(t, "# tenant3", string(data))
}

func TestDefaultDatasetPaths(t *testing.T) {
	assert.Equal(t, "data/synthetic_contacts.csv", seedCmd.Flags().Lookup("contacts").DefValue)
	assert.Equal(t, "data/synthetic_campaign_events.csv", seedCmd.Flags().Lookup("events").DefValue)
	assert.Equal(t, "data/synthetic_campaign_events.csv", briefCmd.Flags().Lookup("events").DefValue)
}
