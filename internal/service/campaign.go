package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/PratikDhanave/campaign-analytics-service/internal/analytics"
	"github.com/PratikDhanave/campaign-analytics-service/internal/brief"
	"github.com/PratikDhanave/campaign-analytics-service/internal/cache"
	"github.com/PratikDhanave/campaign-analytics-service/internal/metrics"
	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

// Options carries the analytics tunables.
type Options struct {
	FatigueWindowDays int
	FatigueThreshold  int
	Uplift            float64
	AIEnabled         bool
	SubjectLineCount  int
	KPICacheTTL       time.Duration
}

// DefaultOptions mirrors the analytics defaults.
func DefaultOptions() Options {
	return Options{
		FatigueWindowDays: analytics.DefaultFatigueWindowDays,
		FatigueThreshold:  analytics.DefaultFatigueThreshold,
		Uplift:            analytics.DefaultUplift,
		AIEnabled:         true,
		SubjectLineCount:  analytics.DefaultSubjectLineCount,
		KPICacheTTL:       30 * time.Second,
	}
}

// SegmentKind names a downloadable contact segment.
type SegmentKind string

const (
	SegmentFatigued       SegmentKind = "fatigued"
	SegmentHighEngagement SegmentKind = "high-engagement"
)

// CampaignService loads tenant event tables and runs the analytics core over them.
type CampaignService struct {
	store    Store
	cache    cache.Cache
	exporter *brief.Exporter
	opts     Options
	log      *zap.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(st Store, c cache.Cache, exp *brief.Exporter, opts Options, log *zap.Logger) *CampaignService {
	if c == nil {
		c = cache.Nop{}
	}
	return &CampaignService{
		store:    st,
		cache:    c,
		exporter: exp,
		opts:     opts,
		log:      log,
	}
}

// AIEnabledByDefault reports whether uplift applies when a request does not say.
func (s *CampaignService) AIEnabledByDefault() bool {
	return s.opts.AIEnabled
}

// SubjectLineCount is the default number of suggestions.
func (s *CampaignService) SubjectLineCount() int {
	return s.opts.SubjectLineCount
}

// IngestEvent stores a campaign event; inserted is false for a duplicate event id.
func (s *CampaignService) IngestEvent(ctx context.Context, tenantID string, ev models.Event) (bool, error) {
	inserted, err := s.store.InsertEvent(ctx, tenantID, ev)
	if err != nil {
		return false, fmt.Errorf("failed to insert event: %w", err)
	}
	outcome := "inserted"
	if !inserted {
		outcome = "duplicate"
	}
	metrics.EventsIngested.WithLabelValues(outcome).Inc()

	if inserted {
		if err := InvalidateKPIs(ctx, s.cache, tenantID); err != nil {
			metrics.KPICache.WithLabelValues("error").Inc()
			s.log.Warn("KPI cache invalidation failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}
	return inserted, nil
}

// UpsertContact stores a contact record.
func (s *CampaignService) UpsertContact(ctx context.Context, tenantID string, c models.Contact) error {
	if err := s.store.UpsertContact(ctx, tenantID, c); err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

// KPIs returns the aggregate snapshot of the filtered events. Snapshots are cached per
// tenant data version, so any inserted event makes earlier snapshots unreachable.
func (s *CampaignService) KPIs(ctx context.Context, tenantID string, f analytics.Filter) (models.KPISnapshot, error) {
	version, err := s.kpiVersion(ctx, tenantID)
	if err != nil {
		metrics.KPICache.WithLabelValues("error").Inc()
		s.log.Warn("KPI cache version lookup failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return s.computeKPIs(ctx, tenantID, f)
	}
	key := kpiCacheKey(tenantID, version, f)

	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		metrics.KPICache.WithLabelValues("error").Inc()
		s.log.Warn("KPI cache lookup failed", zap.String("tenant_id", tenantID), zap.Error(err))
	} else if ok {
		var k models.KPISnapshot
		if err := json.Unmarshal(b, &k); err == nil {
			metrics.KPICache.WithLabelValues("hit").Inc()
			return k, nil
		}
	} else {
		metrics.KPICache.WithLabelValues("miss").Inc()
	}

	k, err := s.computeKPIs(ctx, tenantID, f)
	if err != nil {
		return models.KPISnapshot{}, err
	}
	if b, err := json.Marshal(k); err == nil {
		if err := s.cache.Set(ctx, key, b, s.opts.KPICacheTTL); err != nil {
			s.log.Warn("KPI cache store failed", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}
	return k, nil
}

func (s *CampaignService) computeKPIs(ctx context.Context, tenantID string, f analytics.Filter) (models.KPISnapshot, error) {
	events, err := s.loadEvents(ctx, tenantID, f)
	if err != nil {
		return models.KPISnapshot{}, err
	}
	return timed("kpis", func() models.KPISnapshot { return analytics.ComputeKPIs(events) }), nil
}

// kpiVersion reads the tenant's data version. A missing counter is version 0.
func (s *CampaignService) kpiVersion(ctx context.Context, tenantID string) (int64, error) {
	b, ok, err := s.cache.Get(ctx, kpiVersionKey(tenantID))
	if err != nil || !ok {
		return 0, err
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed KPI version %q: %w", b, err)
	}
	return v, nil
}

// InvalidateKPIs bumps the tenant's data version so cached KPI snapshots are no longer
// served. Writers outside the service (such as bulk seeding) must call it after inserting.
func InvalidateKPIs(ctx context.Context, c cache.Cache, tenantID string) error {
	if _, err := c.Incr(ctx, kpiVersionKey(tenantID)); err != nil {
		return fmt.Errorf("failed to bump KPI version: %w", err)
	}
	return nil
}

// Dashboard returns raw KPIs and the values to display. With AI on, the displayed
// open rate, CTR and CTOR carry the simulated uplift.
func (s *CampaignService) Dashboard(ctx context.Context, tenantID string, f analytics.Filter, aiOn bool) (models.DashboardResponse, error) {
	raw, err := s.KPIs(ctx, tenantID, f)
	if err != nil {
		return models.DashboardResponse{}, err
	}
	display := raw
	if aiOn {
		display = analytics.SimulateAIUplift(raw, s.opts.Uplift)
	}
	return models.DashboardResponse{AIEnabled: aiOn, Raw: raw, Display: display}, nil
}

// Insights scores every contact in the filtered events. Fatigue and engagement are
// independent consumers of the same table and run concurrently.
func (s *CampaignService) Insights(ctx context.Context, tenantID string, f analytics.Filter) ([]models.Insight, error) {
	events, err := s.loadEvents(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}

	var (
		fatigue    []models.FatigueRecord
		engagement []models.EngagementRecord
	)
	var g errgroup.Group
	g.Go(func() error {
		fatigue = timed("fatigue", func() []models.FatigueRecord {
			return analytics.ComputeFatigue(events, s.opts.FatigueWindowDays, s.opts.FatigueThreshold)
		})
		return nil
	})
	g.Go(func() error {
		engagement = timed("engagement", func() []models.EngagementRecord {
			return analytics.EngagementScore(events)
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return analytics.MergeInsights(fatigue, engagement), nil
}

// Segment returns the contacts of one downloadable segment.
func (s *CampaignService) Segment(ctx context.Context, tenantID string, f analytics.Filter, kind SegmentKind) ([]models.Insight, error) {
	var pick func([]models.Insight) []models.Insight
	switch kind {
	case SegmentFatigued:
		pick = analytics.FatiguedSegment
	case SegmentHighEngagement:
		pick = func(in []models.Insight) []models.Insight {
			return analytics.HighEngagementSegment(in, analytics.HighEngagementScore)
		}
	default:
		return nil, fmt.Errorf("unknown segment %q (supported: %s, %s)", kind, SegmentFatigued, SegmentHighEngagement)
	}

	insights, err := s.Insights(ctx, tenantID, f)
	if err != nil {
		return nil, err
	}
	return pick(insights), nil
}

// SubjectLines suggests n subject lines for persona. n <= 0 selects the configured count.
func (s *CampaignService) SubjectLines(persona string, n int, seed int64) models.SubjectLinesResponse {
	if n <= 0 {
		n = s.opts.SubjectLineCount
	}
	return models.SubjectLinesResponse{
		Persona:     persona,
		Seed:        seed,
		Suggestions: analytics.SuggestSubjectLines(persona, n, seed),
	}
}

// Personas lists the tenant's contact personas.
func (s *CampaignService) Personas(ctx context.Context, tenantID string) ([]string, error) {
	contacts, err := s.store.ListContacts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return analytics.Personas(contacts), nil
}

// Channels lists the tenant's event channels.
func (s *CampaignService) Channels(ctx context.Context, tenantID string) ([]string, error) {
	channels, err := s.store.ListChannels(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// Brief renders the executive brief for the filtered events. The brief is dated by the
// newest event of the whole tenant table, not of the filtered view.
func (s *CampaignService) Brief(ctx context.Context, tenantID string, f analytics.Filter, aiOn bool, format brief.Format) (brief.Document, error) {
	var (
		dash   models.DashboardResponse
		latest time.Time
		found  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dash, err = s.Dashboard(gctx, tenantID, f, aiOn)
		return err
	})
	g.Go(func() error {
		var err error
		latest, found, err = s.store.LatestEventTime(gctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to read latest event time: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return brief.Document{}, err
	}
	if !found {
		latest = time.Now().UTC()
	}

	s.log.Info("Rendering executive brief",
		zap.String("tenant_id", tenantID),
		zap.Bool("ai_enabled", aiOn),
		zap.String("format", string(format)))

	return s.exporter.Export(brief.Compose(dash.Display, latest), format), nil
}

func (s *CampaignService) loadEvents(ctx context.Context, tenantID string, f analytics.Filter) ([]models.Event, error) {
	events, err := s.store.ListEvents(ctx, tenantID, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	metrics.EventsScanned.Observe(float64(len(events)))
	return events, nil
}

func kpiVersionKey(tenantID string) string {
	return "kpis:" + tenantID + ":version"
}

func kpiCacheKey(tenantID string, version int64, f analytics.Filter) string {
	b, _ := json.Marshal(f)
	sum := sha256.Sum256(b)
	return "kpis:" + tenantID + ":v" + strconv.FormatInt(version, 10) + ":" + hex.EncodeToString(sum[:8])
}

func timed[T any](name string, fn func() T) T {
	start := time.Now()
	out := fn()
	metrics.ComputeDuration.WithLabelValues(name).Observe(float64(time.Since(start).Microseconds()) / 1000)
	return out
}
