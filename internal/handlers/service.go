package handlers

import (
	"context"

	"github.com/PratikDhanave/campaign-analytics-service/internal/analytics"
	"github.com/PratikDhanave/campaign-analytics-service/internal/brief"
	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
	"github.com/PratikDhanave/campaign-analytics-service/internal/service"
)

// CampaignAPI is the service surface the HTTP handlers depend on.
type CampaignAPI interface {
	AIEnabledByDefault() bool
	SubjectLineCount() int
	IngestEvent(ctx context.Context, tenantID string, ev models.Event) (bool, error)
	UpsertContact(ctx context.Context, tenantID string, c models.Contact) error
	Dashboard(ctx context.Context, tenantID string, f analytics.Filter, aiOn bool) (models.DashboardResponse, error)
	Insights(ctx context.Context, tenantID string, f analytics.Filter) ([]models.Insight, error)
	Segment(ctx context.Context, tenantID string, f analytics.Filter, kind service.SegmentKind) ([]models.Insight, error)
	SubjectLines(persona string, n int, seed int64) models.SubjectLinesResponse
	Personas(ctx context.Context, tenantID string) ([]string, error)
	Channels(ctx context.Context, tenantID string) ([]string, error)
	Brief(ctx context.Context, tenantID string, f analytics.Filter, aiOn bool, format brief.Format) (brief.Document, error)
}
