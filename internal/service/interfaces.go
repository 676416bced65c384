package service

import (
	"context"
	"time"

	"github.com/PratikDhanave/campaign-analytics-service/internal/analytics"
	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

// Store defines the persistence operations the campaign service relies on.
type Store interface {
	InsertEvent(ctx context.Context, tenantID string, ev models.Event) (bool, error)
	UpsertContact(ctx context.Context, tenantID string, c models.Contact) error
	ListEvents(ctx context.Context, tenantID string, f analytics.Filter) ([]models.Event, error)
	ListContacts(ctx context.Context, tenantID string) ([]models.Contact, error)
	ListChannels(ctx context.Context, tenantID string) ([]string, error)

	// LatestEventTime ignores any filter; ok is false when the tenant has no events.
	LatestEventTime(ctx context.Context, tenantID string) (latest time.Time, ok bool, err error)
}
