package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/campaign-analytics-service/internal/analytics"
	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for contacts and campaign events.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertEvent persists a campaign event and returns inserted=false when it is a duplicate.
//
// Duplicate detection is enforced by the database constraint on (tenant_id, event_id),
// which is compatible with retries and at-least-once delivery.
func (p *PostgresStore) InsertEvent(ctx context.Context, tenantID string, ev models.Event) (bool, error) {
	if tenantID == "" || ev.EventID == "" || ev.ContactID == "" {
		return false, errors.New("tenantID/eventID/contactID required")
	}

	// RETURNING 1 only when inserted; duplicates return no rows.
	var one int
	err := p.pool.QueryRow(ctx, `
		INSERT INTO campaign_events(tenant_id, event_id, contact_id, event_dt, channel, persona, opened, clicked, unsubscribed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (tenant_id, event_id) DO NOTHING
		RETURNING 1
	`, tenantID, ev.EventID, ev.ContactID, ev.EventDT, ev.Channel, ev.Persona,
		ev.Opened, ev.Clicked, ev.Unsubscribed).Scan(&one)

	if err == nil {
		return true, nil
	}

	// Conflict produces no rows because RETURNING returns nothing.
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}

	return false, err
}

// InsertEvents bulk loads events in one transaction and returns how many were new.
func (p *PostgresStore) InsertEvents(ctx context.Context, tenantID string, events []models.Event) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(`
			INSERT INTO campaign_events(tenant_id, event_id, contact_id, event_dt, channel, persona, opened, clicked, unsubscribed)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (tenant_id, event_id) DO NOTHING
		`, tenantID, ev.EventID, ev.ContactID, ev.EventDT, ev.Channel, ev.Persona,
			ev.Opened, ev.Clicked, ev.Unsubscribed)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for i := range events {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("insert event %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// UpsertContact creates or updates a contact.
func (p *PostgresStore) UpsertContact(ctx context.Context, tenantID string, c models.Contact) error {
	if tenantID == "" || c.ContactID == "" {
		return errors.New("tenantID/contactID required")
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO contacts(tenant_id, contact_id, persona, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (tenant_id, contact_id)
		DO UPDATE SET persona = EXCLUDED.persona, created_at = EXCLUDED.created_at
	`, tenantID, c.ContactID, c.Persona, c.CreatedAt)
	return err
}

// ListEvents returns the tenant's events matching f.
// An empty persona or channel set matches all; the date range is inclusive on both ends.
func (p *PostgresStore) ListEvents(ctx context.Context, tenantID string, f analytics.Filter) ([]models.Event, error) {
	// Empty slices would encode as '{}' rather than NULL and match nothing.
	var personas, channels []string
	if len(f.Personas) > 0 {
		personas = f.Personas
	}
	if len(f.Channels) > 0 {
		channels = f.Channels
	}

	rows, err := p.pool.Query(ctx, `
		SELECT event_id, contact_id, event_dt, channel, persona, opened, clicked, unsubscribed
		FROM campaign_events
		WHERE tenant_id=$1
		  AND ($2::text[] IS NULL OR persona = ANY($2))
		  AND ($3::text[] IS NULL OR channel = ANY($3))
		  AND ($4::timestamptz IS NULL OR event_dt >= $4)
		  AND ($5::timestamptz IS NULL OR event_dt <= $5)
	`, tenantID, personas, channels, f.From, f.To)
	if err != nil {
		return nil, err
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Event, error) {
		var ev models.Event
		err := row.Scan(&ev.EventID, &ev.ContactID, &ev.EventDT, &ev.Channel, &ev.Persona,
			&ev.Opened, &ev.Clicked, &ev.Unsubscribed)
		ev.EventDT = ev.EventDT.UTC()
		return ev, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return events, nil
}

// ListContacts returns every contact of the tenant.
func (p *PostgresStore) ListContacts(ctx context.Context, tenantID string) ([]models.Contact, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT contact_id, persona, created_at
		FROM contacts
		WHERE tenant_id=$1
		ORDER BY contact_id
	`, tenantID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Contact, error) {
		var c models.Contact
		err := row.Scan(&c.ContactID, &c.Persona, &c.CreatedAt)
		c.CreatedAt = c.CreatedAt.UTC()
		return c, err
	})
}

// ListChannels returns the distinct channels seen for the tenant.
func (p *PostgresStore) ListChannels(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT channel FROM campaign_events WHERE tenant_id=$1 ORDER BY channel
	`, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// LatestEventTime returns the newest event timestamp of the tenant, ignoring filters.
// ok is false when the tenant has no events.
func (p *PostgresStore) LatestEventTime(ctx context.Context, tenantID string) (time.Time, bool, error) {
	var latest *time.Time
	err := p.pool.QueryRow(ctx, `
		SELECT MAX(event_dt) FROM campaign_events WHERE tenant_id=$1
	`, tenantID).Scan(&latest)
	if err != nil {
		return time.Time{}, false, err
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return latest.UTC(), true, nil
}

// ListTenants returns every tenant that has events.
func (p *PostgresStore) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT DISTINCT tenant_id FROM campaign_events ORDER BY tenant_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
