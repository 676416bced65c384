package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PratikDhanave/campaign-analytics-service/internal/cache"
	"github.com/PratikDhanave/campaign-analytics-service/internal/config"
	"github.com/PratikDhanave/campaign-analytics-service/internal/dataset"
	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
	"github.com/PratikDhanave/campaign-analytics-service/internal/service"
	"github.com/PratikDhanave/campaign-analytics-service/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load contacts and campaign events from CSV into Postgres for one tenant",
	RunE:  runSeed,
}

var (
	seedTenant   string
	seedContacts string
	seedEvents   string
)

func init() {
	seedCmd.Flags().StringVar(&seedTenant, "tenant", "tenant1", "Tenant that owns the seeded rows")
	seedCmd.Flags().StringVar(&seedContacts, "contacts", "data/synthetic_contacts.csv", "Contacts CSV path (empty to skip)")
	seedCmd.Flags().StringVar(&seedEvents, "events", "data/synthetic_campaign_events.csv", "Campaign events CSV path")
}

// seedStore is the subset of the Postgres store the seeder writes through.
type seedStore interface {
	UpsertContact(ctx context.Context, tenantID string, c models.Contact) error
	InsertEvents(ctx context.Context, tenantID string, events []models.Event) (int, error)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedTenant == "" {
		return errors.New("--tenant required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	// The API caches KPI snapshots in Redis; seeding must invalidate them.
	var kpiCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = rc.Close() }()
		kpiCache = rc
	}

	var contacts []models.Contact
	if seedContacts != "" {
		if contacts, err = dataset.LoadContactsFile(seedContacts); err != nil {
			return err
		}
	}
	events, err := dataset.LoadEventsFile(seedEvents)
	if err != nil {
		return err
	}

	inserted, err := seed(ctx, db, kpiCache, seedTenant, contacts, events)
	if err != nil {
		return err
	}
	log.Info("Seed complete",
		zap.String("tenant_id", seedTenant),
		zap.Int("contacts", len(contacts)),
		zap.Int("events", len(events)),
		zap.Int("inserted", inserted),
		zap.Int("duplicates", len(events)-inserted))
	return nil
}

// seed writes contacts then events. Events without an id get a deterministic one so
// reseeding the same file is a no-op. Cached KPIs are invalidated when rows were added.
func seed(ctx context.Context, st seedStore, kpis cache.Cache, tenantID string, contacts []models.Contact, events []models.Event) (int, error) {
	for _, c := range contacts {
		if err := st.UpsertContact(ctx, tenantID, c); err != nil {
			return 0, fmt.Errorf("upsert contact %s: %w", c.ContactID, err)
		}
	}

	withIDs := make([]models.Event, len(events))
	for i, ev := range events {
		if ev.EventID == "" {
			ev.EventID = seedEventID(i, ev)
		}
		withIDs[i] = ev
	}

	inserted, err := st.InsertEvents(ctx, tenantID, withIDs)
	if err != nil {
		return 0, fmt.Errorf("insert events: %w", err)
	}
	if inserted > 0 {
		if err := service.InvalidateKPIs(ctx, kpis, tenantID); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

// seedEventID derives a stable UUID from the row position and its identifying columns.
func seedEventID(row int, ev models.Event) string {
	name := fmt.Sprintf("%d|%s|%s|%s", row, ev.ContactID, ev.EventDT.UTC().Format(time.RFC3339Nano), ev.Channel)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
