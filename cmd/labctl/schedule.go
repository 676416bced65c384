package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PratikDhanave/campaign-analytics-service/internal/analytics"
	"github.com/PratikDhanave/campaign-analytics-service/internal/brief"
	"github.com/PratikDhanave/campaign-analytics-service/internal/cache"
	"github.com/PratikDhanave/campaign-analytics-service/internal/config"
	"github.com/PratikDhanave/campaign-analytics-service/internal/service"
	"github.com/PratikDhanave/campaign-analytics-service/internal/store"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Write an executive brief per tenant on a cron schedule",
	RunE:  runSchedule,
}

var (
	scheduleExpr   string
	scheduleDir    string
	scheduleFormat string
	scheduleAI     bool
	scheduleOnce   bool
)

func init() {
	f := scheduleCmd.Flags()
	f.StringVar(&scheduleExpr, "cron", "0 8 * * MON", "Standard 5-field cron expression")
	f.StringVar(&scheduleDir, "dir", "briefs", "Directory the briefs are written to")
	f.StringVar(&scheduleFormat, "format", "pdf", "Output format: md or pdf")
	f.BoolVar(&scheduleAI, "ai", true, "Apply the AI uplift to displayed KPIs")
	f.BoolVar(&scheduleOnce, "once", false, "Run a single pass immediately and exit")
}

type tenantLister interface {
	ListTenants(ctx context.Context) ([]string, error)
}

type briefer interface {
	Brief(ctx context.Context, tenantID string, f analytics.Filter, aiOn bool, format brief.Format) (brief.Document, error)
}

// briefJob renders one brief per tenant into dir.
type briefJob struct {
	tenants tenantLister
	briefs  briefer
	dir     string
	format  brief.Format
	aiOn    bool
	now     func() time.Time
	log     *zap.Logger
}

// Run writes every tenant's brief and returns the paths written. A failing tenant is
// logged and skipped.
func (j *briefJob) Run(ctx context.Context) ([]string, error) {
	tenants, err := j.tenants.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	stamp := j.now().UTC().Format("20060102")
	var written []string
	for _, tenantID := range tenants {
		doc, err := j.briefs.Brief(ctx, tenantID, analytics.Filter{}, j.aiOn, j.format)
		if err != nil {
			j.log.Error("Scheduled brief failed", zap.String("tenant_id", tenantID), zap.Error(err))
			continue
		}
		path := filepath.Join(j.dir, fmt.Sprintf("%s_%s%s", tenantID, stamp, filepath.Ext(doc.Filename)))
		if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
			j.log.Error("Failed to write brief", zap.String("path", path), zap.Error(err))
			continue
		}
		written = append(written, path)
	}
	j.log.Info("Scheduled briefs written", zap.Int("tenants", len(tenants)), zap.Int("written", len(written)))
	return written, nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	if _, err := rcron.ParseStandard(scheduleExpr); err != nil {
		return fmt.Errorf("invalid --cron %q: %w", scheduleExpr, err)
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	var pdf brief.Renderer
	if cfg.Analytics.PDFEnabled {
		pdf = brief.PDFRenderer{}
	}
	svc := service.NewCampaignService(db, cache.Nop{}, brief.NewExporter(pdf, log), service.Options{
		FatigueWindowDays: cfg.Analytics.FatigueWindowDays,
		FatigueThreshold:  cfg.Analytics.FatigueThreshold,
		Uplift:            cfg.Analytics.Uplift,
		AIEnabled:         cfg.Analytics.AIEnabled,
		SubjectLineCount:  cfg.Analytics.SubjectLineCount,
	}, log)

	job := &briefJob{
		tenants: db,
		briefs:  svc,
		dir:     scheduleDir,
		format:  brief.ParseFormat(scheduleFormat),
		aiOn:    scheduleAI,
		now:     time.Now,
		log:     log,
	}

	if scheduleOnce {
		_, err := job.Run(ctx)
		return err
	}

	c := rcron.New()
	if _, err := c.AddFunc(scheduleExpr, func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		if _, err := job.Run(runCtx); err != nil {
			log.Error("Scheduled run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("register schedule: %w", err)
	}
	c.Start()
	log.Info("Brief scheduler started", zap.String("cron", scheduleExpr), zap.String("dir", scheduleDir))

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("Brief scheduler stopped")
	return nil
}
