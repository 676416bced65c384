package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/PratikDhanave/campaign-analytics-service/internal/brief"
	"github.com/PratikDhanave/campaign-analytics-service/internal/cache"
	"github.com/PratikDhanave/campaign-analytics-service/internal/config"
	"github.com/PratikDhanave/campaign-analytics-service/internal/httpserver"
	"github.com/PratikDhanave/campaign-analytics-service/internal/logger"
	"github.com/PratikDhanave/campaign-analytics-service/internal/service"
	"github.com/PratikDhanave/campaign-analytics-service/internal/store"
)

// main boots the service: config → logger → DB → schema → cache → HTTP server.
func main() {
	// Load runtime config from environment (DB_URL, API_KEYS, analytics tunables).
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting campaign analytics API",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.Int("tenants", len(cfg.APIKeys)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build` is enough.
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to apply schema", zap.Error(err))
	}

	// KPI snapshots are cached in Redis when configured; otherwise every request recomputes.
	var kpiCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer func() {
			if err := rc.Close(); err != nil {
				log.Error("Failed to close Redis client", zap.Error(err))
			}
		}()
		kpiCache = rc
		log.Info("KPI cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.KPICacheTTL))
	}

	var pdf brief.Renderer
	if cfg.Analytics.PDFEnabled {
		pdf = brief.PDFRenderer{}
	}
	exporter := brief.NewExporter(pdf, log)

	svc := service.NewCampaignService(db, kpiCache, exporter, service.Options{
		FatigueWindowDays: cfg.Analytics.FatigueWindowDays,
		FatigueThreshold:  cfg.Analytics.FatigueThreshold,
		Uplift:            cfg.Analytics.Uplift,
		AIEnabled:         cfg.Analytics.AIEnabled,
		SubjectLineCount:  cfg.Analytics.SubjectLineCount,
		KPICacheTTL:       cfg.KPICacheTTL,
	}, log)

	// Build HTTP router (public health + authenticated APIs).
	router := httpserver.NewRouter(cfg.APIKeys, db, svc, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down API server")

	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
