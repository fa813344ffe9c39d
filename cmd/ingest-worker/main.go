package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gajeshbhat/Verkada-API-Integration/internal/cameras"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/events"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/ingest"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/pointsofservice"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/stores"
	"github.com/gajeshbhat/Verkada-API-Integration/internal/transactions"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/config"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/db"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/logger"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/metrics"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/migrate"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/redis"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/retail"
	"github.com/gajeshbhat/Verkada-API-Integration/pkg/verkada"
)

// The worker runs one ingestion cycle and exits; scheduling is external
// (cron, Cloud Scheduler, systemd timer).
func main() {
	logg := logger.New(logger.Options{ServiceName: "ingest-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "ingest-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	retailClient, err := retail.NewClient(cfg.Retail)
	if err != nil {
		logg.Error(context.Background(), "failed to create retail client", err)
		os.Exit(1)
	}

	verkadaClient, err := verkada.NewClient(cfg.Verkada)
	if err != nil {
		logg.Error(context.Background(), "failed to create verkada client", err)
		os.Exit(1)
	}

	ingestMetrics := metrics.NewIngestMetrics(prometheus.DefaultRegisterer)

	transactionsRepo := transactions.NewRepository(dbClient.DB())

	eventService, err := events.NewService(events.ServiceParams{
		Logger:          logg,
		Repository:      events.NewRepository(dbClient.DB()),
		Client:          verkadaClient,
		Links:           transactionsRepo,
		EventTypeName:   cfg.Ingest.EventTypeName,
		ThumbnailExpiry: cfg.Verkada.ThumbnailExpiry,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create event service", err)
		os.Exit(1)
	}

	runLock, err := ingest.NewRedisLock(redisClient, redisClient.LockKey("ingest:"+cfg.App.Env), cfg.Ingest.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create run lock", err)
		os.Exit(1)
	}

	service, err := ingest.NewService(ingest.ServiceParams{
		Logger:       logg,
		DB:           dbClient,
		Lock:         runLock,
		Metrics:      ingestMetrics,
		Retail:       retailClient,
		Verkada:      verkadaClient,
		Stores:       stores.NewRepository(dbClient.DB()),
		Cameras:      cameras.NewRepository(dbClient.DB()),
		Tills:        pointsofservice.NewRepository(dbClient.DB()),
		Transactions: transactionsRepo,
		Events:       eventService,
		Window:       cfg.Ingest.Window,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ingest service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting ingestion run")

	summary, err := service.Run(ctx)
	if err != nil {
		if errors.Is(err, ingest.ErrRunInProgress) {
			logg.Warn(ctx, "another ingestion run holds the lock, exiting")
			return
		}
		if errors.Is(err, context.Canceled) {
			logg.Info(ctx, "ingestion run interrupted")
			return
		}
		logg.Error(ctx, "ingestion run failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"fetched":       summary.Fetched,
		"persisted":     summary.Persisted,
		"events_posted": summary.EventsPosted,
		"skipped":       summary.Skipped,
	})
	logg.Info(ctx, "ingestion run finished")
}
