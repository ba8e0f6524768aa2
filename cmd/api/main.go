package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/labwise/lab-api/internal/catalog"
	"github.com/labwise/lab-api/internal/config"
	"github.com/labwise/lab-api/internal/email"
	analysisHandler "github.com/labwise/lab-api/internal/handler/analysis"
	catalogHandler "github.com/labwise/lab-api/internal/handler/catalog"
	"github.com/labwise/lab-api/internal/handler/health"
	promhandler "github.com/labwise/lab-api/internal/handler/prometheus"
	"github.com/labwise/lab-api/internal/repository"
	"github.com/labwise/lab-api/internal/repository/memory"
	"github.com/labwise/lab-api/internal/repository/postgres"
	"github.com/labwise/lab-api/internal/router"
	"github.com/labwise/lab-api/internal/service/alert"
	"github.com/labwise/lab-api/internal/service/analysis"
	eventService "github.com/labwise/lab-api/internal/service/event"
	"github.com/labwise/lab-api/internal/service/pattern"
	"github.com/labwise/lab-api/pkg/event"
	"github.com/labwise/lab-api/pkg/logger"
	"github.com/labwise/lab-api/pkg/messaging"
	"github.com/labwise/lab-api/pkg/messaging/redis"
	"github.com/labwise/lab-api/pkg/metrics"
	"github.com/labwise/lab-api/pkg/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	appLog := logger.NewLogger(&logger.Config{
		Level:      level,
		Format:     cfg.Logging.Format,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	m := metrics.NewMetrics("labapi", "api")

	// Load the parameter catalog and pattern rules, with optional
	// file overrides
	cat := catalog.Default()
	rules := pattern.DefaultRules()
	if cfg.Catalog.File != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			appLog.Fatal(err, "failed to load catalog override")
		}
		loaded, err := catalog.LoadRules(cfg.Catalog.File)
		if err != nil {
			appLog.Fatal(err, "failed to load pattern rules")
		}
		if len(loaded) > 0 {
			rules = loaded
		}
	}

	// Initialize the record store and outbox
	var analysisRepo repository.AnalysisRepository
	var outboxRepo repository.OutboxRepository
	switch cfg.Store.Backend {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			appLog.Fatal(err, "failed to connect to database")
		}
		defer db.Close()
		base := postgres.NewBaseRepository(db)
		schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
		if err := base.EnsureSchema(schemaCtx); err != nil {
			cancelSchema()
			appLog.Fatal(err, "failed to prepare database schema")
		}
		cancelSchema()
		analysisRepo = postgres.NewAnalysisRepository(db)
		outboxRepo = postgres.NewOutboxRepository(base)
	default:
		store := memory.NewStore(cfg.Store.SnapshotPath, appLog)
		if err := store.Load(); err != nil {
			appLog.Fatal(err, "failed to load store snapshot")
		}
		analysisRepo = store
		outboxRepo = memory.NewOutboxStore()
	}

	// Initialize event service with outbox repository
	eventSvc := eventService.NewService(outboxRepo)

	// Initialize Redis message broker when configured
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &appLog.ZL)
		if err != nil {
			appLog.Fatal(err, "failed to connect to Redis")
		}
		defer broker.Close()
	}

	var emailSvc email.Service
	if cfg.Email.Host != "" {
		emailSvc = email.NewSMTPService(cfg.Email)
	}
	alertSvc := alert.NewService(cfg.Alerts, emailSvc, broker, appLog, m)

	analysisSvc, err := analysis.NewService(cat, rules, analysisRepo, eventSvc, alertSvc, appLog, m)
	if err != nil {
		appLog.Fatal(err, "failed to build analysis service")
	}

	if cfg.Store.SeedDemo {
		seedDemoIfEmpty(analysisSvc, analysisRepo, appLog)
	}

	// Initialize event tracking middleware
	eventTracker := event.NewEventTracker(eventSvc, &cfg.EventTracking, appLog)

	// Initialize handlers
	analysisH := analysisHandler.NewHandler(analysisSvc)
	catalogH := catalogHandler.NewHandler(cat, rules)
	healthH := health.NewHandler(analysisRepo)
	promH := promhandler.New()

	// Setup router
	r := router.NewRouter(analysisH, catalogH, healthH, promH, eventTracker, router.Config{
		RequestTimeout:   cfg.Server.RequestTimeout,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSOrigins:      cfg.CORS.AllowedOrigins,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Drain the outbox inline when no dedicated worker runs
	if cfg.Outbox.Enabled {
		if broker == nil {
			appLog.Fatal(nil, "outbox processing enabled but no redis url configured")
		}
		processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		}, appLog, m)
		go processor.Start(ctx)

		cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cfg.Outbox.CleanupInterval, appLog)
		go cleanup.Start(ctx)
	}

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal(err, "failed to start server")
		}
	}()
	appLog.Info("Server listening", "addr", srv.Addr)

	<-ctx.Done()
	stop()
	appLog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(err, "server forced to shutdown")
	}

	appLog.Info("Server exited properly")
}

// seedDemoIfEmpty loads the demo dataset on fresh installs only, so a
// restart does not duplicate records.
func seedDemoIfEmpty(svc *analysis.Service, repo repository.AnalysisRepository, appLog *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	records, err := repo.List(ctx)
	if err != nil {
		appLog.Error(err, "failed to check store before demo seed")
		return
	}
	if len(records) > 0 {
		return
	}
	if _, err := svc.SeedDemo(ctx); err != nil {
		appLog.Error(err, "failed to seed demo data")
	}
}
