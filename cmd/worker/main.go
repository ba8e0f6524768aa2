package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/labwise/lab-api/internal/config"
	"github.com/labwise/lab-api/internal/repository/postgres"
	"github.com/labwise/lab-api/pkg/logger"
	"github.com/labwise/lab-api/pkg/messaging/redis"
	"github.com/labwise/lab-api/pkg/metrics"
	"github.com/labwise/lab-api/pkg/worker"
)

// workerEnv overrides outbox settings for containerized deployments
// where editing the shared config file is impractical.
type workerEnv struct {
	BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE"`
	PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL"`
	MetricsAddr  string        `envconfig:"METRICS_ADDR" default:":8081"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var env workerEnv
	if err := envconfig.Process("worker", &env); err != nil {
		log.Fatal().Err(err).Msg("failed to read worker environment")
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

	m := metrics.NewMetrics("labapi", "worker")

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
	outboxRepo := postgres.NewOutboxRepository(base)

	broker, err := redis.NewRedisBroker(redis.Config{
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

	processorCfg := worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}
	if env.BatchSize > 0 {
		processorCfg.BatchSize = env.BatchSize
	}
	if env.PollInterval > 0 {
		processorCfg.PollInterval = env.PollInterval
	}

	processor := worker.NewOutboxProcessor(outboxRepo, broker, processorCfg, appLog, m)
	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cfg.Outbox.CleanupInterval, appLog)

	startSidecar(env.MetricsAddr, db, appLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanup.Start(ctx)
	processor.Start(ctx)

	appLog.Info("Worker exited properly")
}

// startSidecar serves liveness, readiness and Prometheus metrics on a
// side listener, separate from any API traffic.
func startSidecar(addr string, db *sqlx.DB, appLog *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			appLog.Error(err, "Metrics server failed")
			os.Exit(1)
		}
	}()
}
