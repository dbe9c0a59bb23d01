package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/iamakashcode/consent-sub001/internal/adapter/metrics"
	"github.com/iamakashcode/consent-sub001/internal/adapter/repository/postgres"
	redisrepo "github.com/iamakashcode/consent-sub001/internal/adapter/repository/redis"
	"github.com/iamakashcode/consent-sub001/internal/pkg/config"
	"github.com/iamakashcode/consent-sub001/internal/pkg/logger"
	"github.com/iamakashcode/consent-sub001/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting subscription sweeper")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stopChan
		log.Info("shutdown signal received, stopping sweeper...")
		cancel()
	}()

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.RedisAddr)
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	m := metrics.New()
	siteRepo := postgres.NewSiteRepository(db, log, cfg.SiteCacheTTL)
	artifactRepo := redisrepo.NewArtifactRepository(redisClient, log)
	generator := usecase.NewGenerateScriptUseCase(siteRepo, siteRepo, artifactRepo, log, m, cfg.BeaconBaseURL)

	limiter := rate.NewLimiter(rate.Limit(cfg.SweepRateLimit), 1)
	sweep := usecase.NewSweepSubscriptionsUseCase(siteRepo, generator, log, m, limiter, cfg.SweepConcurrency)

	// An immediate sweep on startup, then the periodic loop. The interval
	// bounds how stale a distributed artifact can be after a missed webhook.
	runSweep(ctx, sweep, log)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	log.Info("sweeper started", "interval", cfg.SweepInterval.String())

Loop:
	for {
		select {
		case <-ticker.C:
			runSweep(ctx, sweep, log)
		case <-ctx.Done():
			log.Info("context cancelled, shutting down sweep loop")
			break Loop
		}
	}

	log.Info("sweeper shut down gracefully")
}

func runSweep(ctx context.Context, sweep *usecase.SweepSubscriptionsUseCase, log *slog.Logger) {
	synced, failed, err := sweep.Sweep(ctx)
	if err != nil {
		log.Error("sweep aborted", "error", err)
		return
	}
	if failed > 0 {
		log.Warn("sweep finished with failures", "synced", synced, "failed", failed)
	}
}
