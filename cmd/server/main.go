package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iamakashcode/consent-sub001/internal/adapter/api"
	"github.com/iamakashcode/consent-sub001/internal/adapter/api/middleware"
	"github.com/iamakashcode/consent-sub001/internal/adapter/metrics"
	"github.com/iamakashcode/consent-sub001/internal/adapter/repository/postgres"
	redisrepo "github.com/iamakashcode/consent-sub001/internal/adapter/repository/redis"
	"github.com/iamakashcode/consent-sub001/internal/pkg/config"
	"github.com/iamakashcode/consent-sub001/internal/pkg/logger"
	"github.com/iamakashcode/consent-sub001/internal/usecase"

	_ "github.com/lib/pq" // Postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	m := metrics.New()

	// --- Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())

	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}

	go func() {
		log.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database and Redis Connections ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisAddr)
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("could not connect to redis, artifacts will be generated on demand", "error", err)
	}

	// --- Repositories ---
	siteRepo := postgres.NewSiteRepository(db, log, cfg.SiteCacheTTL)
	artifactRepo := redisrepo.NewArtifactRepository(redisClient, log)

	// --- Use Cases ---
	generator := usecase.NewGenerateScriptUseCase(siteRepo, siteRepo, artifactRepo, log, m, cfg.BeaconBaseURL)
	distributor := usecase.NewDistributeScriptUseCase(artifactRepo, generator, log, m)

	// --- Distribution Server ---
	router := api.NewRouter(cfg, log, distributor, generator, artifactRepo, m)
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(log)(router),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		log.Info("starting distribution server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("distribution server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("distribution server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
