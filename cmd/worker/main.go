package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dawadesk/backend-pharmacy/internal/alerts"
	"github.com/dawadesk/backend-pharmacy/internal/catalog"
	"github.com/dawadesk/backend-pharmacy/internal/config"
	"github.com/dawadesk/backend-pharmacy/internal/lock"
	"github.com/dawadesk/backend-pharmacy/internal/obs"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "pharmacy"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}

	redisCfg, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisCfg)
	defer func() { _ = redisClient.Close() }()

	scanHandler := &alerts.TaskHandler{
		Svc: &alerts.Service{
			Store:             catalog.NewPostgresStore(pool),
			LowStockThreshold: cfg.AlertLowStockThreshold,
			ExpiryWindow:      cfg.AlertExpiryWindow,
		},
		Log:    logger,
		Locker: lock.Locker{R: redisClient},
	}

	mux := asynq.NewServeMux()
	scanHandler.Register(mux)

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register(cfg.AlertScanSchedule, alerts.NewInventoryScanTask()); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.AlertScanSchedule).Msg("register scan schedule")
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Fatal().Err(err).Msg("scheduler exited")
		}
	}()

	srv := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 2})
	logger.Info().Str("schedule", cfg.AlertScanSchedule).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker exited")
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
