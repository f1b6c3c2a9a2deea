package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/dawadesk/backend-pharmacy/internal/alerts"
	"github.com/dawadesk/backend-pharmacy/internal/cart"
	"github.com/dawadesk/backend-pharmacy/internal/catalog"
	"github.com/dawadesk/backend-pharmacy/internal/checkout"
	"github.com/dawadesk/backend-pharmacy/internal/common"
	"github.com/dawadesk/backend-pharmacy/internal/config"
	"github.com/dawadesk/backend-pharmacy/internal/db"
	"github.com/dawadesk/backend-pharmacy/internal/discount"
	"github.com/dawadesk/backend-pharmacy/internal/health"
	"github.com/dawadesk/backend-pharmacy/internal/lock"
	"github.com/dawadesk/backend-pharmacy/internal/obs"
	"github.com/dawadesk/backend-pharmacy/internal/receipt"
	"github.com/dawadesk/backend-pharmacy/internal/sales"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "pharmacy")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "pharmacy-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "pharmacy-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	catalogStore := catalog.NewPostgresStore(pool)
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Store:        catalogStore,
		Cache:        catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		SearchLimit:  envInt("CATALOG_SEARCH_LIMIT", 20),
		PopularLimit: envInt("CATALOG_POPULAR_LIMIT", 8),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := &catalog.Handler{Svc: catalogSvc}

	cartSvc := &cart.Service{
		Store:   &cart.Store{R: redisClient, TTL: cfg.CartTTL},
		Catalog: catalogSvc,
		TaxRate: cfg.TaxRate,
	}
	cartHandler := &cart.Handler{Svc: cartSvc}

	salesStore := sales.NewPostgresStore(pool)
	receiptOpts := receipt.Options{
		StoreName: envOrDefault("RECEIPT_STORE_NAME", "DawaDesk Pharmacy"),
		Phone:     envOrDefault("RECEIPT_STORE_PHONE", ""),
		Currency:  cfg.CurrencyCode,
	}
	salesHandler := &sales.Handler{Store: salesStore, Receipt: receiptOpts}

	checkoutSvc := &checkout.Service{
		Sessions: &checkout.SessionStore{R: redisClient, TTL: cfg.CartTTL},
		Carts:    cartSvc,
		Sales:    salesStore,
		Locker:   lock.Locker{R: redisClient},
		LockTTL:  cfg.CheckoutLockTTL,
		Log:      logger,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc}

	alertsHandler := &alerts.Handler{Svc: &alerts.Service{
		Store:             catalogStore,
		LowStockThreshold: cfg.AlertLowStockThreshold,
		ExpiryWindow:      cfg.AlertExpiryWindow,
	}}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rateMiddleware, err := newRateLimiter(redisClient, cfg.RateLimit); err != nil {
		logger.Error().Err(err).Msg("initialise rate limiter")
	} else if rateMiddleware != nil {
		r.Use(rateMiddleware)
	}

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      health.Probes{Pool: pool, Redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/categories", catalogHandler.Categories)
		v.Get("/drugs/search", catalogHandler.Search)
		v.Get("/drugs/barcode/{code}", catalogHandler.Barcode)
		v.Get("/drugs/{id}/batches", catalogHandler.Batches)
		v.Get("/batches/popular", catalogHandler.Popular)

		v.Get("/discounts/presets", discountPresets)

		v.Route("/carts", func(c chi.Router) {
			c.Get("/{id}", cartHandler.Get)
			c.Delete("/{id}", cartHandler.Delete)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/", cartHandler.Create)
				g.Post("/{id}/items", cartHandler.AddItem)
				g.Patch("/{id}/items/{batchId}", cartHandler.UpdateItem)
				g.Delete("/{id}/items/{batchId}", cartHandler.RemoveItem)
				g.Delete("/{id}/items", cartHandler.Clear)
				g.Put("/{id}/discount", cartHandler.ApplyDiscount)
				g.Delete("/{id}/discount", cartHandler.RemoveDiscount)
			})

			c.Route("/{id}/checkout", func(ck chi.Router) {
				ck.Get("/", checkoutHandler.Get)
				ck.Post("/", checkoutHandler.Begin)
				ck.Put("/method", checkoutHandler.SelectMethod)
				ck.Put("/tender", checkoutHandler.Tender)
				ck.With(idem.Middleware).Post("/submit", checkoutHandler.Submit)
				ck.Post("/cancel", checkoutHandler.Cancel)
			})
		})

		v.Get("/sales", salesHandler.List)
		v.Get("/sales/{id}", salesHandler.Get)
		v.Get("/sales/{id}/receipt", salesHandler.PrintReceipt)

		v.Get("/alerts", alertsHandler.Scan)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		graceCtx, graceCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer graceCancel()
		if err := srv.Shutdown(graceCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func discountPresets(w http.ResponseWriter, _ *http.Request) {
	common.JSONData(w, http.StatusOK, discount.Presets())
}

func newRateLimiter(client *redis.Client, formatted string) (func(http.Handler) http.Handler, error) {
	if strings.TrimSpace(formatted) == "" {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "ratelimit"})
	if err != nil {
		return nil, err
	}
	mw := limiterstdlib.NewMiddleware(limiter.New(store, rate))
	return mw.Handler, nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
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

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
