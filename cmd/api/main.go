package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oaklinehq/insights-backend/api/routes"
	"github.com/oaklinehq/insights-backend/internal/report"
	"github.com/oaklinehq/insights-backend/internal/sources"
	"github.com/oaklinehq/insights-backend/pkg/config"
	"github.com/oaklinehq/insights-backend/pkg/logger"
	"github.com/oaklinehq/insights-backend/pkg/metrics"
	"github.com/oaklinehq/insights-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var cache *redis.Client
	if cfg.Redis.Enabled() {
		cache, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, report cache disabled")
	}

	registry := prometheus.NewRegistry()
	sourceMetrics := metrics.NewSourceMetrics(registry)

	gateway := sources.NewGateway(
		sources.NewClient(sources.WithHTTPClient(&http.Client{Timeout: cfg.Sources.Timeout})),
		cfg.Sources,
		logg,
		sourceMetrics,
	)

	serviceParams := report.ServiceParams{
		Gateway:  gateway,
		CacheTTL: cfg.Cache.ReportTTL,
		Logger:   logg,
		Metrics:  sourceMetrics,
	}
	if cache != nil {
		serviceParams.Cache = cache
	}
	reportService, err := report.NewService(serviceParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create report service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, cache, reportService, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
