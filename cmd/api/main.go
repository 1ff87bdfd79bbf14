package main

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/adityarahmanda/kopitera-backend/api/routes"
	"github.com/adityarahmanda/kopitera-backend/internal/catalog"
	"github.com/adityarahmanda/kopitera-backend/internal/checkout"
	"github.com/adityarahmanda/kopitera-backend/internal/continuity"
	"github.com/adityarahmanda/kopitera-backend/internal/orders"
	"github.com/adityarahmanda/kopitera-backend/internal/payment"
	"github.com/adityarahmanda/kopitera-backend/internal/promotion"
	"github.com/adityarahmanda/kopitera-backend/pkg/config"
	"github.com/adityarahmanda/kopitera-backend/pkg/logger"
	"github.com/adityarahmanda/kopitera-backend/pkg/metrics"
	"github.com/adityarahmanda/kopitera-backend/pkg/redis"
	"github.com/joho/godotenv"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	catalogClient, err := catalog.NewClient(cfg.Storefront.BaseURL, cfg.Storefront.Timeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog client", err)
		os.Exit(1)
	}
	promotionClient, err := promotion.NewClient(cfg.Storefront.BaseURL, cfg.Storefront.Timeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create promotion client", err)
		os.Exit(1)
	}
	ordersClient, err := orders.NewClient(cfg.Storefront.BaseURL, cfg.Storefront.Timeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders client", err)
		os.Exit(1)
	}

	continuityKV, err := continuity.NewRedisKV(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create continuity adapter", err)
		os.Exit(1)
	}
	continuityStore, err := continuity.NewStore(continuityKV, cfg.Checkout.ContinuityTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create continuity store", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(cfg.Checkout, promotionClient, continuityStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	gateway, err := payment.NewSnapGateway(cfg.Midtrans)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	submitter := orders.NewSubmitter(ordersClient, continuityStore, logg, checkoutMetrics)
	dispatcher, err := payment.NewDispatcher(checkoutService, gateway, submitter, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment dispatcher", err)
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
		Handler: routes.NewRouter(cfg, logg, redisClient, catalogClient, checkoutService, continuityStore, dispatcher, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
