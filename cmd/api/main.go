package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/foodbridge/donations-backend/api/routes"
	"github.com/foodbridge/donations-backend/internal/donations"
	"github.com/foodbridge/donations-backend/internal/moderation"
	"github.com/foodbridge/donations-backend/internal/notifications"
	"github.com/foodbridge/donations-backend/internal/users"
	"github.com/foodbridge/donations-backend/pkg/config"
	"github.com/foodbridge/donations-backend/pkg/db"
	"github.com/foodbridge/donations-backend/pkg/geocode"
	"github.com/foodbridge/donations-backend/pkg/logger"
	"github.com/foodbridge/donations-backend/pkg/metrics"
	"github.com/foodbridge/donations-backend/pkg/migrate"
	"github.com/foodbridge/donations-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
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
	lifecycleMetrics := metrics.NewLifecycleMetrics(registry)

	geocoder, err := geocode.NewClient(cfg.Geocoder.UserAgent,
		geocode.WithBaseURL(cfg.Geocoder.BaseURL),
		geocode.WithCountrySuffix(cfg.Geocoder.CountrySuffix),
		geocode.WithHTTPClient(&http.Client{Timeout: cfg.Geocoder.Timeout}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create geocoder", err)
		os.Exit(1)
	}

	moderationService, err := moderation.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create moderation service", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	donationsRepo := donations.NewRepository(dbClient.DB())
	seenLedger := notifications.NewRepository(dbClient.DB())

	donationsService, err := donations.NewService(
		donationsRepo,
		dbClient,
		geocoder,
		moderationService,
		seenLedger,
		lifecycleMetrics,
		cfg.Nearby.RadiusKM,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create donations service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(seenLedger, donationsRepo, usersService)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			usersService,
			donationsService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
