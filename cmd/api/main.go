// Package main provides the entrypoint for the trailcast API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailcast/trailcast/internal/api"
	"github.com/trailcast/trailcast/internal/api/middleware"
	"github.com/trailcast/trailcast/internal/conditions"
	"github.com/trailcast/trailcast/internal/config"
	"github.com/trailcast/trailcast/internal/database"
	"github.com/trailcast/trailcast/internal/provider/resilience"
	"github.com/trailcast/trailcast/internal/reports"
	"github.com/trailcast/trailcast/internal/tiles"
	"github.com/trailcast/trailcast/internal/weather/openmeteo"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	const serviceName = "trailcast-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	log.Info().
		Str("env", cfg.Environment).
		Msg("starting trailcast API")

	ctx := context.Background()

	// Weather provider behind the resilient HTTP client.
	resilientConfig := resilience.DefaultClientConfig(openmeteo.ProviderName)
	resilientConfig.Timeout = cfg.Weather.Timeout
	resilientConfig.MaxRetries = uint64(cfg.Weather.MaxRetries)

	provider := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    cfg.Weather.BaseURL,
		HTTPClient: resilience.NewClient(resilientConfig),
		Logger:     log,
	})

	conditionService := conditions.NewService(conditions.ServiceConfig{
		Provider:   provider,
		Logger:     log,
		PointTTL:   cfg.Conditions.PointTTL,
		HistoryTTL: cfg.Conditions.HistoryTTL,
	})

	tileService, err := tiles.NewService(tiles.ServiceConfig{
		Grid:    conditionService,
		Logger:  log,
		TileTTL: cfg.Tiles.TTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tile service")
	}

	// Trail reports run on Postgres when configured, in-memory otherwise.
	var reportRepo reports.Repository = reports.NewMemoryRepository()
	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply database schema")
		}

		reportRepo = reports.NewPostgresRepository(pool)
		log.Info().Msg("database connected")
	} else {
		log.Warn().Msg("no DATABASE_URL configured, trail reports are in-memory only")
	}

	reportService := reports.NewService(reports.ServiceConfig{
		Repository: reportRepo,
		Logger:     log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		Logger:           log,
		TileService:      tileService,
		ConditionService: conditionService,
		ReportService:    reportService,
		StandardRateLimit: middleware.RateLimitConfig{
			RequestLimit: cfg.RateLimit.RequestsPerMinute,
			WindowLength: time.Minute,
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
