// Package api provides the HTTP API for trailcast.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/trailcast/trailcast/internal/api/handler"
	"github.com/trailcast/trailcast/internal/api/middleware"
	"github.com/trailcast/trailcast/internal/conditions"
	"github.com/trailcast/trailcast/internal/reports"
	"github.com/trailcast/trailcast/internal/tiles"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	Logger            zerolog.Logger
	TileService       *tiles.Service
	ConditionService  *conditions.Service
	ReportService     *reports.Service
	TileRateLimit     middleware.RateLimitConfig
	StandardRateLimit middleware.RateLimitConfig
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	tilesHandler := handler.NewTilesHandler(cfg.TileService)
	weatherHandler := handler.NewWeatherHandler(cfg.ConditionService)
	reportsHandler := handler.NewReportsHandler(cfg.ReportService)
	opsHandler := handler.NewOpsHandler(cfg.Version)

	tileRateLimit := middleware.RateLimitByIP(orDefault(cfg.TileRateLimit, middleware.TileRateLimit))
	standardRateLimit := middleware.RateLimitByIP(orDefault(cfg.StandardRateLimit, middleware.StandardRateLimit))

	r.Route("/api", func(r chi.Router) {
		r.Route("/tiles", func(r chi.Router) {
			r.Use(tileRateLimit)
			r.Get("/conditions/{z}/{x}/{y}.png", tilesHandler.GetConditionTile)
		})

		r.Route("/weather", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/grid", weatherHandler.GetGrid)
			r.Get("/history", weatherHandler.GetHistory)
		})

		r.Route("/trails/{trailID}/reports", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", reportsHandler.ListReports)
			r.Post("/", reportsHandler.SubmitReport)
		})

		r.With(standardRateLimit).Post("/reports/{reportID}/vote", reportsHandler.VoteReport)
	})

	r.Get("/healthz", opsHandler.HealthCheck)
	r.Method("GET", "/metrics", promhttp.Handler())

	return r
}

func orDefault(cfg, def middleware.RateLimitConfig) middleware.RateLimitConfig {
	if cfg.RequestLimit <= 0 {
		return def
	}
	return cfg
}
