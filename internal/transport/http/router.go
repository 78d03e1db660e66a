package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"trendcli/internal/middleware"
)

// RouterConfig carries the pieces the router assembles.
type RouterConfig struct {
	Logger         *slog.Logger
	ReportService  ReportService
	MetricsHandler http.Handler
	ProgressWS     http.Handler
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter assembles the report server's routes and middleware chain.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	reportHandler := NewReportHandler(cfg.ReportService, cfg.Logger)
	r.Mount("/api", reportHandler.Routes())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.ProgressWS != nil {
		r.Handle("/ws", cfg.ProgressWS)
	}

	return r
}
