// Package app wires the report server: configuration, logging,
// telemetry, pipeline execution, and the HTTP transport.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"trendcli/internal/config"
	"trendcli/internal/infrastructure"
	"trendcli/internal/pipeline"
	"trendcli/internal/services"
	transporthttp "trendcli/internal/transport/http"
	"trendcli/internal/websocket"
)

// App is the assembled report server.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	service   *services.ReportService
	hub       *websocket.Hub
	server    *http.Server
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}

	hub := websocket.NewHub(logger)
	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	manager := pipeline.NewManager(logger,
		pipeline.WithTracer(providers.Tracer),
		pipeline.WithMetrics(metrics),
		pipeline.WithBroadcaster(hub),
	)
	service := services.NewReportService(cfg, manager, logger)

	router := transporthttp.NewRouter(transporthttp.RouterConfig{
		Logger:         logger,
		ReportService:  service,
		MetricsHandler: providers.PrometheusHTTP,
		ProgressWS:     hub,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		providers: providers,
		service:   service,
		hub:       hub,
		server:    server,
	}, nil
}

// Run executes the configured pipelines and serves the report API until
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.service.RunAll(ctx); err != nil {
		return fmt.Errorf("pipeline execution: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "report server listening",
			slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		return a.Shutdown()
	}
}

// Shutdown gracefully stops the server and flushes telemetry.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.logger.InfoContext(ctx, "shutting down report server")

	var firstErr error
	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := a.providers.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	infrastructure.CloseLogFile()
	return firstErr
}

// Service exposes the report service, mainly for tests.
func (a *App) Service() *services.ReportService {
	return a.service
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// WaitHealthy blocks until the server answers /healthz or the timeout
// elapses.
func (a *App) WaitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost%s/healthz", a.server.Addr)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server did not become healthy within %s", timeout)
}
