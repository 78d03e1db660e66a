// Command report runs the configured dataset pipelines and exports
// their aggregates, cumulative series, and trend model summaries.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"trendcli/internal/config"
	"trendcli/internal/infrastructure"
	"trendcli/internal/pipeline"
	"trendcli/internal/services"
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to the YAML configuration file")
	dataset := flag.String("dataset", "", "run a single dataset by name (default: all)")
	outDir := flag.String("out", "reports", "output directory for exported files")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	manager := pipeline.NewManager(logger, pipeline.WithMetrics(metrics))
	service := services.NewReportService(cfg, manager, logger)

	names := service.Datasets()
	if *dataset != "" {
		names = []string{*dataset}
	}

	for _, name := range names {
		if err := service.RunDataset(ctx, name); err != nil {
			logger.ErrorContext(ctx, "pipeline run failed",
				slog.String("dataset", name),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := service.Export(ctx, name, *outDir); err != nil {
			logger.ErrorContext(ctx, "export failed",
				slog.String("dataset", name),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.InfoContext(ctx, "all datasets processed",
		slog.Int("datasets", len(names)),
		slog.String("out_dir", *outDir))
}
