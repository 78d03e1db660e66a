package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"trendcli/pkg/contracts/domain"
)

// TrendSummary is the JSON model summary handed to reporting
// collaborators.
type TrendSummary struct {
	Dataset     string              `json:"dataset"`
	RunID       string              `json:"run_id"`
	XField      string              `json:"x_field"`
	YField      string              `json:"y_field"`
	Fit         domain.TrendFit     `json:"fit"`
	Predictions []domain.Prediction `json:"predictions"`
}

// WriteTrendSummary writes the model summary as indented JSON.
func (w *CSVWriter) WriteTrendSummary(name string, summary TrendSummary) error {
	fullPath := filepath.Join(w.dir, name)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal trend summary: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write trend summary: %w", err)
	}

	slog.Info("wrote trend summary",
		slog.String("path", fullPath),
		slog.Int("predictions", len(summary.Predictions)))
	return nil
}
