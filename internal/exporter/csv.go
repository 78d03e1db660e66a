// Package exporter writes pipeline outputs (aggregated buckets,
// cumulative series, and trend model summaries) to CSV and JSON files
// for downstream reporting collaborators.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"trendcli/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality rooted at a directory.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a CSV writer that resolves file names against
// dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options.
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) error {
	fullPath := filepath.Join(w.dir, name)

	slog.Info("writing CSV file",
		slog.String("path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return nil
}

// WriteBucketSet exports an aggregation: one column per key field plus
// the measure column.
func (w *CSVWriter) WriteBucketSet(name string, set domain.BucketSet) error {
	headers := append([]string{}, set.KeyFields...)
	measure := set.Measure
	if measure == "" {
		measure = "count"
	}
	headers = append(headers, measure)

	records := make([][]string, 0, len(set.Buckets))
	for _, b := range set.Buckets {
		row := append([]string{}, b.Key...)
		row = append(row, formatMeasure(b.Value))
		records = append(records, row)
	}
	return w.WriteCSV(name, WriteOptions{Headers: headers, Records: records})
}

// WriteSeries exports a cumulative series with its running-total
// column.
func (w *CSVWriter) WriteSeries(name string, series domain.Series) error {
	headers := append([]string{}, series.KeyFields...)
	measure := series.Measure
	if measure == "" {
		measure = "count"
	}
	headers = append(headers, measure, "running_total")

	records := make([][]string, 0, len(series.Points))
	for _, p := range series.Points {
		row := append([]string{}, p.Key...)
		row = append(row, formatMeasure(p.Value), formatMeasure(p.Running))
		records = append(records, row)
	}
	return w.WriteCSV(name, WriteOptions{Headers: headers, Records: records})
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
