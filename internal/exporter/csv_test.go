package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendcli/pkg/contracts/domain"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteBucketSet(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	set := domain.BucketSet{
		Name:      "by_area",
		KeyFields: []string{"boro"},
		Buckets: []domain.Bucket{
			{Key: []string{"BRONX"}, Value: 5},
			{Key: []string{"QUEENS"}, Value: 12},
		},
	}

	require.NoError(t, writer.WriteBucketSet("by_area.csv", set))

	content := readFile(t, filepath.Join(dir, "by_area.csv"))
	assert.Equal(t, "boro,count\nBRONX,5\nQUEENS,12\n", content)
}

func TestWriteBucketSetMeasureHeader(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	set := domain.BucketSet{
		Name:      "cases_by_region",
		KeyFields: []string{"region"},
		Measure:   "cases",
		Buckets:   []domain.Bucket{{Key: []string{"North"}, Value: 10.5}},
	}

	require.NoError(t, writer.WriteBucketSet("cases.csv", set))

	content := readFile(t, filepath.Join(dir, "cases.csv"))
	assert.Equal(t, "region,cases\nNorth,10.5\n", content)
}

func TestWriteSeries(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	series := domain.Series{
		Name:      "daily",
		KeyFields: []string{"day_offset"},
		OrderKey:  "day_offset",
		Points: []domain.SeriesPoint{
			{Bucket: domain.Bucket{Key: []string{"0"}, Value: 2}, Running: 2},
			{Bucket: domain.Bucket{Key: []string{"1"}, Value: 3}, Running: 5},
		},
	}

	require.NoError(t, writer.WriteSeries("daily.csv", series))

	content := readFile(t, filepath.Join(dir, "daily.csv"))
	assert.Equal(t, "day_offset,count,running_total\n0,2,2\n1,3,5\n", content)
}

func TestWriteCSVWithBOM(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	require.NoError(t, writer.WriteCSV("bom.csv", WriteOptions{
		Headers:   []string{"a"},
		Records:   [][]string{{"1"}},
		BOMPrefix: true,
	}))

	content := readFile(t, filepath.Join(dir, "bom.csv"))
	assert.Equal(t, "\xEF\xBB\xBFa\n1\n", content)
}

func TestWriteCSVCreatesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	require.NoError(t, writer.WriteCSV(filepath.Join("out", "nested.csv"), WriteOptions{
		Headers: []string{"a"},
	}))
	assert.FileExists(t, filepath.Join(dir, "out", "nested.csv"))
}

func TestWriteTrendSummary(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir)

	summary := TrendSummary{
		Dataset: "epidemic",
		RunID:   "run-1",
		XField:  "cases",
		YField:  "deaths",
		Fit:     domain.TrendFit{Slope: 0.02, R2: 1, N: 3},
		Predictions: []domain.Prediction{
			{X: 100, Actual: 2, Predicted: 2, Residual: 0},
		},
	}

	require.NoError(t, writer.WriteTrendSummary("trend.json", summary))

	var decoded TrendSummary
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "trend.json"))), &decoded))
	assert.Equal(t, summary, decoded)
}
