package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendcli/internal/config"
	"trendcli/internal/pipeline"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	incidents := filepath.Join(dir, "incidents.csv")
	require.NoError(t, os.WriteFile(incidents, []byte(
		"occur_date,boro\n"+
			"1/1/2020,QUEENS\n"+
			"1/2/2020,BRONX\n"+
			"1/3/2020,QUEENS\n"), 0o644))

	epidemic := filepath.Join(dir, "epidemic.csv")
	require.NoError(t, os.WriteFile(epidemic, []byte(
		"date,region,cases,deaths\n"+
			"2020-03-01,North,100,2\n"+
			"2020-03-02,South,200,4\n"+
			"2020-03-03,North,300,6\n"), 0o644))

	return &config.Config{
		Datasets: []config.DatasetConfig{
			{
				Name:       "incidents",
				Source:     config.SourceConfig{Path: incidents, Format: "csv"},
				DateColumn: "occur_date",
				DateLayout: "1/2/2006",
				Aggregations: []config.AggregationConfig{
					{Name: "daily", Keys: []string{"day_offset"}, OrderKey: "day_offset", Cumulative: true},
				},
				Trend: config.TrendConfig{Aggregation: "daily", X: "day_offset", Y: "value"},
			},
			{
				Name:       "epidemic",
				Source:     config.SourceConfig{Path: epidemic, Format: "csv"},
				DateColumn: "date",
				DateLayout: "2006-01-02",
				Aggregations: []config.AggregationConfig{
					{Name: "cases_by_region", Keys: []string{"region"}, Measure: "cases"},
				},
				Trend: config.TrendConfig{X: "cases", Y: "deaths"},
			},
		},
	}
}

func TestReportServiceRunAll(t *testing.T) {
	cfg := testConfig(t)
	service := NewReportService(cfg, pipeline.NewManager(nil), nil)

	require.NoError(t, service.RunAll(context.Background()))

	assert.Equal(t, []string{"epidemic", "incidents"}, service.Datasets())

	for _, name := range service.Datasets() {
		state, ok := service.Run(name)
		require.True(t, ok, name)
		assert.NotNil(t, state.Trend, name)
		assert.False(t, state.CompletedAt.IsZero(), name)
	}
}

func TestReportServiceRunDataset(t *testing.T) {
	cfg := testConfig(t)
	service := NewReportService(cfg, pipeline.NewManager(nil), nil)

	require.NoError(t, service.RunDataset(context.Background(), "epidemic"))

	state, ok := service.Run("epidemic")
	require.True(t, ok)
	assert.Len(t, state.Records, 3)

	_, ok = service.Run("incidents")
	assert.False(t, ok)
}

func TestReportServiceRunDatasetUnknown(t *testing.T) {
	service := NewReportService(testConfig(t), pipeline.NewManager(nil), nil)
	err := service.RunDataset(context.Background(), "absent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset")
}

func TestReportServiceExport(t *testing.T) {
	cfg := testConfig(t)
	service := NewReportService(cfg, pipeline.NewManager(nil), nil)
	require.NoError(t, service.RunDataset(context.Background(), "incidents"))

	outDir := t.TempDir()
	require.NoError(t, service.Export(context.Background(), "incidents", outDir))

	assert.FileExists(t, filepath.Join(outDir, "incidents_daily.csv"))
	assert.FileExists(t, filepath.Join(outDir, "incidents_daily_cumulative.csv"))
	assert.FileExists(t, filepath.Join(outDir, "incidents_trend.json"))
}

func TestReportServiceExportWithoutRun(t *testing.T) {
	service := NewReportService(testConfig(t), pipeline.NewManager(nil), nil)
	err := service.Export(context.Background(), "incidents", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completed run")
}
