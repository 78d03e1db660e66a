package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "source.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadExcelFile(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"date", "cases", "deaths"},
		{"2020-03-01", "10", "1"},
		{"2020-03-02", "12", "0"},
	})

	table, err := ReadExcelFile(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "cases", "deaths"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "10", table.Rows[0].Fields["cases"])
	assert.Equal(t, "0", table.Rows[1].Fields["deaths"])
}

func TestReadExcelFileNamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"region", "cases"},
		{"North", "5"},
	})

	table, err := ReadExcelFile(context.Background(), path, Options{Sheet: "Data"})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "North", table.Rows[0].Fields["region"])
}

func TestReadExcelFilePadsTrailingEmptyCells(t *testing.T) {
	// A row whose last cell is empty comes back short from the reader;
	// it must still map onto the full header.
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"date", "cases", "deaths"},
		{"2020-03-01", "10", ""},
	})

	table, err := ReadExcelFile(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	deaths, ok := table.Rows[0].Get("deaths")
	require.True(t, ok)
	assert.Equal(t, "", deaths)
}

func TestReadExcelFileMissing(t *testing.T) {
	_, err := ReadExcelFile(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open excel source")
}
