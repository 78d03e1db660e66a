package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "trendcli/internal/errors"
	"trendcli/pkg/contracts/domain"
)

// ReadExcelFile reads an .xlsx workbook and parses the configured sheet
// (or the first sheet) as a headered table. The first non-empty row is
// taken as the header.
func ReadExcelFile(ctx context.Context, path string, opts Options) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel source: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParseError(0, "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	headerIdx := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, apperrors.NewParseError(0, "source has no header row")
	}

	header := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		header[i] = strings.TrimSpace(h)
	}

	table := &domain.Table{Header: header}
	dataRow := 0
	for i := headerIdx + 1; i < len(rows); i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("ingestion cancelled: %w", ctx.Err())
		default:
		}
		if rowEmpty(rows[i]) {
			continue
		}
		dataRow++
		// excelize drops trailing empty cells; pad back to the header
		// width so the field-count contract still holds.
		fields := rows[i]
		if len(fields) < len(header) {
			padded := make([]string, len(header))
			copy(padded, fields)
			fields = padded
		}
		record, err := recordFromRow(dataRow, header, fields)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, record)
	}

	slog.Default().InfoContext(ctx, "ingested excel source",
		slog.String("sheet", sheet),
		slog.Int("columns", len(header)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
