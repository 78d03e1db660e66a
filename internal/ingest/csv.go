package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "trendcli/internal/errors"
	"trendcli/pkg/contracts/domain"
)

// utf8BOM is stripped from the start of CSV content so Excel-exported
// files parse cleanly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures tabular ingestion.
type Options struct {
	Delimiter rune   // CSV field delimiter; 0 means comma
	Sheet     string // Excel sheet name; empty means first sheet
}

// ReadCSVFile reads the file at path and parses it as a headered CSV.
func ReadCSVFile(ctx context.Context, path string, opts Options) (*domain.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv source: %w", err)
	}
	defer file.Close()

	return ReadCSV(ctx, file, opts)
}

// ReadCSV parses headered CSV content from r into a Table. The first
// row is the declared header; every data row must carry exactly the
// declared number of fields.
func ReadCSV(ctx context.Context, r io.Reader, opts Options) (*domain.Table, error) {
	logger := slog.Default()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv content: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	// Field-count mismatches are reported per row below, with the row
	// number the record came from.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParseError(0, "source has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := &domain.Table{Header: header}

	for row := 1; ; row++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("ingestion cancelled: %w", ctx.Err())
		default:
		}

		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewFieldParseError(row, "", "", "malformed csv row", err)
		}
		record, err := recordFromRow(row, header, fields)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, record)
	}

	logger.InfoContext(ctx, "ingested tabular source",
		slog.Int("columns", len(header)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

// recordFromRow maps one data row onto the header, enforcing the
// declared field count.
func recordFromRow(row int, header, fields []string) (domain.RawRecord, error) {
	if len(fields) != len(header) {
		return domain.RawRecord{}, &apperrors.ParseError{
			Row:    row,
			Reason: fmt.Sprintf("field count mismatch: header declares %d columns, row has %d", len(header), len(fields)),
		}
	}
	rec := domain.RawRecord{Row: row, Fields: make(map[string]string, len(header))}
	for i, name := range header {
		rec.Fields[name] = strings.TrimSpace(fields[i])
	}
	return rec, nil
}
