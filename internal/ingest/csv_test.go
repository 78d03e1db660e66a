package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trendcli/internal/errors"
)

func TestReadCSV(t *testing.T) {
	input := "occur_date,boro,vic_sex\n1/5/2020,QUEENS,M\n1/6/2020,BRONX,F\n"

	table, err := ReadCSV(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"occur_date", "boro", "vic_sex"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Rows[0].Row)
	boro, ok := table.Rows[0].Get("boro")
	require.True(t, ok)
	assert.Equal(t, "QUEENS", boro)
	assert.Equal(t, 2, table.Rows[1].Row)
	assert.Equal(t, "F", table.Rows[1].Fields["vic_sex"])

	_, ok = table.Rows[0].Get("absent")
	assert.False(t, ok)
}

func TestReadCSVStripsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFdate,cases\n2020-03-01,10\n"

	table, err := ReadCSV(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "cases"}, table.Header)
}

func TestReadCSVTrimsWhitespace(t *testing.T) {
	input := " date , cases \n2020-03-01, 10\n"

	table, err := ReadCSV(context.Background(), strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "cases"}, table.Header)
	assert.Equal(t, "10", table.Rows[0].Fields["cases"])
}

func TestReadCSVFieldCountMismatch(t *testing.T) {
	input := "date,cases,deaths\n2020-03-01,10,1\n2020-03-02,12\n"

	_, err := ReadCSV(context.Background(), strings.NewReader(input), Options{})
	require.Error(t, err)

	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Row)
	assert.Contains(t, parseErr.Reason, "field count mismatch")
}

func TestReadCSVCustomDelimiter(t *testing.T) {
	input := "date;cases\n2020-03-01;10\n"

	table, err := ReadCSV(context.Background(), strings.NewReader(input), Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "cases"}, table.Header)
	assert.Equal(t, "10", table.Rows[0].Fields["cases"])
}

func TestReadCSVEmptySource(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""), Options{})
	require.Error(t, err)

	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Reason, "no header row")
}

func TestReadCSVHeaderOnly(t *testing.T) {
	table, err := ReadCSV(context.Background(), strings.NewReader("date,cases\n"), Options{})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestReadCSVCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader("date\n2020-03-01\n"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadCSVFileMissing(t *testing.T) {
	_, err := ReadCSVFile(context.Background(), "/nonexistent/input.csv", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open csv source")
}
