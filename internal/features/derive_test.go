package features

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trendcli/internal/errors"
	"trendcli/pkg/contracts/domain"
)

func rawRecord(row int, fields map[string]string) domain.RawRecord {
	return domain.RawRecord{Row: row, Fields: fields}
}

func TestDeriveTemporalFeatures(t *testing.T) {
	d := Deriver{DateColumn: "occur_date", DateLayout: "1/2/2006"}
	records := []domain.RawRecord{
		rawRecord(1, map[string]string{"occur_date": "1/5/2020"}),
		rawRecord(2, map[string]string{"occur_date": "1/1/2020"}),
		rawRecord(3, map[string]string{"occur_date": "1/8/2020"}),
		rawRecord(4, map[string]string{"occur_date": "1/1/2020"}),
	}

	out, err := d.Derive(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, out, 4)

	// Offsets are relative to the dataset minimum date, 2020-01-01.
	assert.Equal(t, 4, out[0].DayOffset)
	assert.Equal(t, 0, out[1].DayOffset)
	assert.Equal(t, 7, out[2].DayOffset)
	assert.Equal(t, 0, out[3].DayOffset)

	zeroes := 0
	for _, rec := range out {
		assert.GreaterOrEqual(t, rec.DayOffset, 0)
		if rec.DayOffset == 0 {
			zeroes++
		}
	}
	assert.Equal(t, 2, zeroes, "records tied at the minimum date all have offset zero")

	// 2020-01-01 was a Wednesday.
	assert.Equal(t, "Wednesday", out[1].Weekday)
	assert.Equal(t, "Sunday", out[0].Weekday)
}

func TestDeriveISODates(t *testing.T) {
	d := Deriver{DateColumn: "date", DateLayout: "2006-01-02"}
	out, err := d.Derive(context.Background(), []domain.RawRecord{
		rawRecord(1, map[string]string{"date": "2021-03-15"}),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), out[0].Date)
	assert.Equal(t, "Monday", out[0].Weekday)
}

func TestDeriveUnparseableDateFailsRun(t *testing.T) {
	d := Deriver{DateColumn: "date", DateLayout: "2006-01-02"}
	_, err := d.Derive(context.Background(), []domain.RawRecord{
		rawRecord(1, map[string]string{"date": "2021-03-15"}),
		rawRecord(2, map[string]string{"date": "not-a-date"}),
	})
	require.Error(t, err)

	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr), "unparseable dates abort rather than dropping records")
	assert.Equal(t, 2, parseErr.Row)
	assert.Equal(t, "date", parseErr.Column)
}

func TestDeriveMissingDateColumn(t *testing.T) {
	d := Deriver{DateColumn: "date", DateLayout: "2006-01-02"}
	_, err := d.Derive(context.Background(), []domain.RawRecord{
		rawRecord(1, map[string]string{"other": "x"}),
	})
	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestDeriveEmptyInput(t *testing.T) {
	d := Deriver{DateColumn: "date", DateLayout: "2006-01-02"}
	out, err := d.Derive(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMinDate(t *testing.T) {
	d := Deriver{DateColumn: "date", DateLayout: "2006-01-02"}
	dates, min, err := d.MinDate([]domain.RawRecord{
		rawRecord(1, map[string]string{"date": "2020-06-01"}),
		rawRecord(2, map[string]string{"date": "2020-01-15"}),
		rawRecord(3, map[string]string{"date": "2020-12-31"}),
	})
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), min)
}

func TestDeriveRatios(t *testing.T) {
	d := Deriver{
		DateColumn: "date",
		DateLayout: "2006-01-02",
		Ratios:     []Ratio{{Name: "fatality_rate", Numerator: "deaths", Denominator: "cases"}},
	}
	records := []domain.RawRecord{
		rawRecord(1, map[string]string{"date": "2020-01-01", "cases": "100", "deaths": "5"}),
		rawRecord(2, map[string]string{"date": "2020-01-02", "cases": "0", "deaths": "0"}),
		rawRecord(3, map[string]string{"date": "2020-01-03", "cases": "1,000", "deaths": "20"}),
	}

	out, err := d.Derive(context.Background(), records)
	require.NoError(t, err)

	v, ok := out[0].Ratio("fatality_rate")
	require.True(t, ok)
	assert.InDelta(t, 0.05, v, 1e-12)

	// Zero denominator leaves the ratio undefined, never Inf or NaN.
	_, ok = out[1].Ratio("fatality_rate")
	assert.False(t, ok, "zero-denominator record is excluded from the ratio")

	v, ok = out[2].Ratio("fatality_rate")
	require.True(t, ok, "thousands separators are tolerated")
	assert.InDelta(t, 0.02, v, 1e-12)
}

func TestDeriveRatioUnparseableNumeric(t *testing.T) {
	d := Deriver{
		DateColumn: "date",
		DateLayout: "2006-01-02",
		Ratios:     []Ratio{{Name: "r", Numerator: "a", Denominator: "b"}},
	}
	_, err := d.Derive(context.Background(), []domain.RawRecord{
		rawRecord(1, map[string]string{"date": "2020-01-01", "a": "oops", "b": "2"}),
	})
	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "a", parseErr.Column)
}
