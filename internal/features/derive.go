// Package features computes the derived fields of the pipeline: parsed
// dates, day-of-week labels, day offsets from the dataset minimum date,
// and configured ratio fields.
//
// Day-offset derivation is explicitly two-phase: a reduction pass over
// the whole collection finds the minimum date, then a pure per-record
// mapping consumes that minimum as a parameter. The reduction is the
// pipeline's one global barrier; no offset is derived before it
// completes.
package features

import (
	"context"
	"log/slog"
	"time"

	apperrors "trendcli/internal/errors"
	"trendcli/pkg/contracts/domain"
)

// Deriver configures feature derivation for one dataset.
type Deriver struct {
	DateColumn string
	DateLayout string
	Ratios     []Ratio
}

// Ratio defines a derived ratio field: Numerator / Denominator.
type Ratio struct {
	Name        string
	Numerator   string
	Denominator string
}

// ParseDate parses the record's date column under the configured
// layout.
func (d Deriver) ParseDate(rec domain.RawRecord) (time.Time, error) {
	raw, ok := rec.Get(d.DateColumn)
	if !ok {
		return time.Time{}, apperrors.NewFieldParseError(rec.Row, d.DateColumn, "", "date column missing", nil)
	}
	date, err := time.Parse(d.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.NewFieldParseError(rec.Row, d.DateColumn, raw, "unparseable date", err)
	}
	return date, nil
}

// MinDate parses every record's date and returns the parsed dates and
// their minimum. This is the reduction phase of day-offset derivation;
// an unparseable date aborts rather than silently dropping the record.
func (d Deriver) MinDate(records []domain.RawRecord) ([]time.Time, time.Time, error) {
	dates := make([]time.Time, len(records))
	var min time.Time
	for i, rec := range records {
		date, err := d.ParseDate(rec)
		if err != nil {
			return nil, time.Time{}, err
		}
		dates[i] = date
		if i == 0 || date.Before(min) {
			min = date
		}
	}
	return dates, min, nil
}

// Derive converts canonical records into feature-augmented records.
// Every output record satisfies DayOffset >= 0, and at least one record
// (the one(s) at the minimum date) has DayOffset == 0.
func (d Deriver) Derive(ctx context.Context, records []domain.RawRecord) ([]domain.Record, error) {
	logger := slog.Default()

	if len(records) == 0 {
		return []domain.Record{}, nil
	}

	dates, min, err := d.MinDate(records)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Record, len(records))
	undefinedRatios := 0
	for i, raw := range records {
		rec := domain.Record{
			Row:       raw.Row,
			Fields:    raw.Clone().Fields,
			Date:      dates[i],
			Weekday:   dates[i].Weekday().String(),
			DayOffset: dayOffset(dates[i], min),
		}
		if len(d.Ratios) > 0 {
			rec.Ratios = make(map[string]float64, len(d.Ratios))
			n, err := d.deriveRatios(ctx, &rec)
			if err != nil {
				return nil, err
			}
			undefinedRatios += n
		}
		out[i] = rec
	}

	logger.InfoContext(ctx, "derived features",
		slog.Int("records", len(out)),
		slog.String("min_date", min.Format("2006-01-02")),
		slog.Int("undefined_ratios", undefinedRatios))

	return out, nil
}

// dayOffset counts whole days between date and min.
func dayOffset(date, min time.Time) int {
	return int(date.Sub(min).Hours() / 24)
}
