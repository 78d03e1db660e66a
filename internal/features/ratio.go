package features

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	apperrors "trendcli/internal/errors"
	"trendcli/pkg/contracts/domain"
)

// deriveRatios computes every configured ratio on rec. A zero
// denominator leaves the ratio undefined for the record: it is logged
// and excluded, never stored as Inf or NaN, and the run continues.
// Returns the number of undefined ratios encountered.
func (d Deriver) deriveRatios(ctx context.Context, rec *domain.Record) (int, error) {
	undefined := 0
	for _, ratio := range d.Ratios {
		num, err := numericField(rec, ratio.Numerator)
		if err != nil {
			return undefined, err
		}
		den, err := numericField(rec, ratio.Denominator)
		if err != nil {
			return undefined, err
		}
		if den == 0 {
			undefined++
			ratioErr := &apperrors.UndefinedRatioError{Row: rec.Row, Name: ratio.Name, Field: ratio.Denominator}
			slog.Default().DebugContext(ctx, "ratio undefined, excluding record from ratio aggregates",
				slog.String("ratio", ratio.Name),
				slog.Int("row", rec.Row),
				slog.String("error", ratioErr.Error()))
			continue
		}
		rec.Ratios[ratio.Name] = num / den
	}
	return undefined, nil
}

// numericField parses the named field of rec as a float. Thousands
// separators are tolerated; anything else unparseable is a ParseError.
func numericField(rec *domain.Record, field string) (float64, error) {
	raw, ok := rec.Fields[field]
	if !ok {
		return 0, apperrors.NewFieldParseError(rec.Row, field, "", "numeric column missing", nil)
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, apperrors.NewFieldParseError(rec.Row, field, raw, "unparseable number", err)
	}
	return v, nil
}
