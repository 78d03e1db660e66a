// Package aggregate groups feature-augmented records into measure
// buckets and builds cumulative (running-total) series over them.
package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	apperrors "trendcli/internal/errors"
	"trendcli/pkg/contracts/domain"
)

// Spec defines one grouped aggregation: the grouping key fields and the
// measure field to sum. An empty measure counts records instead.
type Spec struct {
	Name    string
	Keys    []string
	Measure string
}

// Derived feature names usable as grouping keys alongside raw fields.
const (
	KeyWeekday   = "weekday"
	KeyDayOffset = "day_offset"
	KeyDate      = "date"
)

// keyValue resolves a grouping key field on a record: the derived
// temporal features by their reserved names, anything else from the
// record's fields.
func keyValue(rec domain.Record, field string) string {
	switch field {
	case KeyWeekday:
		return rec.Weekday
	case KeyDayOffset:
		return strconv.Itoa(rec.DayOffset)
	case KeyDate:
		return rec.Date.Format("2006-01-02")
	default:
		return rec.Fields[field]
	}
}

// Group produces one bucket per distinct key-value combination present
// in records, with the measure summed (or records counted). The
// reduction is commutative and associative, so input order never
// affects the result; output is sorted by key tuple for determinism.
// An empty input yields an empty bucket collection, not an error.
//
// Records on which the measure is undefined (a ratio with a zero
// denominator) are excluded from this aggregation only; they still
// participate in every other aggregation.
func Group(ctx context.Context, records []domain.Record, spec Spec) (domain.BucketSet, error) {
	set := domain.BucketSet{
		Name:      spec.Name,
		KeyFields: spec.Keys,
		Measure:   spec.Measure,
		Buckets:   []domain.Bucket{},
	}

	type accum struct {
		key   []string
		value float64
	}
	groups := make(map[string]*accum)
	excluded := 0

	for _, rec := range records {
		value, ok, err := measureValue(rec, spec.Measure)
		if err != nil {
			return domain.BucketSet{}, err
		}
		if !ok {
			excluded++
			continue
		}

		key := make([]string, len(spec.Keys))
		for i, field := range spec.Keys {
			key[i] = keyValue(rec, field)
		}
		mapKey := compositeKey(key)
		if g, exists := groups[mapKey]; exists {
			g.value += value
		} else {
			groups[mapKey] = &accum{key: key, value: value}
		}
	}

	for _, g := range groups {
		set.Buckets = append(set.Buckets, domain.Bucket{Key: g.key, Value: g.value})
	}
	sort.Slice(set.Buckets, func(i, j int) bool {
		return lessKeyTuple(set.Buckets[i].Key, set.Buckets[j].Key)
	})

	slog.Default().DebugContext(ctx, "aggregated records",
		slog.String("aggregation", spec.Name),
		slog.Int("buckets", len(set.Buckets)),
		slog.Int("excluded", excluded))

	return set, nil
}

// measureValue resolves the measure on a record: an empty measure
// counts the record, a raw field is parsed numerically, and a derived
// ratio is read from the record's ratio map. ok is false when the
// record must be excluded because the ratio is undefined on it.
func measureValue(rec domain.Record, measure string) (value float64, ok bool, err error) {
	if measure == "" {
		return 1, true, nil
	}
	if raw, isField := rec.Fields[measure]; isField {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return 0, false, apperrors.NewFieldParseError(rec.Row, measure, raw, "unparseable measure", err)
		}
		return v, true, nil
	}
	if v, defined := rec.Ratio(measure); defined {
		return v, true, nil
	}
	return 0, false, nil
}

// compositeKey joins key values with an unlikely separator for map
// lookup. 0x1f is the ASCII unit separator.
func compositeKey(key []string) string {
	out := ""
	for i, k := range key {
		if i > 0 {
			out += "\x1f"
		}
		out += k
	}
	return out
}

// lessKeyTuple orders key tuples element-wise, numerically when both
// sides parse as numbers so "2" sorts before "10".
func lessKeyTuple(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] == b[i] {
			continue
		}
		av, aErr := strconv.ParseFloat(a[i], 64)
		bv, bErr := strconv.ParseFloat(b[i], 64)
		if aErr == nil && bErr == nil {
			return av < bv
		}
		return a[i] < b[i]
	}
	return len(a) < len(b)
}
