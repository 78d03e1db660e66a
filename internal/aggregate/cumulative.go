package aggregate

import (
	"fmt"
	"sort"

	"trendcli/pkg/contracts/domain"
)

// Cumulative sorts the buckets of set by orderKey, ties broken by the
// full key tuple for determinism, and adds a left-to-right prefix sum.
// For non-negative measures the running total is non-decreasing, and
// its final value equals the sum of all measures in the set.
func Cumulative(set domain.BucketSet, orderKey string) (domain.Series, error) {
	orderIdx := -1
	for i, field := range set.KeyFields {
		if field == orderKey {
			orderIdx = i
			break
		}
	}
	if orderIdx == -1 {
		return domain.Series{}, fmt.Errorf("order key %q is not a grouping key of aggregation %q", orderKey, set.Name)
	}

	sorted := make([]domain.Bucket, len(set.Buckets))
	copy(sorted, set.Buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Key[orderIdx] != b.Key[orderIdx] {
			return lessKeyTuple([]string{a.Key[orderIdx]}, []string{b.Key[orderIdx]})
		}
		return lessKeyTuple(a.Key, b.Key)
	})

	series := domain.Series{
		Name:      set.Name,
		KeyFields: set.KeyFields,
		Measure:   set.Measure,
		OrderKey:  orderKey,
		Points:    make([]domain.SeriesPoint, 0, len(sorted)),
	}

	var running float64
	for _, b := range sorted {
		running += b.Value
		series.Points = append(series.Points, domain.SeriesPoint{Bucket: b, Running: running})
	}
	return series, nil
}
