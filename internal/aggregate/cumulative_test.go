package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendcli/pkg/contracts/domain"
)

func TestCumulativeRunningTotal(t *testing.T) {
	set := domain.BucketSet{
		Name:      "daily",
		KeyFields: []string{KeyDayOffset},
		Buckets: []domain.Bucket{
			{Key: []string{"10"}, Value: 4},
			{Key: []string{"0"}, Value: 2},
			{Key: []string{"2"}, Value: 3},
		},
	}

	series, err := Cumulative(set, KeyDayOffset)
	require.NoError(t, err)
	require.Len(t, series.Points, 3)

	// Points sort numerically on the order key, not lexically.
	assert.Equal(t, []string{"0"}, series.Points[0].Key)
	assert.Equal(t, []string{"2"}, series.Points[1].Key)
	assert.Equal(t, []string{"10"}, series.Points[2].Key)

	assert.Equal(t, 2.0, series.Points[0].Running)
	assert.Equal(t, 5.0, series.Points[1].Running)
	assert.Equal(t, 9.0, series.Points[2].Running)

	// Non-negative measures give a non-decreasing running total whose
	// final value equals the set total.
	prev := 0.0
	for _, p := range series.Points {
		assert.GreaterOrEqual(t, p.Running, prev)
		prev = p.Running
	}
	assert.Equal(t, set.Total(), series.Points[len(series.Points)-1].Running)
}

func TestCumulativeTieBreakDeterministic(t *testing.T) {
	set := domain.BucketSet{
		Name:      "cases_by_date",
		KeyFields: []string{"region", KeyDate},
		Buckets: []domain.Bucket{
			{Key: []string{"B", "2020-03-01"}, Value: 1},
			{Key: []string{"A", "2020-03-01"}, Value: 2},
			{Key: []string{"A", "2020-02-01"}, Value: 3},
		},
	}

	series, err := Cumulative(set, KeyDate)
	require.NoError(t, err)
	require.Len(t, series.Points, 3)

	assert.Equal(t, []string{"A", "2020-02-01"}, series.Points[0].Key)
	assert.Equal(t, []string{"A", "2020-03-01"}, series.Points[1].Key)
	assert.Equal(t, []string{"B", "2020-03-01"}, series.Points[2].Key)
}

func TestCumulativeUnknownOrderKey(t *testing.T) {
	set := domain.BucketSet{
		Name:      "by_area",
		KeyFields: []string{"boro"},
		Buckets:   []domain.Bucket{{Key: []string{"QUEENS"}, Value: 1}},
	}
	_, err := Cumulative(set, KeyDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a grouping key")
}

func TestCumulativeEmptySet(t *testing.T) {
	set := domain.BucketSet{Name: "daily", KeyFields: []string{KeyDayOffset}, Buckets: []domain.Bucket{}}
	series, err := Cumulative(set, KeyDayOffset)
	require.NoError(t, err)
	assert.NotNil(t, series.Points)
	assert.Empty(t, series.Points)
}
