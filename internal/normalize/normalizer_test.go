package normalize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendcli/pkg/contracts/domain"
)

func testRules() Rules {
	return NewRules(
		[]string{"perp_age_group", "perp_sex"},
		[]string{"", "(null)", "U", "1020", "224", "940"},
		map[string][]string{"perp_age_group": {"UNKNOWN-AGE"}},
	)
}

func TestRulesApply(t *testing.T) {
	rules := testRules()

	tests := []struct {
		name   string
		field  string
		value  string
		expect string
	}{
		{"empty string on designated field", "perp_age_group", "", domain.Unknown},
		{"null marker on designated field", "perp_age_group", "(null)", domain.Unknown},
		{"single-letter placeholder", "perp_sex", "U", domain.Unknown},
		{"malformed numeric code", "perp_age_group", "1020", domain.Unknown},
		{"field-specific sentinel", "perp_age_group", "UNKNOWN-AGE", domain.Unknown},
		{"legitimate value passes through", "perp_age_group", "25-44", "25-44"},
		{"case-sensitive: lowercase u is untouched", "perp_sex", "u", "u"},
		{"no partial match: value containing sentinel is untouched", "perp_sex", "U18", "U18"},
		{"non-designated field is never touched", "occur_date", "", ""},
		{"non-designated field keeps weekday-like value", "weekday_col", "Monday", "Monday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.RawRecord{Row: 1, Fields: map[string]string{tt.field: tt.value}}
			got := rules.Apply(rec)
			assert.Equal(t, tt.expect, got.Fields[tt.field])
		})
	}
}

func TestRulesApplyIsIdempotent(t *testing.T) {
	rules := testRules()
	rec := domain.RawRecord{Row: 1, Fields: map[string]string{
		"perp_age_group": "(null)",
		"perp_sex":       "M",
		"boro":           "QUEENS",
	}}

	once := rules.Apply(rec)
	twice := rules.Apply(once)
	assert.Equal(t, once.Fields, twice.Fields)
	assert.Equal(t, domain.Unknown, twice.Fields["perp_age_group"])
	assert.Equal(t, "M", twice.Fields["perp_sex"])
}

func TestRulesApplyDoesNotMutateInput(t *testing.T) {
	rules := testRules()
	rec := domain.RawRecord{Row: 3, Fields: map[string]string{"perp_sex": "U"}}

	out := rules.Apply(rec)
	assert.Equal(t, "U", rec.Fields["perp_sex"])
	assert.Equal(t, domain.Unknown, out.Fields["perp_sex"])
}

func TestRulesApplyPerFieldIndependence(t *testing.T) {
	rules := testRules()
	// A bad value on one field never influences another field.
	rec := domain.RawRecord{Row: 1, Fields: map[string]string{
		"perp_age_group": "(null)",
		"perp_sex":       "F",
	}}
	out := rules.Apply(rec)
	assert.Equal(t, domain.Unknown, out.Fields["perp_age_group"])
	assert.Equal(t, "F", out.Fields["perp_sex"])
}

func TestApplyAllPreservesOrder(t *testing.T) {
	rules := testRules()
	table := &domain.Table{
		Header: []string{"perp_sex"},
		Rows: []domain.RawRecord{
			{Row: 1, Fields: map[string]string{"perp_sex": "M"}},
			{Row: 2, Fields: map[string]string{"perp_sex": "U"}},
			{Row: 3, Fields: map[string]string{"perp_sex": "F"}},
		},
	}

	out, err := ApplyAll(context.Background(), rules, table)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].Row)
	assert.Equal(t, "M", out[0].Fields["perp_sex"])
	assert.Equal(t, domain.Unknown, out[1].Fields["perp_sex"])
	assert.Equal(t, "F", out[2].Fields["perp_sex"])
}

func TestApplyAllEmptyTable(t *testing.T) {
	out, err := ApplyAll(context.Background(), testRules(), &domain.Table{Header: []string{"a"}})
	require.NoError(t, err)
	assert.Empty(t, out)
}
