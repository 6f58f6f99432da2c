package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTypeValid(t *testing.T) {
	for _, ft := range FilterTypes {
		assert.True(t, ft.Valid(), ft)
	}
	assert.False(t, FilterType("datetime").Valid())
	assert.False(t, FilterType("").Valid())
}

func TestFilterTypeIsRange(t *testing.T) {
	assert.True(t, FilterDateRange.IsRange())
	assert.True(t, FilterIntegerRange.IsRange())
	assert.True(t, FilterFloatRange.IsRange())
	assert.False(t, FilterList.IsRange())
	assert.False(t, FilterDate.IsRange())
}

func TestEffectiveValue(t *testing.T) {
	f := Filter{Key: "region", Type: FilterString, InitialValue: "EU"}
	assert.Equal(t, "EU", f.EffectiveValue())

	f.CurrentValue = "US"
	assert.Equal(t, "US", f.EffectiveValue())
}

func TestFilterValidate(t *testing.T) {
	testCases := []struct {
		name    string
		filter  Filter
		wantErr string
	}{
		{"valid string", Filter{Key: "a", Type: FilterString, InitialValue: "x"}, ""},
		{"empty key", Filter{Type: FilterString}, "key cannot be empty"},
		{"unknown type", Filter{Key: "a", Type: "money"}, "unknown type"},
		{"range pair", Filter{Key: "a", Type: FilterIntegerRange, InitialValue: []any{1, 5}}, ""},
		{"range reversed is allowed", Filter{Key: "a", Type: FilterFloatRange, InitialValue: []float64{9, 1}}, ""},
		{"range wrong length", Filter{Key: "a", Type: FilterIntegerRange, InitialValue: []any{1}}, "[lower, upper] pair"},
		{"range scalar", Filter{Key: "a", Type: FilterDateRange, CurrentValue: "2024-01-01"}, "current value must be"},
		{"list scalar", Filter{Key: "a", Type: FilterList, InitialValue: "x"}, "must be a list"},
		{"list typed slice", Filter{Key: "a", Type: FilterList, InitialValue: []string{"x"}}, ""},
		{
			"list outside options",
			Filter{Key: "a", Type: FilterList, InitialValue: []any{"x", "z"}, Options: []FilterOption{{Label: "X", Value: "x"}}},
			"z which is not an option",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestBindingValidate(t *testing.T) {
	b := QueryFilterBinding{FilterKey: "region", ActiveValue: "region = '{{val}}'", InactiveValue: "1=1"}
	assert.NoError(t, b.Validate())

	b.InactiveValue = "region = '{{val}}'"
	assert.Error(t, b.Validate())

	assert.Error(t, QueryFilterBinding{}.Validate())
}

func TestAsSlice(t *testing.T) {
	s, ok := AsSlice([]string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, s)

	_, ok = AsSlice("ab")
	assert.False(t, ok)
	_, ok = AsSlice([]byte("ab"))
	assert.False(t, ok)
	_, ok = AsSlice(nil)
	assert.False(t, ok)
}
