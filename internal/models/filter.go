package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// FilterType is the value shape of a dashboard filter
type FilterType string

const (
	FilterString       FilterType = "string"
	FilterDate         FilterType = "date"
	FilterDateRange    FilterType = "date_range"
	FilterList         FilterType = "list"
	FilterInteger      FilterType = "integer"
	FilterFloat        FilterType = "float"
	FilterIntegerRange FilterType = "integer_range"
	FilterFloatRange   FilterType = "float_range"
	FilterBoolean      FilterType = "boolean"
)

// FilterTypes lists every valid filter type
var FilterTypes = []FilterType{
	FilterString, FilterDate, FilterDateRange, FilterList,
	FilterInteger, FilterFloat, FilterIntegerRange, FilterFloatRange,
	FilterBoolean,
}

// Valid reports whether t belongs to the closed set of filter types
func (t FilterType) Valid() bool {
	for _, ft := range FilterTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// IsRange reports whether values of this type are [lower, upper] pairs
func (t FilterType) IsRange() bool {
	return t == FilterDateRange || t == FilterIntegerRange || t == FilterFloatRange
}

// FilterOption is a selectable label/value pair of a list filter
type FilterOption struct {
	Label string `yaml:"label" json:"label"`
	Value any    `yaml:"value" json:"value"`
}

// Filter is a dashboard-scoped, typed user control
type Filter struct {
	ID           string         `yaml:"id" json:"id"`
	Key          string         `yaml:"key" json:"key"`
	Name         string         `yaml:"name" json:"name"`
	Type         FilterType     `yaml:"type" json:"type"`
	Active       bool           `yaml:"active" json:"active"`
	InitialValue any            `yaml:"initial_value" json:"initialValue"`
	CurrentValue any            `yaml:"current_value,omitempty" json:"currentValue,omitempty"`
	Options      []FilterOption `yaml:"options,omitempty" json:"options,omitempty"`
	Min          *float64       `yaml:"min,omitempty" json:"min,omitempty"`
	Max          *float64       `yaml:"max,omitempty" json:"max,omitempty"`
}

// EffectiveValue returns CurrentValue when set, else InitialValue
func (f Filter) EffectiveValue() any {
	if f.CurrentValue != nil {
		return f.CurrentValue
	}
	return f.InitialValue
}

// Validate checks the shape invariants of the filter.
// The binding engine never calls it; it exists for editors and stores.
func (f Filter) Validate() error {
	var errs []error

	if strings.TrimSpace(f.Key) == "" {
		errs = append(errs, errors.New("filter key cannot be empty"))
	}
	if !f.Type.Valid() {
		errs = append(errs, fmt.Errorf("filter %q: unknown type %q", f.Key, f.Type))
	}

	check := func(label string, v any) {
		if v == nil {
			return
		}
		switch {
		case f.Type.IsRange():
			if n, ok := sliceLen(v); !ok || n != 2 {
				errs = append(errs, fmt.Errorf("filter %q: %s must be a [lower, upper] pair", f.Key, label))
			}
		case f.Type == FilterList:
			if _, ok := sliceLen(v); !ok {
				errs = append(errs, fmt.Errorf("filter %q: %s must be a list", f.Key, label))
			} else if len(f.Options) > 0 {
				for _, item := range toSlice(v) {
					if !f.hasOption(item) {
						errs = append(errs, fmt.Errorf("filter %q: %s contains %v which is not an option", f.Key, label, item))
					}
				}
			}
		}
	}
	check("initial value", f.InitialValue)
	check("current value", f.CurrentValue)

	return errors.Join(errs...)
}

func (f Filter) hasOption(v any) bool {
	for _, opt := range f.Options {
		if fmt.Sprint(opt.Value) == fmt.Sprint(v) {
			return true
		}
	}
	return false
}

// QueryFilterBinding maps a filter key to the SQL fragments used for its
// active and inactive states inside one dashboard's query templates
type QueryFilterBinding struct {
	DashboardID   string `yaml:"dashboard_id" json:"dashboardId"`
	FilterKey     string `yaml:"filter_key" json:"filterKey"`
	ActiveValue   string `yaml:"active_value" json:"activeValue"`
	InactiveValue string `yaml:"inactive_value" json:"inactiveValue"`
}

// ValuePlaceholder is substituted inside ActiveValue with the formatted filter value
const ValuePlaceholder = "{{val}}"

// Validate reports bindings whose inactive branch expects a value
func (b QueryFilterBinding) Validate() error {
	if strings.TrimSpace(b.FilterKey) == "" {
		return errors.New("binding filter key cannot be empty")
	}
	if strings.Contains(b.InactiveValue, ValuePlaceholder) {
		return fmt.Errorf("binding %q: inactive value must not contain %s", b.FilterKey, ValuePlaceholder)
	}
	return nil
}

// AsSlice returns v as []any when it is a slice or array
func AsSlice(v any) ([]any, bool) {
	if _, ok := sliceLen(v); !ok {
		return nil, false
	}
	return toSlice(v), true
}

func sliceLen(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return 0, false
	}
	// []byte is a scalar for our purposes
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return 0, false
	}
	return rv.Len(), true
}

func toSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
