package cli

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/predicate"
	"github.com/spf13/cast"
)

// parseFilterValue converts command-line arguments into a value of filter type t.
// Range types take two arguments, lists take any number, string joins its words.
func parseFilterValue(t models.FilterType, args []string) (any, error) {
	switch t {
	case models.FilterIntegerRange, models.FilterFloatRange, models.FilterDateRange:
		if len(args) != 2 {
			return nil, fmt.Errorf("%s filter needs a lower and an upper value, got %d", t, len(args))
		}
		lo, err := parseScalar(rangeElement(t), args[0])
		if err != nil {
			return nil, err
		}
		hi, err := parseScalar(rangeElement(t), args[1])
		if err != nil {
			return nil, err
		}
		return []any{lo, hi}, nil
	case models.FilterList:
		items := make([]any, len(args))
		for i, a := range args {
			items[i] = a
		}
		return items, nil
	case models.FilterString:
		return strings.Join(args, " "), nil
	}

	if len(args) != 1 {
		return nil, fmt.Errorf("%s filter needs exactly one value, got %d", t, len(args))
	}
	return parseScalar(t, args[0])
}

func rangeElement(t models.FilterType) models.FilterType {
	switch t {
	case models.FilterIntegerRange:
		return models.FilterInteger
	case models.FilterFloatRange:
		return models.FilterFloat
	default:
		return models.FilterDate
	}
}

func parseScalar(t models.FilterType, s string) (any, error) {
	switch t {
	case models.FilterInteger:
		v, err := cast.ToInt64E(s)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return v, nil
	case models.FilterFloat:
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		return v, nil
	case models.FilterBoolean:
		v, err := cast.ToBoolE(s)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return v, nil
	case models.FilterDate:
		// dates are stored as written once they parse
		if _, err := cast.ToTimeE(s); err != nil {
			return nil, fmt.Errorf("invalid date %q", s)
		}
		return s, nil
	default:
		return s, nil
	}
}

// parseColumnFilter parses column:operator[:value] against the declared columns.
// between takes its bounds as lower..upper so date-times keep their colons.
func parseColumnFilter(spec string, columns []models.Column) (models.ColumnFilter, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return models.ColumnFilter{}, fmt.Errorf("invalid filter %q (want column:operator[:value])", spec)
	}

	var col models.Column
	found := false
	for _, c := range columns {
		if strings.EqualFold(c.Key, parts[0]) {
			col, found = c, true
			break
		}
	}
	if !found {
		return models.ColumnFilter{}, fmt.Errorf("filter %q: unknown column %q", spec, parts[0])
	}

	f := models.ColumnFilter{
		Column:   col.Key,
		Type:     col.Type,
		Operator: models.Operator(parts[1]),
	}
	if len(parts) == 3 {
		f.Value = parts[2]
	}
	if f.Operator == models.OpBetween {
		if len(parts) < 3 {
			return models.ColumnFilter{}, fmt.Errorf("filter %q: between needs two bounds", spec)
		}
		lower, upper, ok := strings.Cut(parts[2], "..")
		if !ok || lower == "" || upper == "" {
			return models.ColumnFilter{}, fmt.Errorf("filter %q: between needs two bounds (lower..upper)", spec)
		}
		f.Value, f.ValueTo = lower, upper
	}

	if err := predicate.Validate(f); err != nil {
		return models.ColumnFilter{}, err
	}
	return f, nil
}

// parseSort parses column[:asc|:desc]
func parseSort(spec string) (string, models.SortDirection, error) {
	column, dir, found := strings.Cut(spec, ":")
	if !found {
		return column, models.SortAsc, nil
	}
	switch models.SortDirection(strings.ToLower(dir)) {
	case models.SortAsc:
		return column, models.SortAsc, nil
	case models.SortDesc:
		return column, models.SortDesc, nil
	}
	return "", models.SortNone, fmt.Errorf("invalid sort direction %q (want asc or desc)", dir)
}
