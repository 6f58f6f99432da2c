package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/template"
	"github.com/spf13/cast"
)

// NullLiteral is emitted for absent values of any type
const NullLiteral = "NULL"

// dateRangeJoin closes the first quoted date and opens the second; the template
// supplies only the outer quotes
const dateRangeJoin = "' AND '"

// EscapeString doubles embedded single quotes
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// FormatFilterValue renders a filter value as an inline SQL fragment for the
// quoted or unquoted position the template author designed.
// Unknown types fall through to unescaped stringification.
func FormatFilterValue(value any, t models.FilterType) string {
	if value == nil {
		return NullLiteral
	}

	switch t {
	case models.FilterString:
		return EscapeString(template.Stringify(value))
	case models.FilterInteger, models.FilterFloat:
		return formatNumber(value)
	case models.FilterBoolean:
		return strconv.FormatBool(cast.ToBool(value))
	case models.FilterDate:
		return formatDate(value)
	case models.FilterDateRange:
		lo, hi, ok := pair(value)
		if !ok {
			return template.Stringify(value)
		}
		return formatDate(lo) + dateRangeJoin + formatDate(hi)
	case models.FilterIntegerRange, models.FilterFloatRange:
		lo, hi, ok := pair(value)
		if !ok {
			return template.Stringify(value)
		}
		return formatNumber(lo) + " AND " + formatNumber(hi)
	case models.FilterList:
		items, ok := models.AsSlice(value)
		if !ok {
			items = []any{value}
		}
		quoted := make([]string, len(items))
		for i, item := range items {
			quoted[i] = "'" + EscapeString(template.Stringify(item)) + "'"
		}
		return strings.Join(quoted, ", ")
	default:
		return template.Stringify(value)
	}
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case nil:
		return NullLiteral
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	}
	return template.Stringify(v)
}

func formatDate(v any) string {
	switch d := v.(type) {
	case nil:
		return NullLiteral
	case time.Time:
		return d.Format(template.DateLayout)
	case *time.Time:
		if d == nil {
			return NullLiteral
		}
		return d.Format(template.DateLayout)
	}
	return template.Stringify(v)
}

func pair(v any) (any, any, bool) {
	items, ok := models.AsSlice(v)
	if !ok || len(items) != 2 {
		return nil, nil, false
	}
	return items[0], items[1], true
}
