package predicate

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/template"
	"github.com/spf13/cast"
)

// Each matcher returns (result, recognized). recognized is false for an
// operator outside the type's operator set.

func matchString(rowValue any, f models.ColumnFilter) (bool, bool) {
	rv := strings.ToLower(template.Stringify(rowValue))
	fv := strings.ToLower(template.Stringify(f.Value))

	switch f.Operator {
	case models.OpContains:
		return strings.Contains(rv, fv), true
	case models.OpNotContains:
		return !strings.Contains(rv, fv), true
	case models.OpEquals:
		return rv == fv, true
	case models.OpNotEquals:
		return rv != fv, true
	case models.OpStartsWith:
		return strings.HasPrefix(rv, fv), true
	case models.OpEndsWith:
		return strings.HasSuffix(rv, fv), true
	case models.OpIsEmpty:
		return strings.TrimSpace(rv) == "", true
	case models.OpIsNotEmpty:
		return strings.TrimSpace(rv) != "", true
	}
	return false, false
}

func matchNumber(rowValue any, f models.ColumnFilter) (bool, bool) {
	n, isNum := ToNumber(rowValue)

	switch f.Operator {
	case models.OpIsEmpty:
		return !isNum, true
	case models.OpIsNotEmpty:
		return isNum, true
	case models.OpBetween:
		lo, okLo := ToNumber(f.Value)
		hi, okHi := ToNumber(f.ValueTo)
		return isNum && okLo && okHi && n >= lo && n <= hi, true
	}

	var cmp func(a, b float64) bool
	switch f.Operator {
	case models.OpEquals:
		cmp = func(a, b float64) bool { return a == b }
	case models.OpNotEquals:
		cmp = func(a, b float64) bool { return a != b }
	case models.OpGreaterThan:
		cmp = func(a, b float64) bool { return a > b }
	case models.OpGreaterOrEqual:
		cmp = func(a, b float64) bool { return a >= b }
	case models.OpLessThan:
		cmp = func(a, b float64) bool { return a < b }
	case models.OpLessOrEqual:
		cmp = func(a, b float64) bool { return a <= b }
	default:
		return false, false
	}

	v, ok := ToNumber(f.Value)
	return isNum && ok && cmp(n, v), true
}

func matchDate(rowValue any, f models.ColumnFilter) (bool, bool) {
	ms, isDate := ToMillis(rowValue)

	switch f.Operator {
	case models.OpIsEmpty:
		return !isDate, true
	case models.OpIsNotEmpty:
		return isDate, true
	case models.OpBetween:
		lo, okLo := ToMillis(f.Value)
		hi, okHi := ToMillis(f.ValueTo)
		return isDate && okLo && okHi && ms >= lo && ms <= hi, true
	}

	var cmp func(a, b int64) bool
	switch f.Operator {
	case models.OpEquals:
		cmp = func(a, b int64) bool { return a == b }
	case models.OpNotEquals:
		cmp = func(a, b int64) bool { return a != b }
	case models.OpAfter:
		cmp = func(a, b int64) bool { return a > b }
	case models.OpAfterOrOn:
		cmp = func(a, b int64) bool { return a >= b }
	case models.OpBefore:
		cmp = func(a, b int64) bool { return a < b }
	case models.OpBeforeOrOn:
		cmp = func(a, b int64) bool { return a <= b }
	default:
		return false, false
	}

	v, ok := ToMillis(f.Value)
	return isDate && ok && cmp(ms, v), true
}

func matchBoolean(rowValue any, f models.ColumnFilter) (bool, bool) {
	b, isBool := rowValue.(bool)

	switch f.Operator {
	case models.OpIsTrue:
		return isBool && b, true
	case models.OpIsFalse:
		return isBool && !b, true
	}
	return false, false
}

// ToNumber coerces v to a finite-or-infinite float; NaN, blank and unparsable values are not numbers
func ToNumber(v any) (float64, bool) {
	var n float64
	switch val := v.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	case time.Time:
		return 0, false
	default:
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		n = parsed
	}
	if math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// maxEpochMillis bounds numeric timestamps to +/-100,000,000 days around the epoch
const maxEpochMillis = 8.64e15

// ToMillis coerces v to a millisecond epoch timestamp.
// Numbers are taken as milliseconds, strings are parsed as dates in UTC unless they carry a zone.
func ToMillis(v any) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		if val.IsZero() {
			return 0, false
		}
		return val.UnixMilli(), true
	case *time.Time:
		if val == nil || val.IsZero() {
			return 0, false
		}
		return val.UnixMilli(), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		t, err := cast.ToTimeE(s)
		if err != nil {
			return 0, false
		}
		return t.UnixMilli(), true
	case bool:
		return 0, false
	}

	n, ok := ToNumber(v)
	if !ok || math.Abs(n) > maxEpochMillis {
		return 0, false
	}
	return int64(n), true
}
