// Package predicate evaluates column filters against in-memory row values.
package predicate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rebeliceyang/lazydash/internal/filter"
	"github.com/rebeliceyang/lazydash/internal/models"
)

// UnknownOperatorPolicy decides the outcome of an operator a type does not recognize
type UnknownOperatorPolicy string

const (
	// ExcludeUnknown drops the row (fail-closed)
	ExcludeUnknown UnknownOperatorPolicy = "exclude"
	// IncludeUnknown keeps the row (fail-open)
	IncludeUnknown UnknownOperatorPolicy = "include"
)

// ParsePolicy maps a config string onto a policy, defaulting to ExcludeUnknown
func ParsePolicy(s string) UnknownOperatorPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(IncludeUnknown)) {
		return IncludeUnknown
	}
	return ExcludeUnknown
}

// Evaluator evaluates column filters. The zero value fails closed on unknown operators.
type Evaluator struct {
	Policy UnknownOperatorPolicy
}

// NewEvaluator creates an evaluator with the given policy
func NewEvaluator(policy UnknownOperatorPolicy) Evaluator {
	return Evaluator{Policy: policy}
}

// Matches evaluates f with the default fail-closed evaluator
func Matches(rowValue any, f models.ColumnFilter) bool {
	return Evaluator{}.Matches(rowValue, f)
}

// Matches reports whether rowValue satisfies f.
// A nil row value matches only isEmpty, whatever the column type.
func (e Evaluator) Matches(rowValue any, f models.ColumnFilter) bool {
	if isNil(rowValue) {
		return f.Operator == models.OpIsEmpty
	}

	var result, ok bool
	switch f.Type {
	case models.ColumnString:
		result, ok = matchString(rowValue, f)
	case models.ColumnNumber:
		result, ok = matchNumber(rowValue, f)
	case models.ColumnDate:
		result, ok = matchDate(rowValue, f)
	case models.ColumnBoolean:
		result, ok = matchBoolean(rowValue, f)
	}
	if !ok {
		return e.Policy == IncludeUnknown
	}
	return result
}

// Validate reports a column filter whose operator is not recognized for its type
func Validate(f models.ColumnFilter) error {
	if f.Column == "" {
		return fmt.Errorf("column filter has no column")
	}
	if filter.OperatorsForType(f.Type) == nil {
		return fmt.Errorf("column %q: unknown type %q", f.Column, f.Type)
	}
	if !filter.SupportsOperator(f.Type, f.Operator) {
		return fmt.Errorf("column %q: operator %q is not supported for %s columns", f.Column, f.Operator, f.Type)
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
