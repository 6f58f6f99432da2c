// Package refine narrows loaded rows for display: search, column filters, sort and pagination.
package refine

import (
	"slices"
	"strings"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/predicate"
	"github.com/rebeliceyang/lazydash/internal/template"
)

// Options holds the inputs of one refinement
type Options struct {
	SearchTerm     string
	FilterableKeys []string
	ColumnFilters  []models.ColumnFilter
	SortColumn     string
	SortDirection  models.SortDirection
	Evaluator      predicate.Evaluator
}

// Refine applies search, then every column filter (AND), then a stable sort.
// The input slice is never modified.
func Refine(rows []models.Row, opts Options) []models.Row {
	out := make([]models.Row, 0, len(rows))

	term := strings.ToLower(strings.TrimSpace(opts.SearchTerm))
	for _, row := range rows {
		if term != "" && !matchesSearch(row, opts.FilterableKeys, term) {
			continue
		}
		if !matchesFilters(row, opts.ColumnFilters, opts.Evaluator) {
			continue
		}
		out = append(out, row)
	}

	if opts.SortColumn != "" && opts.SortDirection != models.SortNone {
		key := opts.SortColumn
		desc := opts.SortDirection == models.SortDesc
		slices.SortStableFunc(out, func(a, b models.Row) int {
			c := Compare(a[key], b[key])
			if desc {
				return -c
			}
			return c
		})
	}

	return out
}

func matchesSearch(row models.Row, keys []string, term string) bool {
	for _, key := range keys {
		if strings.Contains(strings.ToLower(template.Stringify(row[key])), term) {
			return true
		}
	}
	return false
}

func matchesFilters(row models.Row, filters []models.ColumnFilter, e predicate.Evaluator) bool {
	for _, f := range filters {
		if !e.Matches(row[f.Column], f) {
			return false
		}
	}
	return true
}

// Compare orders two cell values without locale collation.
// nil sorts before everything; numbers compare numerically, strings by bytes,
// times chronologically, false before true; mixed kinds compare by their text.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	default:
		an, aok := numeric(a)
		bn, bok := numeric(b)
		if aok && bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(template.Stringify(a), template.Stringify(b))
}

func numeric(v any) (float64, bool) {
	switch v.(type) {
	case string, bool, time.Time:
		return 0, false
	}
	return predicate.ToNumber(v)
}
