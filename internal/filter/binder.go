package filter

import (
	"regexp"
	"strings"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/template"
	"github.com/rs/zerolog"
)

// Binder resolves dashboard filter state into SQL fragments inside query templates
type Binder struct {
	logger zerolog.Logger
}

// Option configures a Binder
type Option func(*Binder)

// WithLogger sets the logger used for binding diagnostics
func WithLogger(l zerolog.Logger) Option {
	return func(b *Binder) {
		b.logger = l
	}
}

// NewBinder creates a new filter binder
func NewBinder(opts ...Option) *Binder {
	b := &Binder{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BindFilters binds filters with the default binder
func BindFilters(sql, dashboardID string, filters []models.Filter, bindings []models.QueryFilterBinding) string {
	return NewBinder().BindFilters(sql, dashboardID, filters, bindings)
}

// Placeholder returns the literal dashboard placeholder text for a filter key
func Placeholder(key string) string {
	return "{{" + key + "}}"
}

// QuotePlaceholder returns a pattern matching Placeholder(key) literally.
// Filter keys may contain regexp metacharacters.
func QuotePlaceholder(key string) string {
	return regexp.QuoteMeta(Placeholder(key))
}

// BindFilters replaces every bound {{filterKey}} placeholder in sql with its active
// or inactive fragment. Only bindings of dashboardID apply, in the order supplied;
// the first binding for a key wins. Fragments are inserted literally and never rescanned.
func (b *Binder) BindFilters(sql, dashboardID string, filters []models.Filter, bindings []models.QueryFilterBinding) string {
	byKey := make(map[string]models.Filter, len(filters))
	for _, f := range filters {
		if _, exists := byKey[f.Key]; !exists {
			byKey[f.Key] = f
		}
	}

	fragments := make(map[string]string)
	var patterns []string

	for _, binding := range bindings {
		if binding.DashboardID != dashboardID {
			continue
		}

		placeholder := Placeholder(binding.FilterKey)
		if _, bound := fragments[placeholder]; bound {
			b.logger.Debug().Str("filter", binding.FilterKey).Msg("duplicate binding ignored")
			continue
		}
		if !strings.Contains(sql, placeholder) {
			b.logger.Debug().Str("filter", binding.FilterKey).Msg("placeholder not in query, binding skipped")
			continue
		}

		fragments[placeholder] = b.fragment(binding, byKey)
		patterns = append(patterns, QuotePlaceholder(binding.FilterKey))
	}

	if len(patterns) == 0 {
		return sql
	}

	re := regexp.MustCompile(strings.Join(patterns, "|"))
	return re.ReplaceAllStringFunc(sql, func(m string) string {
		return fragments[m]
	})
}

// fragment picks the active or inactive branch of a binding
func (b *Binder) fragment(binding models.QueryFilterBinding, byKey map[string]models.Filter) string {
	f, ok := byKey[binding.FilterKey]
	if !ok || !f.Active {
		b.logger.Debug().
			Str("filter", binding.FilterKey).
			Bool("found", ok).
			Msg("using inactive branch")
		return binding.InactiveValue
	}

	val := FormatFilterValue(f.EffectiveValue(), f.Type)
	return template.Render(binding.ActiveValue, template.Scope{"val": val})
}

// OperatorsForType returns the operators a column filter of the given type recognizes
func OperatorsForType(t models.ColumnType) []models.Operator {
	switch t {
	case models.ColumnString:
		return []models.Operator{
			models.OpContains, models.OpNotContains,
			models.OpEquals, models.OpNotEquals,
			models.OpStartsWith, models.OpEndsWith,
			models.OpIsEmpty, models.OpIsNotEmpty,
		}
	case models.ColumnNumber:
		return []models.Operator{
			models.OpEquals, models.OpNotEquals,
			models.OpGreaterThan, models.OpGreaterOrEqual,
			models.OpLessThan, models.OpLessOrEqual,
			models.OpBetween,
			models.OpIsEmpty, models.OpIsNotEmpty,
		}
	case models.ColumnDate:
		return []models.Operator{
			models.OpEquals, models.OpNotEquals,
			models.OpAfter, models.OpAfterOrOn,
			models.OpBefore, models.OpBeforeOrOn,
			models.OpBetween,
			models.OpIsEmpty, models.OpIsNotEmpty,
		}
	case models.ColumnBoolean:
		return []models.Operator{
			models.OpIsTrue, models.OpIsFalse,
		}
	default:
		return nil
	}
}

// SupportsOperator reports whether op is recognized for columns of type t
func SupportsOperator(t models.ColumnType, op models.Operator) bool {
	for _, candidate := range OperatorsForType(t) {
		if candidate == op {
			return true
		}
	}
	return false
}
