package dashboard

import (
	"fmt"
	"time"

	"github.com/rebeliceyang/lazydash/internal/filter"
	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/refine"
	"github.com/rebeliceyang/lazydash/internal/template"
)

// Rendered is the output of rendering one block
type Rendered struct {
	BlockID  string
	Type     BlockType
	Text     string
	SQL      string
	Table    *TableBlock
	Warnings []template.Warning
}

// FilterScope exposes the effective values of active filters to text templates
func FilterScope(filters []models.Filter) template.Scope {
	scope := template.Scope{}
	for _, f := range filters {
		if f.Active {
			scope[f.Key] = f.EffectiveValue()
		}
	}
	return scope
}

// RenderBlock renders b within d. Text blocks substitute system, dashboard
// and block variables; query and table blocks bind the dashboard filters.
// A nil binder uses the package default.
func RenderBlock(d Dashboard, b Block, now time.Time, binder *filter.Binder) (Rendered, error) {
	cfg, err := b.Config()
	if err != nil {
		return Rendered{}, err
	}
	if binder == nil {
		binder = filter.NewBinder()
	}

	out := Rendered{BlockID: b.ID, Type: b.Type}

	switch c := cfg.(type) {
	case TextBlock:
		dashboardScope := template.Merge(FilterScope(d.Filters), template.Scope(d.Variables))
		out.Text = template.Render(c.Template, template.SystemScope(now), dashboardScope, template.Scope(b.Variables))
		out.Warnings = template.Validate(c.Template)
	case QueryBlock:
		out.SQL = binder.BindFilters(c.SQL, d.ID, d.Filters, d.Bindings)
		out.Warnings = sqlWarnings(c.SQL, out.SQL)
	case TableBlock:
		out.SQL = binder.BindFilters(c.SQL, d.ID, d.Filters, d.Bindings)
		out.Warnings = sqlWarnings(c.SQL, out.SQL)
		out.Table = &c
	default:
		return Rendered{}, fmt.Errorf("block %q: unhandled block config %T", b.ID, cfg)
	}

	return out, nil
}

// RenderAll renders every block of d in order, stopping at the first broken block
func RenderAll(d Dashboard, now time.Time, binder *filter.Binder) ([]Rendered, error) {
	out := make([]Rendered, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		r, err := RenderBlock(d, b, now, binder)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// sqlWarnings reports template syntax issues plus placeholders left unbound
func sqlWarnings(tmpl, bound string) []template.Warning {
	warnings := template.Validate(tmpl)
	for _, name := range template.Placeholders(bound) {
		warnings = append(warnings, template.Warning{
			Offset:  -1,
			Message: fmt.Sprintf("placeholder {{%s}} has no filter binding", name),
		})
	}
	return warnings
}

// NewTable opens a refinement session for a table block. Block settings
// override the defaults; declared column filters are applied initially.
func NewTable(tb TableBlock, defaults refine.TableOptions) *refine.Table {
	opts := defaults
	if tb.PageSize > 0 {
		opts.PageSize = tb.PageSize
	}
	if tb.SortMode != "" {
		opts.SortMode = tb.SortMode
	}
	t := refine.NewTable(tb.Columns, opts)
	if len(tb.Filters) > 0 {
		t.SetColumnFilters(tb.Filters)
	}
	return t
}
