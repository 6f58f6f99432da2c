package refine

import (
	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/predicate"
)

// TableOptions configures a Table session
type TableOptions struct {
	PageSize  int
	SortMode  models.SortMode
	Evaluator predicate.Evaluator
}

// Table is the refinement state of one table in one UI session.
// Changing rows, search, sort or column filters returns to page 1.
type Table struct {
	columns []models.Column
	opts    TableOptions

	rows       []models.Row
	search     string
	filters    []models.ColumnFilter
	sortColumn string
	sortDir    models.SortDirection
	page       int
}

// NewTable creates a table session over the declared columns
func NewTable(columns []models.Column, opts TableOptions) *Table {
	if opts.SortMode == "" {
		opts.SortMode = models.SortModeTriState
	}
	return &Table{
		columns: columns,
		opts:    opts,
		page:    1,
	}
}

// Columns returns the declared columns
func (t *Table) Columns() []models.Column {
	return t.columns
}

// Column looks up a declared column by key
func (t *Table) Column(key string) (models.Column, bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return models.Column{}, false
}

// FilterableKeys returns the keys searched by SetSearch
func (t *Table) FilterableKeys() []string {
	var keys []string
	for _, c := range t.columns {
		if c.Filterable {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// SetRows replaces the upstream data
func (t *Table) SetRows(rows []models.Row) {
	t.rows = rows
	t.page = 1
}

// Rows returns the upstream data before refinement
func (t *Table) Rows() []models.Row {
	return t.rows
}

// Evaluator returns the evaluator used for column filters
func (t *Table) Evaluator() predicate.Evaluator {
	return t.opts.Evaluator
}

// SetSearch sets the free-text search term
func (t *Table) SetSearch(term string) {
	if term == t.search {
		return
	}
	t.search = term
	t.page = 1
}

// Search returns the current search term
func (t *Table) Search() string {
	return t.search
}

// SetSort sets the sort column and direction directly.
// Columns that are not sortable are ignored.
func (t *Table) SetSort(column string, dir models.SortDirection) {
	if dir == models.SortNone {
		column = ""
	} else if c, ok := t.Column(column); !ok || !c.Sortable {
		return
	}
	if column == t.sortColumn && dir == t.sortDir {
		return
	}
	t.sortColumn = column
	t.sortDir = dir
	t.page = 1
}

// Sort returns the current sort column and direction
func (t *Table) Sort() (string, models.SortDirection) {
	return t.sortColumn, t.sortDir
}

// ToggleSort handles a header activation on column.
// A different column starts ascending; the same column advances per the sort mode.
func (t *Table) ToggleSort(column string) {
	if c, ok := t.Column(column); !ok || !c.Sortable {
		return
	}

	if column != t.sortColumn || t.sortDir == models.SortNone {
		t.SetSort(column, models.SortAsc)
		return
	}

	switch t.sortDir {
	case models.SortAsc:
		t.SetSort(column, models.SortDesc)
	case models.SortDesc:
		if t.opts.SortMode == models.SortModeBinary {
			t.SetSort(column, models.SortAsc)
		} else {
			t.SetSort("", models.SortNone)
		}
	}
}

// ColumnFilters returns a copy of the active column filters
func (t *Table) ColumnFilters() []models.ColumnFilter {
	return append([]models.ColumnFilter(nil), t.filters...)
}

// SetColumnFilters replaces every column filter
func (t *Table) SetColumnFilters(filters []models.ColumnFilter) {
	t.filters = append([]models.ColumnFilter(nil), filters...)
	t.page = 1
}

// AddColumnFilter adds a filter; filters are combined with AND
func (t *Table) AddColumnFilter(f models.ColumnFilter) {
	t.filters = append(t.filters, f)
	t.page = 1
}

// SetColumnFilter replaces the filters on f.Column with f
func (t *Table) SetColumnFilter(f models.ColumnFilter) {
	kept := t.filters[:0:0]
	for _, existing := range t.filters {
		if existing.Column != f.Column {
			kept = append(kept, existing)
		}
	}
	t.filters = append(kept, f)
	t.page = 1
}

// RemoveColumnFilter drops every filter on column
func (t *Table) RemoveColumnFilter(column string) {
	kept := t.filters[:0:0]
	for _, existing := range t.filters {
		if existing.Column != column {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(t.filters) {
		return
	}
	t.filters = kept
	t.page = 1
}

// ClearColumnFilters drops all column filters
func (t *Table) ClearColumnFilters() {
	if len(t.filters) == 0 {
		return
	}
	t.filters = nil
	t.page = 1
}

// Page returns the requested page number
func (t *Table) Page() int {
	return t.page
}

// SetPage moves to page n, clamped to the available pages
func (t *Table) SetPage(n int) {
	t.page = Paginate(t.Refined(), n, t.opts.PageSize).Page
}

// NextPage moves forward one page if possible
func (t *Table) NextPage() {
	t.SetPage(t.page + 1)
}

// PrevPage moves back one page if possible
func (t *Table) PrevPage() {
	t.SetPage(t.page - 1)
}

// Refined returns all rows that pass search and column filters, sorted
func (t *Table) Refined() []models.Row {
	return Refine(t.rows, Options{
		SearchTerm:     t.search,
		FilterableKeys: t.FilterableKeys(),
		ColumnFilters:  t.filters,
		SortColumn:     t.sortColumn,
		SortDirection:  t.sortDir,
		Evaluator:      t.opts.Evaluator,
	})
}

// View returns the current page of refined rows
func (t *Table) View() Page {
	return Paginate(t.Refined(), t.page, t.opts.PageSize)
}
