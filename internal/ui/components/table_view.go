package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/predicate"
	"github.com/rebeliceyang/lazydash/internal/refine"
	"github.com/rebeliceyang/lazydash/internal/template"
	"github.com/rebeliceyang/lazydash/internal/ui/theme"
)

const (
	minColumnWidth     = 4
	defaultMaxCellWide = 40
)

// TableView renders one page of refined rows with sort indicators and pagination status
type TableView struct {
	Columns    []models.Column
	Page       refine.Page
	SortColumn string
	SortDir    models.SortDirection
	Search     string
	Filters    int

	SelectedRow    int
	SelectedColumn int
	MaxCellWidth   int
	Width          int
	Theme          theme.Theme

	// Column widths (calculated)
	columnWidths []int
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{
		Theme:          th,
		MaxCellWidth:   defaultMaxCellWide,
		SelectedColumn: -1,
	}
}

// SetData shows page under the given columns and sort state
func (tv *TableView) SetData(columns []models.Column, page refine.Page, sortColumn string, sortDir models.SortDirection) {
	tv.Columns = columns
	tv.Page = page
	tv.SortColumn = sortColumn
	tv.SortDir = sortDir
	if tv.SelectedRow >= len(page.Rows) {
		tv.SelectedRow = len(page.Rows) - 1
	}
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
	tv.calculateColumnWidths()
}

// SetTable shows the current view of a refinement session
func (tv *TableView) SetTable(t *refine.Table) {
	col, dir := t.Sort()
	tv.Search = t.Search()
	tv.Filters = len(t.ColumnFilters())
	tv.SetData(t.Columns(), t.View(), col, dir)
}

// SortIndicator returns the header marker for a sort direction
func SortIndicator(dir models.SortDirection) string {
	switch dir {
	case models.SortAsc:
		return "▲"
	case models.SortDesc:
		return "▼"
	default:
		return ""
	}
}

// FormatCell renders a cell value for display
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(template.DateLayout)
		}
		return val.Format(time.RFC3339)
	}
	return strings.ReplaceAll(template.Stringify(v), "\n", " ")
}

func (tv *TableView) headerText(c models.Column) string {
	title := c.Title()
	if c.Key == tv.SortColumn {
		if ind := SortIndicator(tv.SortDir); ind != "" {
			title += " " + ind
		}
	}
	return title
}

// calculateColumnWidths calculates optimal column widths
func (tv *TableView) calculateColumnWidths() {
	maxWidth := tv.MaxCellWidth
	if maxWidth <= 0 {
		maxWidth = defaultMaxCellWide
	}

	tv.columnWidths = make([]int, len(tv.Columns))
	for i, c := range tv.Columns {
		w := runewidth.StringWidth(tv.headerText(c))
		for _, row := range tv.Page.Rows {
			if cw := runewidth.StringWidth(FormatCell(row[c.Key])); cw > w {
				w = cw
			}
		}
		if w > maxWidth {
			w = maxWidth
		}
		if w < minColumnWidth {
			w = minColumnWidth
		}
		tv.columnWidths[i] = w
	}
}

// View renders the table
func (tv *TableView) View() string {
	if len(tv.Columns) == 0 {
		return lipgloss.NewStyle().Foreground(tv.Theme.Metadata).Render("No columns")
	}
	if len(tv.columnWidths) != len(tv.Columns) {
		tv.calculateColumnWidths()
	}

	var b strings.Builder

	b.WriteString(tv.renderHeader())
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator())
	b.WriteString("\n")

	if len(tv.Page.Rows) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(tv.Theme.Metadata).Italic(true).Render(" No matching rows"))
		b.WriteString("\n")
	}
	for i, row := range tv.Page.Rows {
		b.WriteString(tv.renderRow(row, i == tv.SelectedRow))
		b.WriteString("\n")
	}

	b.WriteString(tv.renderStatus())

	out := b.String()
	if tv.Width > 0 {
		out = lipgloss.NewStyle().MaxWidth(tv.Width).Render(out)
	}
	return out
}

func (tv *TableView) renderHeader() string {
	parts := make([]string, len(tv.Columns))
	for i, c := range tv.Columns {
		style := lipgloss.NewStyle().Bold(true).Foreground(tv.Theme.TableHeader)
		if c.Key == tv.SortColumn && tv.SortDir != models.SortNone {
			style = style.Foreground(tv.Theme.TableHeaderSort)
		}
		if i == tv.SelectedColumn {
			style = style.Underline(true)
		}
		parts[i] = style.Render(pad(tv.headerText(c), tv.columnWidths[i]))
	}
	return " " + strings.Join(parts, " │ ") + " "
}

func (tv *TableView) renderSeparator() string {
	parts := make([]string, len(tv.columnWidths))
	for i, width := range tv.columnWidths {
		parts[i] = strings.Repeat("─", width)
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(row models.Row, selected bool) string {
	parts := make([]string, len(tv.Columns))
	for i, c := range tv.Columns {
		cell := pad(FormatCell(row[c.Key]), tv.columnWidths[i])
		if !selected {
			cell = lipgloss.NewStyle().Foreground(tv.cellColor(row[c.Key])).Render(cell)
		}
		parts[i] = cell
	}

	line := " " + strings.Join(parts, " │ ") + " "

	if selected {
		return lipgloss.NewStyle().
			Background(tv.Theme.TableRowSelected).
			Foreground(tv.Theme.Foreground).
			Bold(true).
			Render(line)
	}
	return line
}

func (tv *TableView) cellColor(v any) lipgloss.Color {
	switch v.(type) {
	case nil:
		return tv.Theme.Null
	case bool:
		return tv.Theme.Boolean
	case string:
		return tv.Theme.String
	}
	if _, ok := predicate.ToNumber(v); ok {
		return tv.Theme.Number
	}
	return tv.Theme.Foreground
}

// Status summarizes the rows shown, the page position and active refinements
func (tv *TableView) Status() string {
	p := tv.Page
	status := fmt.Sprintf("rows %d-%d of %d · page %d/%d", p.FirstIndex(), p.LastIndex(), p.TotalCount, p.Page, p.TotalPages)
	if tv.Search != "" {
		status += fmt.Sprintf(" · search %q", tv.Search)
	}
	if tv.Filters > 0 {
		status += fmt.Sprintf(" · %d filter(s)", tv.Filters)
	}
	return status
}

func (tv *TableView) renderStatus() string {
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Render(" " + tv.Status())
}

// MoveSelection moves the selected row within the page
func (tv *TableView) MoveSelection(delta int) {
	tv.SelectedRow += delta
	if tv.SelectedRow >= len(tv.Page.Rows) {
		tv.SelectedRow = len(tv.Page.Rows) - 1
	}
	if tv.SelectedRow < 0 {
		tv.SelectedRow = 0
	}
}

// MoveColumn moves the selected column, wrapping at both ends
func (tv *TableView) MoveColumn(delta int) {
	n := len(tv.Columns)
	if n == 0 {
		tv.SelectedColumn = -1
		return
	}
	if tv.SelectedColumn < 0 {
		tv.SelectedColumn = 0
		return
	}
	tv.SelectedColumn = ((tv.SelectedColumn+delta)%n + n) % n
}

// SelectedColumnKey returns the key of the selected column, or "" when none
func (tv *TableView) SelectedColumnKey() string {
	if tv.SelectedColumn < 0 || tv.SelectedColumn >= len(tv.Columns) {
		return ""
	}
	return tv.Columns[tv.SelectedColumn].Key
}

// SelectedRowData returns the selected row of the page
func (tv *TableView) SelectedRowData() (models.Row, bool) {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.Page.Rows) {
		return nil, false
	}
	return tv.Page.Rows[tv.SelectedRow], true
}

func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
