package components

import (
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/refine"
	"github.com/rebeliceyang/lazydash/internal/ui/help"
	"github.com/rebeliceyang/lazydash/internal/ui/theme"
)

type browserMode int

const (
	browseTable browserMode = iota
	browseSearch
	browseFilter
	browseHelp
)

// Browser is an interactive pager over one refinement session
type Browser struct {
	Title string

	table   *refine.Table
	view    *TableView
	search  *SearchInput
	builder *FilterBuilder
	theme   theme.Theme

	mode   browserMode
	width  int
	height int
}

// NewBrowser creates a browser for t
func NewBrowser(title string, t *refine.Table, th theme.Theme) *Browser {
	b := &Browser{
		Title:   title,
		table:   t,
		view:    NewTableView(th),
		search:  NewSearchInput(th),
		builder: NewFilterBuilder(th),
		theme:   th,
	}
	b.search.Columns = t.FilterableKeys()
	b.builder.SetColumns(t.Columns())
	b.builder.Count = func(filters []models.ColumnFilter) (int, int) {
		all := b.table.Rows()
		kept := refine.Refine(all, refine.Options{ColumnFilters: filters, Evaluator: b.table.Evaluator()})
		return len(kept), len(all)
	}
	b.refresh()
	b.view.MoveColumn(0)
	return b
}

// Table returns the refinement session being browsed
func (b *Browser) Table() *refine.Table {
	return b.table
}

// TableView returns the table renderer
func (b *Browser) TableView() *TableView {
	return b.view
}

func (b *Browser) refresh() {
	b.view.SetTable(b.table)
}

// Init implements tea.Model
func (b *Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.view.Width = msg.Width
		b.search.Width = msg.Width - 4
		b.builder.Width = msg.Width - 4
		return b, nil

	case SearchInputMsg:
		b.table.SetSearch(msg.Query)
		b.mode = browseTable
		b.refresh()
		return b, nil

	case CloseSearchMsg:
		b.mode = browseTable
		return b, nil

	case ApplyColumnFiltersMsg:
		b.table.SetColumnFilters(msg.Filters)
		b.mode = browseTable
		b.refresh()
		return b, nil

	case CloseFilterBuilderMsg:
		b.mode = browseTable
		return b, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return b, tea.Quit
		}
		switch b.mode {
		case browseSearch:
			var cmd tea.Cmd
			b.search, cmd = b.search.Update(msg)
			return b, cmd
		case browseFilter:
			var cmd tea.Cmd
			b.builder, cmd = b.builder.Update(msg)
			return b, cmd
		case browseHelp:
			switch msg.String() {
			case "?", "esc", "q":
				b.mode = browseTable
			}
			return b, nil
		}
		return b.handleTableKey(msg)
	}

	return b, nil
}

func (b *Browser) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return b, tea.Quit
	case "?":
		b.mode = browseHelp
		return b, nil
	case "up", "k":
		b.view.MoveSelection(-1)
		return b, nil
	case "down", "j":
		b.view.MoveSelection(1)
		return b, nil
	case "left", "h":
		b.view.MoveColumn(-1)
		return b, nil
	case "right", "l":
		b.view.MoveColumn(1)
		return b, nil
	case "s", "enter":
		b.table.ToggleSort(b.view.SelectedColumnKey())
	case "n", "pgdown", "]":
		b.table.NextPage()
	case "p", "pgup", "[":
		b.table.PrevPage()
	case "g", "home":
		b.table.SetPage(1)
	case "G", "end":
		b.table.SetPage(math.MaxInt)
	case "/":
		b.search.Open(b.table.Search())
		b.mode = browseSearch
		return b, nil
	case "esc":
		b.table.SetSearch("")
	case "f":
		b.builder.SetFilters(b.table.ColumnFilters())
		b.mode = browseFilter
		return b, nil
	case "x":
		b.table.ClearColumnFilters()
	default:
		return b, nil
	}
	b.refresh()
	return b, nil
}

// View implements tea.Model
func (b *Browser) View() string {
	if b.mode == browseHelp {
		return help.Render(b.width, b.height, b.theme)
	}

	var sections []string
	if b.Title != "" {
		sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(b.theme.BorderFocused).Render(b.Title))
	}
	sections = append(sections, b.view.View())

	switch b.mode {
	case browseSearch:
		sections = append(sections, b.search.View())
	case browseFilter:
		sections = append(sections, b.builder.View())
	default:
		sections = append(sections, lipgloss.NewStyle().Foreground(b.theme.Metadata).Faint(true).
			Render(" s sort · n/p page · / search · f filters · ? help · q quit"))
	}

	return strings.Join(sections, "\n")
}
