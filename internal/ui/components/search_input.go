package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazydash/internal/ui/theme"
)

// SearchInputMsg is sent when the search term should be applied
type SearchInputMsg struct {
	Query string
}

// CloseSearchMsg is sent when search should be closed
type CloseSearchMsg struct{}

// SearchInput provides a search input box over the filterable columns
type SearchInput struct {
	Input   textinput.Model
	Theme   theme.Theme
	Width   int
	Columns []string
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		Input: ti,
		Theme: th,
	}
}

// Open focuses the input with the current term
func (s *SearchInput) Open(term string) {
	s.Input.SetValue(term)
	s.Input.CursorEnd()
	s.Input.Focus()
}

// Reset clears the search input
func (s *SearchInput) Reset() {
	s.Input.SetValue("")
}

// Update handles messages. Enter applies the term, including an empty one.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			query := s.Input.Value()
			return s, func() tea.Msg {
				return SearchInputMsg{Query: query}
			}
		case "esc":
			return s, func() tea.Msg {
				return CloseSearchMsg{}
			}
		}
	}

	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

// View renders the search input
func (s *SearchInput) View() string {
	// Calculate input width
	inputWidth := s.Width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.Input.Width = inputWidth

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Theme.BorderFocused).
		Padding(0, 1)
	if s.Width > 0 {
		boxStyle = boxStyle.Width(s.Width)
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(s.Theme.Metadata).
		Italic(true)

	scope := "no searchable columns"
	if len(s.Columns) > 0 {
		scope = strings.Join(s.Columns, ", ")
	}

	content := lipgloss.NewStyle().Foreground(s.Theme.Info).Bold(true).Render("/") + " " + s.Input.View()
	helpText := helpStyle.Render("Enter: search " + scope + " │ Esc: close")

	return boxStyle.Render(content + "\n" + helpText)
}
