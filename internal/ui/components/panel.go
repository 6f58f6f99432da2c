package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazydash/internal/ui/theme"
)

// Panel frames a dashboard block with a bordered title
type Panel struct {
	Title   string
	Content string
	Width   int
	Focused bool
	Theme   theme.Theme
}

// View renders the panel; a zero Width sizes it to its content
func (p *Panel) View() string {
	border := p.Theme.Border
	if p.Focused {
		border = p.Theme.BorderFocused
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if p.Width > 0 {
		style = style.Width(p.Width)
	}

	content := p.Content
	if p.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Theme.TableHeader)
		content = titleStyle.Render(p.Title) + "\n" + content
	}

	return style.Render(content)
}
