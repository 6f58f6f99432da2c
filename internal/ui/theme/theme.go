package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Background colors
	Background lipgloss.Color
	Foreground lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color
	Metadata      lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Cell colors by value kind
	String  lipgloss.Color
	Number  lipgloss.Color
	Boolean lipgloss.Color
	Null    lipgloss.Color

	// Table colors
	TableHeader      lipgloss.Color
	TableHeaderSort  lipgloss.Color
	TableRowSelected lipgloss.Color
}

// Names lists the built-in themes
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha", "catppuccin":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}
