package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		// Background colors
		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),

		// UI elements
		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),
		Metadata:      lipgloss.Color("245"),

		// Status colors
		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		// Cell colors
		String:  lipgloss.Color("180"),
		Number:  lipgloss.Color("150"),
		Boolean: lipgloss.Color("75"),
		Null:    lipgloss.Color("244"),

		// Table colors
		TableHeader:      lipgloss.Color("105"),
		TableHeaderSort:  lipgloss.Color("220"),
		TableRowSelected: lipgloss.Color("25"),
	}
}
