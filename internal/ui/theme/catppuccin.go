package theme

import "github.com/charmbracelet/lipgloss"

// CatppuccinMochaTheme returns the Catppuccin Mocha theme
// Based on: https://github.com/catppuccin/catppuccin
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		// Background colors
		Background: lipgloss.Color("#1e1e2e"), // Base
		Foreground: lipgloss.Color("#cdd6f4"), // Text

		// UI elements
		Border:        lipgloss.Color("#45475a"), // Surface1
		BorderFocused: lipgloss.Color("#89b4fa"), // Blue
		Selection:     lipgloss.Color("#313244"), // Surface0
		Cursor:        lipgloss.Color("#f5e0dc"), // Rosewater
		Metadata:      lipgloss.Color("#6c7086"), // Overlay0

		// Status colors
		Success: lipgloss.Color("#a6e3a1"), // Green
		Warning: lipgloss.Color("#f9e2af"), // Yellow
		Error:   lipgloss.Color("#f38ba8"), // Red
		Info:    lipgloss.Color("#89dceb"), // Sky

		// Cell colors
		String:  lipgloss.Color("#a6e3a1"), // Green
		Number:  lipgloss.Color("#fab387"), // Peach
		Boolean: lipgloss.Color("#f9e2af"), // Yellow
		Null:    lipgloss.Color("#6c7086"), // Overlay0

		// Table colors
		TableHeader:      lipgloss.Color("#89b4fa"), // Blue
		TableHeaderSort:  lipgloss.Color("#cba6f7"), // Mauve
		TableRowSelected: lipgloss.Color("#313244"), // Surface0
	}
}
