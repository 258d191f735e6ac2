// Package display renders facetrace output on the terminal.
package display

import "github.com/charmbracelet/lipgloss"

// Dracula palette shared by the printer and the TUI
var (
	Foreground = lipgloss.Color("#f8f8f2")
	Selection  = lipgloss.Color("#44475a")
	Comment    = lipgloss.Color("#6272a4")
	Cyan       = lipgloss.Color("#8be9fd")
	Green      = lipgloss.Color("#50fa7b")
	Purple     = lipgloss.Color("#bd93f9")
	Red        = lipgloss.Color("#ff5555")
	Yellow     = lipgloss.Color("#f1fa8c")
)

// ScoreColor picks the colour of a match by similarity
func ScoreColor(score int) lipgloss.Color {
	switch {
	case score >= 90:
		return Green
	case score >= 80:
		return Yellow
	default:
		return Cyan
	}
}
