// Package ui provides terminal user interface components for ingestion jobs.
package ui

import "github.com/charmbracelet/lipgloss"

// Style definitions.
var (
	// Colors for impact levels.
	HighColor   = lipgloss.Color("#FF5555")
	MediumColor = lipgloss.Color("#FFA500")
	LowColor    = lipgloss.Color("#5599FF")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	AmountStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	WarnStyle = lipgloss.NewStyle().
			Foreground(MediumColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 2)
)

// ImpactStyle returns the style for an impact level.
func ImpactStyle(impact string) lipgloss.Style {
	switch impact {
	case "High":
		return lipgloss.NewStyle().Foreground(HighColor)
	case "Medium":
		return lipgloss.NewStyle().Foreground(MediumColor)
	case "Low":
		return lipgloss.NewStyle().Foreground(LowColor)
	default:
		return LabelStyle
	}
}
