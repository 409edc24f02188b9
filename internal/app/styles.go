package app

import "github.com/charmbracelet/lipgloss"

// Report colors.
var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"}
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"}
)

// styles holds the lipgloss styles used by plan and report output.
type styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Title   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Success: lipgloss.NewStyle().Foreground(colorSuccess),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),
		Error:   lipgloss.NewStyle().Foreground(colorError),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Title:   lipgloss.NewStyle().Bold(true),
	}
}
