package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorDim     = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorSelect  = lipgloss.Color("#33467c")
)

// styles groups the lipgloss styles used by the dashboard.
type styles struct {
	title     lipgloss.Style
	dim       lipgloss.Style
	selected  lipgloss.Style
	completed lipgloss.Style
	pending   lipgloss.Style
	err       lipgloss.Style
	box       lipgloss.Style
	label     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1),
		dim:       lipgloss.NewStyle().Foreground(colorDim),
		selected:  lipgloss.NewStyle().Background(colorSelect).Bold(true),
		completed: lipgloss.NewStyle().Foreground(colorSuccess).Strikethrough(true),
		pending:   lipgloss.NewStyle().Foreground(colorWarning),
		err:       lipgloss.NewStyle().Foreground(colorError),
		box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(0, 1),
		label:     lipgloss.NewStyle().Foreground(colorDim).Width(13),
	}
}

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case "high":
		return lipgloss.NewStyle().Foreground(colorError)
	case "low":
		return lipgloss.NewStyle().Foreground(colorDim)
	}
	return lipgloss.NewStyle().Foreground(colorWarning)
}
