package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("63")
	muted  = lipgloss.Color("245")
	green  = lipgloss.Color("42")
	red    = lipgloss.Color("203")
	amber  = lipgloss.Color("214")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(accent).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	rowStyle         = lipgloss.NewStyle()
	mutedStyle       = lipgloss.NewStyle().Foreground(muted)
	upStyle          = lipgloss.NewStyle().Foreground(green)
	downStyle        = lipgloss.NewStyle().Foreground(red)
	errorStyle       = lipgloss.NewStyle().Foreground(red).Bold(true)
	noteStyle        = lipgloss.NewStyle().Foreground(amber)

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(accent).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)

	badgeStyles = map[string]lipgloss.Style{
		"positive": lipgloss.NewStyle().Foreground(green),
		"neutral":  lipgloss.NewStyle().Foreground(muted),
		"negative": lipgloss.NewStyle().Foreground(red),
	}
)

func changeStyle(v float64) lipgloss.Style {
	if v < 0 {
		return downStyle
	}
	return upStyle
}
