package tui

import (
	"github.com/charmbracelet/lipgloss"

	"factory-monitor/internal/model"
)

var (
	colorRed    = lipgloss.Color("#FF5555")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")
	colorPanel  = lipgloss.Color("#44475A")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPanel).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle  = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle  = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	helpStyle   = lipgloss.NewStyle().Foreground(colorGray)
	activeTab   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorPanel).Padding(0, 1)
	inactiveTab = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
)

func severityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityCritical:
		return critStyle
	case model.SeverityWarning:
		return warnStyle
	default:
		return okStyle
	}
}

func statusStyle(s model.LineStatus) lipgloss.Style {
	switch s {
	case model.LineStatusRunning:
		return okStyle
	case model.LineStatusError:
		return critStyle
	default:
		return warnStyle
	}
}
