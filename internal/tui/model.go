// Package tui renders a live terminal view of the snapshots a server broadcasts.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"factory-monitor/internal/model"
)

// Page selects what the body of the view shows.
type Page int

const (
	PageLines Page = iota
	PageAlerts
	PageHealth
	pageCount
)

var pageNames = []string{"Lines", "Alerts", "Health"}

type snapshotMsg struct {
	snap *model.BroadcastSnapshot
}

type streamErrMsg struct {
	err error
}

// Model is the bubbletea model of the watch view.
type Model struct {
	source   SnapshotSource
	endpoint string
	width    int

	snap     *model.BroadcastSnapshot
	received int
	err      error

	page   Page
	paused bool
}

// NewModel creates a watch model reading from source.
func NewModel(source SnapshotSource, endpoint string) Model {
	return Model{source: source, endpoint: endpoint}
}

// Init starts waiting for the first snapshot.
func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.source)
}

func waitForSnapshot(source SnapshotSource) tea.Cmd {
	return func() tea.Msg {
		snap, err := source.Next()
		if err != nil {
			return streamErrMsg{err: err}
		}
		return snapshotMsg{snap: snap}
	}
}

// Update handles key presses and incoming snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "right", "l":
			m.page = (m.page + 1) % pageCount
		case "shift+tab", "left", "h":
			m.page = (m.page + pageCount - 1) % pageCount
		case "1":
			m.page = PageLines
		case "2":
			m.page = PageAlerts
		case "3":
			m.page = PageHealth
		case "p", " ":
			m.paused = !m.paused
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case snapshotMsg:
		m.received++
		m.err = nil
		if !m.paused {
			m.snap = msg.snap
		}
		// Keep draining while paused so the server does not drop us as slow.
		return m, waitForSnapshot(m.source)

	case streamErrMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

// View renders the current snapshot.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.snap == nil {
		if m.err != nil {
			b.WriteString(critStyle.Render("disconnected: " + m.err.Error()))
		} else {
			b.WriteString(labelStyle.Render("waiting for first snapshot from " + m.endpoint + " ..."))
		}
		b.WriteString("\n")
		b.WriteString(m.renderHelp())
		return b.String()
	}

	b.WriteString(m.renderOverall())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.page {
	case PageAlerts:
		b.WriteString(m.renderAlerts())
	case PageHealth:
		b.WriteString(m.renderHealth())
	default:
		b.WriteString(m.renderLines())
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(critStyle.Render("disconnected: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Factory Monitor")
	if m.snap == nil {
		return title
	}
	info := labelStyle.Render(fmt.Sprintf("  tick %d  %s", m.snap.Tick, m.snap.GeneratedAt.Local().Format("15:04:05")))
	if m.paused {
		info += warnStyle.Render("  PAUSED")
	}
	return title + info
}

func (m Model) renderOverall() string {
	o := m.snap.Overall
	cells := []string{
		metric("Output", fmt.Sprintf("%d", o.TotalOutput)),
		metric("OEE", fmt.Sprintf("%.1f%%", o.OverallOEE)),
		metric("Efficiency", fmt.Sprintf("%.1f%%", o.AverageEfficiency)),
		metric("Active", fmt.Sprintf("%d/%d", o.ActiveLines, o.TotalLines)),
		metric("Defect rate", fmt.Sprintf("%.2f%%", m.snap.QualitySummary.OverallDefectRate)),
		critStyle.Render(fmt.Sprintf("%d critical", m.snap.AlertCounts.Critical)),
		warnStyle.Render(fmt.Sprintf("%d warning", m.snap.AlertCounts.Warning)),
	}
	return panelStyle.Render(strings.Join(cells, "   "))
}

func metric(label, value string) string {
	return labelStyle.Render(label+" ") + valueStyle.Render(value)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(pageNames))
	for i, name := range pageNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Page(i) == m.page {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, inactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderLines() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s %-22s %-12s %9s %7s %7s %8s %7s %6s %6s",
		"ID", "NAME", "STATUS", "SPEED", "EFF%", "OEE%", "OUTPUT", "TEMP", "BAR", "VIB")))
	b.WriteString("\n")

	for _, l := range m.snap.Lines {
		status := statusStyle(l.Status).Render(fmt.Sprintf("%-12s", l.Status))
		fmt.Fprintf(&b, "%-10s %-22s %s %9s %7.1f %7.1f %8d %7.1f %6.2f %6.2f\n",
			l.ID, truncate(l.Name, 22), status,
			fmt.Sprintf("%.0f/%.0f", l.CurrentSpeed, l.TargetSpeed),
			l.Efficiency, l.OEE, l.ProductsProduced, l.Temperature, l.Pressure, l.Vibration)
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderAlerts() string {
	if len(m.snap.Alerts) == 0 {
		return panelStyle.Render(okStyle.Render("No active alerts"))
	}

	var b strings.Builder
	for _, a := range m.snap.Alerts {
		sev := severityStyle(a.Severity).Render(fmt.Sprintf("%-8s", a.Severity))
		fmt.Fprintf(&b, "%s %s %-10s %-13s %s\n",
			labelStyle.Render(a.ID), sev, a.LineID, a.Status, a.Message)
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderHealth() string {
	var b strings.Builder
	for _, h := range m.snap.MachineHealth {
		fmt.Fprintf(&b, "%-10s %s  temp %s  pressure %s  vibration %s  maintenance in %dh\n",
			h.LineID,
			valueStyle.Render(fmt.Sprintf("%5.1f", h.HealthScore)),
			severityStyle(h.TemperatureStatus).Render(string(h.TemperatureStatus)),
			severityStyle(h.PressureStatus).Render(string(h.PressureStatus)),
			severityStyle(h.VibrationStatus).Render(string(h.VibrationStatus)),
			h.PredictedMaintenanceHours)
		for _, r := range h.Recommendations {
			b.WriteString(helpStyle.Render("           - " + r))
			b.WriteString("\n")
		}
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderHelp() string {
	return helpStyle.Render("tab/1-3 switch view  p pause  q quit")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
