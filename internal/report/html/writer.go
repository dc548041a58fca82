// Package html provides HTML report generation for the factory monitor.
// It implements the report.ReportWriter interface to generate .html files
// from a production snapshot.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"factory-monitor/internal/model"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Writer implements report.ReportWriter for HTML format.
type Writer struct {
	timezone     *time.Location
	templatePath string // User-defined template path (optional)
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title          string
	GeneratedAt    string
	Tick           uint64
	Overall        model.OverallMetrics
	QualitySummary model.QualitySummary
	Lines          []*LineData
	Alerts         []*AlertData
	Categories     []string
}

// LineData joins a line with its health and quality for one table row.
type LineData struct {
	Line        model.ProductionLine
	StatusClass string
	Health      *model.HealthSnapshot
	Quality     *model.QualityMetrics
}

// AlertData represents alert data formatted for template rendering.
type AlertData struct {
	ID         string
	Time       string
	LineID     string
	Title      string
	Message    string
	Severity   string
	LevelClass string
	Status     string
}

// NewWriter creates a new HTML report writer.
// If timezone is nil, it defaults to UTC.
// If templatePath is empty, the embedded default template will be used.
func NewWriter(timezone *time.Location, templatePath string) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone:     timezone,
		templatePath: templatePath,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Extension returns the file extension of HTML reports.
func (w *Writer) Extension() string {
	return ".html"
}

// ContentType returns the MIME type of HTML reports.
func (w *Writer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Write generates an HTML report file from the snapshot.
func (w *Writer) Write(snap *model.BroadcastSnapshot, outputPath string) error {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = outputPath + ".html"
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return w.Render(snap, file)
}

// Render executes the report template for the snapshot.
func (w *Writer) Render(snap *model.BroadcastSnapshot, out io.Writer) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	if err := tmpl.Execute(out, w.prepareTemplateData(snap)); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// loadTemplate loads the HTML template.
// It first tries to load a user-defined template, then falls back to the embedded default.
func (w *Writer) loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"percent":       formatPercent,
		"severityClass": severityClass,
		"join":          strings.Join,
	}

	if w.templatePath != "" {
		if _, err := os.Stat(w.templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(w.templatePath)).Funcs(funcMap).ParseFiles(w.templatePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse user template: %w", err)
			}
			return tmpl, nil
		}
		// User template not found, fall through to default
	}

	tmpl, err := template.New("report.html").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// prepareTemplateData converts a snapshot to TemplateData for template rendering.
func (w *Writer) prepareTemplateData(snap *model.BroadcastSnapshot) *TemplateData {
	health := make(map[string]*model.HealthSnapshot, len(snap.MachineHealth))
	for i := range snap.MachineHealth {
		health[snap.MachineHealth[i].LineID] = &snap.MachineHealth[i]
	}
	quality := make(map[string]*model.QualityMetrics, len(snap.QualityMetrics))
	for i := range snap.QualityMetrics {
		quality[snap.QualityMetrics[i].LineID] = &snap.QualityMetrics[i]
	}

	lines := make([]*LineData, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, &LineData{
			Line:        l,
			StatusClass: statusClass(l.Status),
			Health:      health[l.ID],
			Quality:     quality[l.ID],
		})
	}

	alerts := make([]*AlertData, 0, len(snap.Alerts))
	for _, a := range snap.Alerts {
		alerts = append(alerts, &AlertData{
			ID:         a.ID,
			Time:       a.Timestamp.In(w.timezone).Format("2006-01-02 15:04:05"),
			LineID:     a.LineID,
			Title:      a.Title,
			Message:    a.Message,
			Severity:   string(a.Severity),
			LevelClass: severityClass(a.Severity),
			Status:     string(a.Status),
		})
	}

	return &TemplateData{
		Title:          "Factory Production Report",
		GeneratedAt:    snap.GeneratedAt.In(w.timezone).Format("2006-01-02 15:04:05 MST"),
		Tick:           snap.Tick,
		Overall:        snap.Overall,
		QualitySummary: snap.QualitySummary,
		Lines:          lines,
		Alerts:         alerts,
		Categories:     model.DefectCategories,
	}
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// statusClass maps a line status to a CSS class.
func statusClass(status model.LineStatus) string {
	switch status {
	case model.LineStatusRunning:
		return "status-normal"
	case model.LineStatusIdle, model.LineStatusMaintenance:
		return "status-warning"
	case model.LineStatusError:
		return "status-critical"
	default:
		return ""
	}
}

// severityClass maps a severity to a CSS class.
func severityClass(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "status-critical"
	case model.SeverityWarning:
		return "status-warning"
	default:
		return "status-normal"
	}
}
