// Package report provides report generation functionality for the factory monitor.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"factory-monitor/internal/model"
	"factory-monitor/internal/report/excel"
	"factory-monitor/internal/report/html"
)

// Registry manages report writers for different formats.
// It provides a centralized way to access report writers by format name.
type Registry struct {
	writers  map[string]ReportWriter
	timezone *time.Location
}

// NewRegistry creates a new report registry with pre-registered Excel and HTML writers.
// If timezone is nil, defaults to UTC.
// htmlTemplatePath is optional; if empty, the HTML writer will use the embedded default template.
func NewRegistry(timezone *time.Location, htmlTemplatePath string) *Registry {
	if timezone == nil {
		timezone = time.UTC
	}

	excelWriter := excel.NewWriter(timezone)
	htmlWriter := html.NewWriter(timezone, htmlTemplatePath)

	r := &Registry{
		writers:  make(map[string]ReportWriter),
		timezone: timezone,
	}

	// Register writers using their Format() return values
	r.writers[excelWriter.Format()] = excelWriter
	r.writers[htmlWriter.Format()] = htmlWriter

	return r
}

// Get returns a writer for the specified format.
// Format names are case-insensitive (e.g., "Excel", "EXCEL", "excel" all work).
// Returns an error if the format is not supported.
func (r *Registry) Get(format string) (ReportWriter, error) {
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))

	writer, ok := r.writers[normalizedFormat]
	if !ok {
		supported := r.GetAll()
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(supported, ", "))
	}

	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
// Format names are case-insensitive.
func (r *Registry) Has(format string) bool {
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))
	_, ok := r.writers[normalizedFormat]
	return ok
}

// Filename renders a filename template such as "factory_report_{{.Date}}".
// Available fields are Date (20060102), Time (150405) and Tick.
func (r *Registry) Filename(nameTemplate string, snap *model.BroadcastSnapshot) (string, error) {
	if nameTemplate == "" {
		nameTemplate = "factory_report_{{.Date}}"
	}

	tmpl, err := template.New("filename").Parse(nameTemplate)
	if err != nil {
		return "", fmt.Errorf("invalid filename template: %w", err)
	}

	at := snap.GeneratedAt.In(r.timezone)
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Date string
		Time string
		Tick uint64
	}{
		Date: at.Format("20060102"),
		Time: at.Format("150405"),
		Tick: snap.Tick,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render filename: %w", err)
	}
	return buf.String(), nil
}

// WriteAll writes the snapshot in every requested format to outputDir and
// returns the written paths.
func (r *Registry) WriteAll(snap *model.BroadcastSnapshot, formats []string, outputDir, nameTemplate string) ([]string, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}

	name, err := r.Filename(nameTemplate, snap)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		writer, err := r.Get(format)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(outputDir, name+writer.Extension())
		if err := writer.Write(snap, path); err != nil {
			return paths, fmt.Errorf("failed to write %s report: %w", writer.Format(), err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}
