// Package report provides report generation functionality for the factory monitor.
// It defines the ReportWriter interface and provides implementations for
// different output formats including Excel and HTML.
package report

import (
	"io"

	"factory-monitor/internal/model"
)

// ReportWriter defines the interface for exporting a production snapshot.
type ReportWriter interface {
	// Render writes the report for the snapshot to w.
	Render(snap *model.BroadcastSnapshot, w io.Writer) error

	// Write renders the report to a file. The format extension is appended
	// to outputPath when missing.
	Write(snap *model.BroadcastSnapshot, outputPath string) error

	// Format returns the format identifier for this writer, "excel" or "html".
	Format() string

	// Extension returns the file extension including the dot.
	Extension() string

	// ContentType returns the MIME type of the rendered report.
	ContentType() string
}
