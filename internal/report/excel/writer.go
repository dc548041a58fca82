// Package excel provides Excel report generation for the factory monitor.
// It implements the report.ReportWriter interface to generate .xlsx files
// with a production snapshot: overview, lines, machine health, quality and alerts.
package excel

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"factory-monitor/internal/model"
)

const (
	// Sheet names
	sheetOverview = "Overview"
	sheetLines    = "Production Lines"
	sheetHealth   = "Machine Health"
	sheetQuality  = "Quality"
	sheetAlerts   = "Alerts"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorWarningBg  = "FFEB9C"
	colorWarningFg  = "9C6500"
	colorCriticalBg = "FFC7CE"
	colorCriticalFg = "9C0006"
	colorHeaderBg   = "4472C4"
	colorHeaderFg   = "FFFFFF"
	colorNormalBg   = "C6EFCE"
	colorNormalFg   = "006100"
)

// Writer implements report.ReportWriter for Excel format.
type Writer struct {
	timezone *time.Location
}

// styles holds the style ids shared by all sheets of one workbook.
type styles struct {
	title    int
	header   int
	label    int
	value    int
	normal   int
	warning  int
	critical int
}

// NewWriter creates a new Excel report writer.
// If timezone is nil, it defaults to UTC.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone: timezone,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Extension returns the file extension of Excel reports.
func (w *Writer) Extension() string {
	return ".xlsx"
}

// ContentType returns the MIME type of Excel reports.
func (w *Writer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write generates an Excel report file from the snapshot.
func (w *Writer) Write(snap *model.BroadcastSnapshot, outputPath string) error {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return w.Render(snap, file)
}

// Render writes the workbook for the snapshot to out.
func (w *Writer) Render(snap *model.BroadcastSnapshot, out io.Writer) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	f, err := w.build(snap)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// build creates the workbook in memory.
func (w *Writer) build(snap *model.BroadcastSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := createStyles(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	steps := []struct {
		name string
		fn   func(*excelize.File, *model.BroadcastSnapshot, *styles) error
	}{
		{"overview", w.createOverviewSheet},
		{"lines", w.createLinesSheet},
		{"health", w.createHealthSheet},
		{"quality", w.createQualitySheet},
		{"alerts", w.createAlertsSheet},
	}
	for _, step := range steps {
		if err := step.fn(f, snap, st); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create %s sheet: %w", step.name, err)
		}
	}

	// Sheet1 may already be gone
	_ = f.DeleteSheet(defaultSheet)

	idx, _ := f.GetSheetIndex(sheetOverview)
	f.SetActiveSheet(idx)

	return f, nil
}

// createOverviewSheet writes the overall metrics as label/value pairs.
func (w *Writer) createOverviewSheet(f *excelize.File, snap *model.BroadcastSnapshot, st *styles) error {
	if _, err := f.NewSheet(sheetOverview); err != nil {
		return err
	}

	f.SetColWidth(sheetOverview, "A", "A", 24)
	f.SetColWidth(sheetOverview, "B", "B", 30)

	f.MergeCell(sheetOverview, "A1", "B1")
	f.SetCellValue(sheetOverview, "A1", "Factory Production Report")
	f.SetCellStyle(sheetOverview, "A1", "B1", st.title)
	f.SetRowHeight(sheetOverview, 1, 30)

	o := snap.Overall
	q := snap.QualitySummary
	rows := []struct {
		label string
		value interface{}
	}{
		{"Generated At", snap.GeneratedAt.In(w.timezone).Format("2006-01-02 15:04:05")},
		{"Tick", snap.Tick},
		{"Total Output", o.TotalOutput},
		{"Total Defects", o.TotalDefects},
		{"Overall OEE", formatPercent(o.OverallOEE)},
		{"Average Efficiency", formatPercent(o.AverageEfficiency)},
		{"Active Lines", fmt.Sprintf("%d / %d", o.ActiveLines, o.TotalLines)},
		{"Critical Alerts", o.CriticalAlerts},
		{"Warning Alerts", o.WarningAlerts},
		{"Overall Defect Rate", formatPercent(q.OverallDefectRate)},
		{"Average Quality Score", fmt.Sprintf("%.2f", q.AverageQualityScore)},
		{"Lines With Quality Issues", q.LinesWithIssues},
	}

	for i, item := range rows {
		row := i + 3
		a, b := fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row)
		f.SetCellValue(sheetOverview, a, item.label)
		f.SetCellValue(sheetOverview, b, item.value)
		f.SetCellStyle(sheetOverview, a, a, st.label)
		f.SetCellStyle(sheetOverview, b, b, st.value)
		f.SetRowHeight(sheetOverview, row, 22)
	}

	return nil
}

// createLinesSheet writes one row per production line.
func (w *Writer) createLinesSheet(f *excelize.File, snap *model.BroadcastSnapshot, st *styles) error {
	headers := []string{
		"Line ID", "Name", "Status", "Speed", "Target", "Efficiency", "OEE",
		"Produced", "Defects", "Uptime", "Temperature", "Pressure", "Vibration", "Last Maintenance",
	}
	widths := []float64{12, 22, 13, 10, 10, 12, 10, 12, 10, 10, 13, 11, 11, 18}
	if err := writeTable(f, sheetLines, headers, widths, st); err != nil {
		return err
	}

	for i, l := range snap.Lines {
		row := i + 2
		values := []interface{}{
			l.ID, l.Name, string(l.Status),
			fmt.Sprintf("%.1f", l.CurrentSpeed), fmt.Sprintf("%.0f", l.TargetSpeed),
			formatPercent(l.Efficiency), formatPercent(l.OEE),
			l.ProductsProduced, l.Defects, formatPercent(l.Uptime),
			fmt.Sprintf("%.1f°C", l.Temperature), fmt.Sprintf("%.2f bar", l.Pressure),
			fmt.Sprintf("%.2f mm/s", l.Vibration), l.LastMaintenance,
		}
		setRow(f, sheetLines, row, values)

		cell := fmt.Sprintf("C%d", row)
		if style := statusStyle(l.Status, st); style > 0 {
			f.SetCellStyle(sheetLines, cell, cell, style)
		}
	}

	return nil
}

// createHealthSheet writes the machine health of every line.
func (w *Writer) createHealthSheet(f *excelize.File, snap *model.BroadcastSnapshot, st *styles) error {
	headers := []string{"Line ID", "Health Score", "Temperature", "Pressure", "Vibration", "Maintenance In (h)", "Recommendations"}
	widths := []float64{12, 13, 13, 13, 13, 18, 60}
	if err := writeTable(f, sheetHealth, headers, widths, st); err != nil {
		return err
	}

	for i, h := range snap.MachineHealth {
		row := i + 2
		setRow(f, sheetHealth, row, []interface{}{
			h.LineID, fmt.Sprintf("%.1f", h.HealthScore),
			string(h.TemperatureStatus), string(h.PressureStatus), string(h.VibrationStatus),
			h.PredictedMaintenanceHours, strings.Join(h.Recommendations, "; "),
		})

		for col, s := range map[string]model.Severity{"C": h.TemperatureStatus, "D": h.PressureStatus, "E": h.VibrationStatus} {
			cell := fmt.Sprintf("%s%d", col, row)
			f.SetCellStyle(sheetHealth, cell, cell, severityStyle(s, st))
		}
	}

	return nil
}

// createQualitySheet writes per-line quality and the defect distribution.
func (w *Writer) createQualitySheet(f *excelize.File, snap *model.BroadcastSnapshot, st *styles) error {
	headers := []string{"Line ID", "Inspected", "Passed", "Failed", "Defect Rate", "Quality Score", "Trend"}
	headers = append(headers, model.DefectCategories...)
	widths := []float64{12, 12, 12, 10, 12, 13, 12}
	for range model.DefectCategories {
		widths = append(widths, 17)
	}
	if err := writeTable(f, sheetQuality, headers, widths, st); err != nil {
		return err
	}

	for i, q := range snap.QualityMetrics {
		row := i + 2
		values := []interface{}{
			q.LineID, q.TotalInspected, q.Passed, q.Failed,
			formatPercent(q.DefectRate), fmt.Sprintf("%.2f", q.AverageQualityScore), string(q.Trend),
		}
		for _, c := range model.DefectCategories {
			values = append(values, q.DefectTypes[c])
		}
		setRow(f, sheetQuality, row, values)
	}

	return nil
}

// createAlertsSheet writes the active alerts, newest first.
func (w *Writer) createAlertsSheet(f *excelize.File, snap *model.BroadcastSnapshot, st *styles) error {
	headers := []string{"Alert ID", "Time", "Line ID", "Severity", "Status", "Metric", "Value", "Title", "Message"}
	widths := []float64{12, 20, 12, 11, 14, 14, 10, 26, 60}
	if err := writeTable(f, sheetAlerts, headers, widths, st); err != nil {
		return err
	}

	for i, a := range snap.Alerts {
		row := i + 2
		setRow(f, sheetAlerts, row, []interface{}{
			a.ID, a.Timestamp.In(w.timezone).Format("2006-01-02 15:04:05"), a.LineID,
			string(a.Severity), string(a.Status), a.Metric, fmt.Sprintf("%.2f", a.Value),
			a.Title, a.Message,
		})

		cell := fmt.Sprintf("D%d", row)
		f.SetCellStyle(sheetAlerts, cell, cell, severityStyle(a.Severity, st))
	}

	return nil
}

// writeTable creates a sheet with a styled, frozen header row.
func writeTable(f *excelize.File, sheet string, headers []string, widths []float64, st *styles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, width := range widths {
		col := columnName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, st.header)
	}
	f.SetRowHeight(sheet, 1, 25)

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", columnName(i+1), row), v)
	}
}

func createStyles(f *excelize.File) (*styles, error) {
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}

	st := &styles{}
	defs := map[*int]*excelize.Style{
		&st.title:    {Font: &excelize.Font{Bold: true, Size: 18}, Alignment: center},
		&st.header:   {Font: &excelize.Font{Bold: true, Size: 11, Color: colorHeaderFg}, Fill: fill(colorHeaderBg), Alignment: center},
		&st.label:    {Font: &excelize.Font{Bold: true, Size: 12, Color: colorHeaderFg}, Fill: fill(colorHeaderBg), Alignment: center},
		&st.value:    {Font: &excelize.Font{Size: 12}, Alignment: center},
		&st.normal:   {Font: &excelize.Font{Color: colorNormalFg}, Fill: fill(colorNormalBg), Alignment: center},
		&st.warning:  {Font: &excelize.Font{Color: colorWarningFg}, Fill: fill(colorWarningBg), Alignment: center},
		&st.critical: {Font: &excelize.Font{Color: colorCriticalFg}, Fill: fill(colorCriticalBg), Alignment: center},
	}

	for dst, style := range defs {
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, err
		}
		*dst = id
	}
	return st, nil
}

func severityStyle(s model.Severity, st *styles) int {
	switch s {
	case model.SeverityCritical:
		return st.critical
	case model.SeverityWarning:
		return st.warning
	default:
		return st.normal
	}
}

func statusStyle(s model.LineStatus, st *styles) int {
	switch s {
	case model.LineStatusRunning:
		return st.normal
	case model.LineStatusIdle, model.LineStatusMaintenance:
		return st.warning
	case model.LineStatusError:
		return st.critical
	default:
		return 0
	}
}

// columnName converts a 1-based column index to Excel column name (A, B, ..., Z, AA, AB, ...).
func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
