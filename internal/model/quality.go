// Package model provides data models for the factory monitor.
package model

// QualityTrend describes the direction of a line's defect rate.
type QualityTrend string

const (
	QualityTrendImproving QualityTrend = "improving"
	QualityTrendStable    QualityTrend = "stable"
	QualityTrendDeclining QualityTrend = "declining"
)

// DefectCategories lists defect types in reporting order.
var DefectCategories = []string{
	"Dimensional Error",
	"Surface Defect",
	"Assembly Error",
	"Material Defect",
	"Packaging Error",
}

// QualityMetrics is the quality control view of a single line.
type QualityMetrics struct {
	LineID              string           `json:"line_id"`
	TotalInspected      int64            `json:"total_inspected"`
	Passed              int64            `json:"passed"`
	Failed              int64            `json:"failed"`
	DefectRate          float64          `json:"defect_rate"` // percent
	DefectTypes         map[string]int64 `json:"defect_types"`
	AverageQualityScore float64          `json:"average_quality_score"`
	Trend               QualityTrend     `json:"trend"`
}

// QualitySummary aggregates quality across all lines.
type QualitySummary struct {
	TotalInspected      int64            `json:"total_inspected"`
	TotalPassed         int64            `json:"total_passed"`
	TotalFailed         int64            `json:"total_failed"`
	OverallDefectRate   float64          `json:"overall_defect_rate"`
	AverageQualityScore float64          `json:"average_quality_score"`
	DefectDistribution  map[string]int64 `json:"defect_distribution"`
	LinesWithIssues     int              `json:"lines_with_issues"`
}
