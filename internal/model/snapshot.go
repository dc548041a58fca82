// Package model provides data models for the factory monitor.
package model

import "time"

// SnapshotMessageType tags tick messages pushed to observers.
const SnapshotMessageType = "production_update"

// OverallMetrics aggregates production across all lines.
type OverallMetrics struct {
	TotalOutput       int64   `json:"total_output"`
	TotalDefects      int64   `json:"total_defects"`
	OverallOEE        float64 `json:"overall_oee"` // percent, 0 with no running lines
	AverageEfficiency float64 `json:"average_efficiency"`
	ActiveLines       int     `json:"active_lines"`
	TotalLines        int     `json:"total_lines"`
	CriticalAlerts    int     `json:"critical_alerts"`
	WarningAlerts     int     `json:"warning_alerts"`
}

// HealthSnapshot is the derived machine health of one line.
type HealthSnapshot struct {
	LineID                    string   `json:"line_id"`
	HealthScore               float64  `json:"health_score"`
	TemperatureStatus         Severity `json:"temperature_status"`
	PressureStatus            Severity `json:"pressure_status"`
	VibrationStatus           Severity `json:"vibration_status"`
	PredictedMaintenanceHours int      `json:"predicted_maintenance_hours"`
	Recommendations           []string `json:"recommendations"`
}

// BroadcastSnapshot is the immutable state pushed to observers on every tick.
// All fields are taken from the same instant of monitor state.
type BroadcastSnapshot struct {
	Type           string           `json:"type"`
	Tick           uint64           `json:"tick"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Overall        OverallMetrics   `json:"overall_metrics"`
	Lines          []ProductionLine `json:"production_lines"`
	Alerts         []Alert          `json:"alerts"`
	AlertCounts    AlertCounts      `json:"alert_counts"`
	MachineHealth  []HealthSnapshot `json:"machine_health"`
	QualityMetrics []QualityMetrics `json:"quality_metrics"`
	QualitySummary QualitySummary   `json:"quality_summary"`
}
