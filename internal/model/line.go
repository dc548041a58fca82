// Package model provides data models for the factory monitor.
package model

import "time"

// LineStatus represents the operating state of a production line.
type LineStatus string

const (
	LineStatusRunning     LineStatus = "running"
	LineStatusIdle        LineStatus = "idle"
	LineStatusMaintenance LineStatus = "maintenance"
	LineStatusError       LineStatus = "error"
)

// Valid reports whether s is one of the known line statuses.
func (s LineStatus) Valid() bool {
	switch s {
	case LineStatusRunning, LineStatusIdle, LineStatusMaintenance, LineStatusError:
		return true
	}
	return false
}

// Metric names a line exposes to threshold rules.
const (
	MetricTemperature = "temperature"
	MetricPressure    = "pressure"
	MetricVibration   = "vibration"
	MetricEfficiency  = "efficiency"
	MetricDefectRate  = "defect_rate"
	MetricSpeed       = "speed"
	MetricUptime      = "uptime"
	MetricStatus      = "status"
)

// SourceReading is what the simulation source reports for one line on one tick.
type SourceReading struct {
	Speed         float64    `json:"speed"`          // units per minute
	ProducedDelta int64      `json:"produced_delta"` // units produced since the previous reading
	DefectDelta   int64      `json:"defect_delta"`   // defects found since the previous reading
	Temperature   float64    `json:"temperature"`    // celsius
	Pressure      float64    `json:"pressure"`       // bar
	Vibration     float64    `json:"vibration"`      // mm/s
	Status        LineStatus `json:"status"`
}

// ProductionLine is the latest known state of a monitored production line.
type ProductionLine struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Status           LineStatus `json:"status"`
	CurrentSpeed     float64    `json:"current_speed"`
	TargetSpeed      float64    `json:"target_speed"`
	Efficiency       float64    `json:"efficiency"` // percent of target speed, capped at 100
	OEE              float64    `json:"oee"`        // percent
	ProductsProduced int64      `json:"products_produced"`
	Defects          int64      `json:"defects"`
	Uptime           float64    `json:"uptime"` // percent of observed ticks spent running
	Temperature      float64    `json:"temperature"`
	Pressure         float64    `json:"pressure"`
	Vibration        float64    `json:"vibration"`
	LastMaintenance  string     `json:"last_maintenance,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`

	observedTicks int64
	runningTicks  int64
}

// NewProductionLine creates a running line with no production yet. Until the
// first reading arrives it is assumed to run at target speed.
func NewProductionLine(id, name string, targetSpeed float64) ProductionLine {
	return ProductionLine{
		ID:           id,
		Name:         name,
		Status:       LineStatusRunning,
		CurrentSpeed: targetSpeed,
		TargetSpeed:  targetSpeed,
		Uptime:       100,
	}
}

// ApplyReading returns a copy of the line advanced by one source reading.
// Efficiency and OEE are left for the aggregator to fill in.
func (l ProductionLine) ApplyReading(r SourceReading, at time.Time) ProductionLine {
	next := l

	if r.Status.Valid() {
		if l.Status == LineStatusMaintenance && r.Status == LineStatusRunning {
			next.LastMaintenance = at.Format("2006-01-02")
		}
		next.Status = r.Status
	}

	next.CurrentSpeed = r.Speed
	if next.CurrentSpeed < 0 {
		next.CurrentSpeed = 0
	}
	if r.ProducedDelta > 0 {
		next.ProductsProduced += r.ProducedDelta
	}
	if r.DefectDelta > 0 {
		next.Defects += r.DefectDelta
	}
	if next.Defects > next.ProductsProduced {
		next.Defects = next.ProductsProduced
	}

	next.Temperature = r.Temperature
	next.Pressure = r.Pressure
	next.Vibration = r.Vibration

	next.observedTicks++
	if next.Status == LineStatusRunning {
		next.runningTicks++
	}
	next.Uptime = float64(next.runningTicks) / float64(next.observedTicks) * 100
	next.UpdatedAt = at

	return next
}

// DefectRate returns defects as a percentage of produced units, 0 when nothing was produced.
func (l ProductionLine) DefectRate() float64 {
	if l.ProductsProduced <= 0 {
		return 0
	}
	return float64(l.Defects) / float64(l.ProductsProduced) * 100
}

// IsActive reports whether the line counts as active for overall OEE.
func (l ProductionLine) IsActive() bool {
	return l.Status == LineStatusRunning
}

// MetricValue returns the current value of a named metric, false if the line has no such metric.
func (l ProductionLine) MetricValue(metric string) (float64, bool) {
	switch metric {
	case MetricTemperature:
		return l.Temperature, true
	case MetricPressure:
		return l.Pressure, true
	case MetricVibration:
		return l.Vibration, true
	case MetricEfficiency:
		return l.Efficiency, true
	case MetricDefectRate:
		return l.DefectRate(), true
	case MetricSpeed:
		return l.CurrentSpeed, true
	case MetricUptime:
		return l.Uptime, true
	default:
		return 0, false
	}
}
