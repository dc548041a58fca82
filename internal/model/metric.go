// Package model provides data models for the factory monitor.
package model

import "fmt"

// Direction tells which side of a bound is bad.
type Direction string

const (
	DirectionAbove Direction = "above" // values at or above the bound are bad
	DirectionBelow Direction = "below" // values at or below the bound are bad
)

// ThresholdRule defines warning and critical bounds for one line metric.
// Several rules may share a metric, e.g. a high and a low pressure band.
type ThresholdRule struct {
	Metric        string    `yaml:"metric" json:"metric" validate:"required"`
	DisplayName   string    `yaml:"display_name" json:"display_name"`
	Unit          string    `yaml:"unit" json:"unit"`
	Direction     Direction `yaml:"direction" json:"direction" validate:"oneof=above below"`
	Warning       float64   `yaml:"warning" json:"warning"`
	Critical      float64   `yaml:"critical" json:"critical"`
	WarningTitle  string    `yaml:"warning_title,omitempty" json:"warning_title,omitempty"`
	CriticalTitle string    `yaml:"critical_title,omitempty" json:"critical_title,omitempty"`
}

// Classify returns the severity of value against the rule bounds.
func (r *ThresholdRule) Classify(value float64) Severity {
	if r.beyond(value, r.Critical) {
		return SeverityCritical
	}
	if r.beyond(value, r.Warning) {
		return SeverityWarning
	}
	return SeverityNormal
}

func (r *ThresholdRule) beyond(value, bound float64) bool {
	if r.Direction == DirectionBelow {
		return value <= bound
	}
	return value >= bound
}

// Bound returns the threshold that the given severity corresponds to.
func (r *ThresholdRule) Bound(s Severity) float64 {
	if s == SeverityCritical {
		return r.Critical
	}
	return r.Warning
}

// Title returns the alert title for a severity, falling back to a generated one.
func (r *ThresholdRule) Title(s Severity) string {
	if s == SeverityCritical && r.CriticalTitle != "" {
		return r.CriticalTitle
	}
	if s == SeverityWarning && r.WarningTitle != "" {
		return r.WarningTitle
	}
	name := r.DisplayName
	if name == "" {
		name = r.Metric
	}
	if s == SeverityCritical {
		return "Critical " + name
	}
	return "High " + name
}

// Message describes a value crossing the rule bound for a severity.
func (r *ThresholdRule) Message(value float64, s Severity) string {
	name := r.DisplayName
	if name == "" {
		name = r.Metric
	}
	side := "above"
	if r.Direction == DirectionBelow {
		side = "below"
	}
	return fmt.Sprintf("%s at %.1f%s is %s the %s threshold (%.1f%s)",
		name, value, r.Unit, side, s, r.Bound(s), r.Unit)
}

// RulesConfig is the root structure of a threshold rules file.
type RulesConfig struct {
	Rules []*ThresholdRule `yaml:"rules" json:"rules"`
}
