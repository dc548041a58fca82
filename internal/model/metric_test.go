package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdRule_Classify(t *testing.T) {
	above := &ThresholdRule{Metric: MetricTemperature, Direction: DirectionAbove, Warning: 38, Critical: 42}
	below := &ThresholdRule{Metric: MetricEfficiency, Direction: DirectionBelow, Warning: 75, Critical: 65}

	tests := []struct {
		name  string
		rule  *ThresholdRule
		value float64
		want  Severity
	}{
		{"above normal", above, 35, SeverityNormal},
		{"above at warning bound", above, 38, SeverityWarning},
		{"above between", above, 41, SeverityWarning},
		{"above at critical bound", above, 42, SeverityCritical},
		{"above beyond critical", above, 50, SeverityCritical},
		{"below normal", below, 90, SeverityNormal},
		{"below at warning bound", below, 75, SeverityWarning},
		{"below at critical bound", below, 65, SeverityCritical},
		{"below beyond critical", below, 10, SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Classify(tt.value))
		})
	}
}

func TestThresholdRule_Title(t *testing.T) {
	r := &ThresholdRule{Metric: MetricVibration, DisplayName: "Vibration", WarningTitle: "High Vibration"}

	assert.Equal(t, "High Vibration", r.Title(SeverityWarning))
	assert.Equal(t, "Critical Vibration", r.Title(SeverityCritical))

	bare := &ThresholdRule{Metric: "speed"}
	assert.Equal(t, "High speed", bare.Title(SeverityWarning))
}

func TestThresholdRule_Message(t *testing.T) {
	r := &ThresholdRule{Metric: MetricPressure, DisplayName: "Pressure", Unit: " bar", Direction: DirectionBelow, Warning: 5.2, Critical: 5.0}

	msg := r.Message(4.9, SeverityCritical)
	assert.Equal(t, "Pressure at 4.9 bar is below the critical threshold (5.0 bar)", msg)
}

func TestSeverity_Rank(t *testing.T) {
	assert.True(t, SeverityCritical.WorseThan(SeverityWarning))
	assert.True(t, SeverityWarning.WorseThan(SeverityNormal))
	assert.False(t, SeverityWarning.WorseThan(SeverityWarning))
	assert.False(t, SeverityNormal.WorseThan(SeverityCritical))
	assert.Equal(t, 0, Severity("").Rank())
}

func TestNewAlertCounts(t *testing.T) {
	alerts := []Alert{
		{Severity: SeverityCritical},
		{Severity: SeverityWarning},
		{Severity: SeverityWarning},
	}

	counts := NewAlertCounts(alerts)
	assert.Equal(t, AlertCounts{Critical: 1, Warning: 2}, counts)
	assert.Equal(t, "ALT-00042", FormatAlertID(42))
}
