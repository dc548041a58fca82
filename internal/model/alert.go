// Package model provides data models for the factory monitor.
package model

import (
	"fmt"
	"time"
)

// Severity represents how far a condition is from normal.
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities: normal < warning < critical.
func (s Severity) Rank() int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityCritical:
		return 2
	default:
		return 0
	}
}

// WorseThan reports whether s ranks strictly above other.
func (s Severity) WorseThan(other Severity) bool {
	return s.Rank() > other.Rank()
}

// AlertState is the lifecycle state of an alert.
type AlertState string

const (
	AlertStateOpen         AlertState = "open"
	AlertStateAcknowledged AlertState = "acknowledged"
	AlertStateResolved     AlertState = "resolved"
)

// Alert is raised when a line condition degrades to a worse severity.
type Alert struct {
	ID             string     `json:"id"`
	LineID         string     `json:"line_id"`
	Metric         string     `json:"metric"`
	Severity       Severity   `json:"severity"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Value          float64    `json:"value"`
	Timestamp      time.Time  `json:"timestamp"`
	Status         AlertState `json:"status"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// FormatAlertID renders the sequence number of an alert as its public id.
func FormatAlertID(seq uint64) string {
	return fmt.Sprintf("ALT-%05d", seq)
}

// IsActive returns true until the alert is resolved.
func (a *Alert) IsActive() bool {
	return a.Status != AlertStateResolved
}

// IsWarning returns true if this alert is at warning level.
func (a *Alert) IsWarning() bool {
	return a.Severity == SeverityWarning
}

// IsCritical returns true if this alert is at critical level.
func (a *Alert) IsCritical() bool {
	return a.Severity == SeverityCritical
}

// AlertCounts is the number of alerts per severity.
type AlertCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
}

// NewAlertCounts counts alerts by severity.
func NewAlertCounts(alerts []Alert) AlertCounts {
	var counts AlertCounts
	for i := range alerts {
		switch alerts[i].Severity {
		case SeverityCritical:
			counts.Critical++
		case SeverityWarning:
			counts.Warning++
		}
	}
	return counts
}
