// Package config provides configuration management for the factory monitor.
package config

import (
	"strings"
	"testing"
	"time"

	"factory-monitor/internal/model"
)

// newValidConfig creates a valid configuration for testing.
func newValidConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5001",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Broadcast: BroadcastConfig{
			Interval:     3 * time.Second,
			SendTimeout:  2 * time.Second,
			PingPeriod:   30 * time.Second,
			MaxObservers: 256,
			ConnectRate:  5,
			ConnectBurst: 10,
		},
		Lines: []LineConfig{
			{ID: "L1", Name: "Line 1", TargetSpeed: 120},
			{ID: "L2", Name: "Line 2", TargetSpeed: 200},
		},
		Anomaly: AnomalyConfig{Rules: DefaultRules()},
		Health: HealthConfig{
			WarningPenalty:       10,
			CriticalPenalty:      30,
			EfficiencyFloor:      80,
			EfficiencyPenalty:    10,
			BaseMaintenanceHours: 200,
			HoursPerPoint:        10,
			MinMaintenanceHours:  1,
		},
		Report: ReportConfig{
			OutputDir:        "./reports",
			Formats:          []string{"excel", "html"},
			FilenameTemplate: "factory_report_{{.Date}}",
			Timezone:         "UTC",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Client: ClientConfig{
			Endpoint: "http://localhost:5001",
			Timeout:  10 * time.Second,
			Retry: RetryConfig{
				MaxRetries: 3,
				BaseDelay:  500 * time.Millisecond,
			},
		},
	}
}

func hasFieldError(err error, field string) bool {
	vErrs, ok := err.(ValidationErrors)
	if !ok {
		return false
	}
	for _, e := range vErrs {
		if strings.Contains(e.Field, field) {
			return true
		}
	}
	return false
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := newValidConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil for valid config", err)
	}
}

func TestValidate_NoLines(t *testing.T) {
	cfg := newValidConfig()
	cfg.Lines = nil

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for missing lines")
	}
	if !hasFieldError(err, "lines") {
		t.Errorf("expected error on lines, got %v", err)
	}
}

func TestValidate_LineTargetSpeed(t *testing.T) {
	cfg := newValidConfig()
	cfg.Lines[0].TargetSpeed = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should reject a zero target speed")
	}
	if !hasFieldError(err, "targetspeed") {
		t.Errorf("expected error on targetspeed, got %v", err)
	}
}

func TestValidate_DuplicateLineID(t *testing.T) {
	cfg := newValidConfig()
	cfg.Lines[1].ID = "L1"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should reject duplicate line ids")
	}
	if !hasFieldError(err, "lines[1].id") {
		t.Errorf("expected error on lines[1].id, got %v", err)
	}
}

func TestValidate_SendTimeoutNotShorterThanInterval(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		wantErr bool
	}{
		{"shorter", 2 * time.Second, false},
		{"equal", 3 * time.Second, true},
		{"longer", 5 * time.Second, true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newValidConfig()
			cfg.Broadcast.SendTimeout = tt.timeout

			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MaxObserversRange(t *testing.T) {
	for _, n := range []int{0, 20000} {
		cfg := newValidConfig()
		cfg.Broadcast.MaxObservers = n

		if err := Validate(cfg); err == nil {
			t.Errorf("Validate() should reject max_observers %d", n)
		}
	}
}

func TestValidate_InvalidReportFormat(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Formats = []string{"pdf"}

	err := Validate(cfg)
	if err == nil {
		t.Error("Validate() should return error for unsupported report format")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := newValidConfig()
	cfg.Logging.Level = "verbose"

	if err := Validate(cfg); err == nil {
		t.Error("Validate() should return error for invalid log level")
	}
}

func TestValidate_InvalidClientEndpoint(t *testing.T) {
	cfg := newValidConfig()
	cfg.Client.Endpoint = "not-a-url"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid endpoint")
	}
	if !strings.Contains(err.Error(), "invalid URL format") {
		t.Errorf("error should mention URL format, got %v", err)
	}
}

func TestValidate_RuleOrderAbove(t *testing.T) {
	cfg := newValidConfig()
	cfg.Anomaly.Rules = []*model.ThresholdRule{
		{Metric: model.MetricTemperature, Direction: model.DirectionAbove, Warning: 42, Critical: 38},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should reject warning >= critical for an above rule")
	}
	if !strings.Contains(err.Error(), "must be less than") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidate_RuleOrderBelow(t *testing.T) {
	cfg := newValidConfig()
	cfg.Anomaly.Rules = []*model.ThresholdRule{
		{Metric: model.MetricEfficiency, Direction: model.DirectionBelow, Warning: 65, Critical: 75},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should reject warning <= critical for a below rule")
	}
	if !strings.Contains(err.Error(), "must be greater than") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidate_RuleEqualBounds(t *testing.T) {
	cfg := newValidConfig()
	cfg.Anomaly.Rules = []*model.ThresholdRule{
		{Metric: model.MetricVibration, Direction: model.DirectionAbove, Warning: 3, Critical: 3},
	}

	if err := Validate(cfg); err == nil {
		t.Error("Validate() should reject equal warning and critical bounds")
	}
}

func TestValidate_RuleUnknownMetric(t *testing.T) {
	cfg := newValidConfig()
	cfg.Anomaly.Rules = []*model.ThresholdRule{
		{Metric: "humidity", Direction: model.DirectionAbove, Warning: 60, Critical: 80},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should reject an unknown metric")
	}
	if !hasFieldError(err, "anomaly.rules[0].metric") {
		t.Errorf("expected error on anomaly.rules[0].metric, got %v", err)
	}
}

func TestValidate_RuleInvalidDirection(t *testing.T) {
	cfg := newValidConfig()
	cfg.Anomaly.Rules = []*model.ThresholdRule{
		{Metric: model.MetricPressure, Direction: "sideways", Warning: 6, Critical: 7},
	}

	if err := Validate(cfg); err == nil {
		t.Error("Validate() should reject an unknown direction")
	}
}

func TestValidate_NoRules(t *testing.T) {
	cfg := newValidConfig()
	cfg.Anomaly.Rules = nil

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should require at least one rule")
	}
	if !hasFieldError(err, "anomaly.rules") {
		t.Errorf("expected error on anomaly.rules, got %v", err)
	}
}

func TestValidate_DefaultRulesAreValid(t *testing.T) {
	if errs := ValidateRules(DefaultRules()); len(errs) > 0 {
		t.Errorf("DefaultRules() failed validation: %v", errs)
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Timezone = "Invalid/Timezone"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid timezone")
	}
	if !strings.Contains(err.Error(), "invalid timezone") {
		t.Errorf("error should mention invalid timezone, got %v", err)
	}
}

func TestValidate_EmptyTimezone(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Timezone = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() should allow empty timezone, got %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := newValidConfig()
	cfg.Server.Addr = ""
	cfg.Logging.Level = "verbose"
	cfg.Broadcast.SendTimeout = time.Minute

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return multiple errors")
	}

	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Validate() error type = %T, want ValidationErrors", err)
	}
	if len(vErrs) < 3 {
		t.Errorf("got %d errors, want at least 3: %v", len(vErrs), vErrs)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "server.addr", Message: "this field is required"},
		{Field: "logging.level", Message: "value must be one of: debug info warn error"},
	}

	msg := errs.Error()
	if !strings.Contains(msg, "config validation failed") {
		t.Errorf("message missing header: %q", msg)
	}
	if !strings.Contains(msg, "server.addr: this field is required") {
		t.Errorf("message missing first error: %q", msg)
	}
}

func TestValidationErrors_Empty(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "" {
		t.Errorf("empty ValidationErrors.Error() = %q, want empty", errs.Error())
	}
}
