// Package config provides configuration management for the factory monitor.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"factory-monitor/internal/model"
)

// LoadRules reads threshold rules from the specified YAML file.
func LoadRules(rulesPath string) ([]*model.ThresholdRule, error) {
	if rulesPath == "" {
		return nil, fmt.Errorf("rules file path is required")
	}

	if _, err := os.Stat(rulesPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("rules file not found: %s", rulesPath)
	}

	data, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var cfg model.RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if len(cfg.Rules) == 0 {
		return nil, fmt.Errorf("no rules defined in file: %s", rulesPath)
	}

	for i, r := range cfg.Rules {
		if r == nil {
			return nil, fmt.Errorf("rule at index %d is empty", i)
		}
		if r.Direction == "" {
			r.Direction = model.DirectionAbove
		}
	}

	return cfg.Rules, nil
}

// DefaultRules returns the built-in threshold rules.
func DefaultRules() []*model.ThresholdRule {
	return []*model.ThresholdRule{
		{
			Metric: model.MetricTemperature, DisplayName: "Temperature", Unit: "°C",
			Direction: model.DirectionAbove, Warning: 38, Critical: 42,
			WarningTitle: "High Temperature", CriticalTitle: "Critical Temperature",
		},
		{
			Metric: model.MetricPressure, DisplayName: "Pressure", Unit: " bar",
			Direction: model.DirectionAbove, Warning: 6.8, Critical: 7.0,
			WarningTitle: "Pressure Deviation", CriticalTitle: "Critical Pressure",
		},
		{
			Metric: model.MetricPressure, DisplayName: "Pressure", Unit: " bar",
			Direction: model.DirectionBelow, Warning: 5.2, Critical: 5.0,
			WarningTitle: "Pressure Deviation", CriticalTitle: "Critical Pressure",
		},
		{
			Metric: model.MetricVibration, DisplayName: "Vibration", Unit: " mm/s",
			Direction: model.DirectionAbove, Warning: 3.0, Critical: 3.5,
			WarningTitle: "High Vibration", CriticalTitle: "Excessive Vibration",
		},
		{
			Metric: model.MetricEfficiency, DisplayName: "Efficiency", Unit: "%",
			Direction: model.DirectionBelow, Warning: 75, Critical: 65,
			WarningTitle: "Low Efficiency", CriticalTitle: "Critical Efficiency Drop",
		},
		{
			Metric: model.MetricDefectRate, DisplayName: "Defect rate", Unit: "%",
			Direction: model.DirectionAbove, Warning: 5.0, Critical: 8.0,
			WarningTitle: "High Defect Rate", CriticalTitle: "Critical Defect Rate",
		},
	}
}
