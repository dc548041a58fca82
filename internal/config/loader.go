// Package config provides configuration management for the factory monitor.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigError reports a configuration that cannot be used. It is fatal at startup.
type ConfigError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: FACTORY_<SECTION>_<KEY> (e.g., FACTORY_BROADCAST_INTERVAL)
// An empty path loads defaults and environment only.
// Every failure is returned as a *ConfigError.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("FACTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, &ConfigError{Path: configPath, Err: fmt.Errorf("config file not found")}
		}

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Path: configPath, Err: fmt.Errorf("failed to read config file: %w", err)}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Path: configPath, Err: fmt.Errorf("failed to unmarshal config: %w", err)}
	}

	if cfg.Anomaly.RulesFile != "" {
		rules, err := LoadRules(cfg.Anomaly.RulesFile)
		if err != nil {
			return nil, &ConfigError{Path: configPath, Err: err}
		}
		cfg.Anomaly.Rules = rules
	} else {
		cfg.Anomaly.Rules = DefaultRules()
	}

	if err := Validate(&cfg); err != nil {
		return nil, &ConfigError{Path: configPath, Err: err}
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.addr", ":5001")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Broadcast defaults
	v.SetDefault("broadcast.interval", 3*time.Second)
	v.SetDefault("broadcast.send_timeout", 2*time.Second)
	v.SetDefault("broadcast.ping_period", 30*time.Second)
	v.SetDefault("broadcast.max_observers", 256)
	v.SetDefault("broadcast.connect_rate", 5.0)
	v.SetDefault("broadcast.connect_burst", 10)

	// Production lines
	v.SetDefault("lines", []map[string]interface{}{
		{"id": "LINE-A1", "name": "Assembly Line A1", "target_speed": 120.0},
		{"id": "LINE-A2", "name": "Assembly Line A2", "target_speed": 120.0},
		{"id": "LINE-B1", "name": "Packaging Line B1", "target_speed": 200.0},
		{"id": "LINE-C1", "name": "Quality Check C1", "target_speed": 150.0},
	})

	// Health scoring defaults
	v.SetDefault("health.warning_penalty", 10.0)
	v.SetDefault("health.critical_penalty", 30.0)
	v.SetDefault("health.efficiency_floor", 80.0)
	v.SetDefault("health.efficiency_penalty", 10.0)
	v.SetDefault("health.base_maintenance_hours", 200)
	v.SetDefault("health.hours_per_point", 10.0)
	v.SetDefault("health.min_maintenance_hours", 24)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{"excel", "html"})
	v.SetDefault("report.filename_template", "factory_report_{{.Date}}")
	v.SetDefault("report.timezone", "UTC")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// CLI client defaults
	v.SetDefault("client.endpoint", "http://localhost:5001")
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("client.retry.max_retries", 3)
	v.SetDefault("client.retry.base_delay", 500*time.Millisecond)
}
