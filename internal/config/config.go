// Package config provides configuration management for the factory monitor.
package config

import (
	"time"

	"factory-monitor/internal/model"
)

// Config is the root configuration structure for the factory monitor.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Lines     []LineConfig    `mapstructure:"lines" validate:"required,min=1,dive"`
	Anomaly   AnomalyConfig   `mapstructure:"anomaly"`
	Health    HealthConfig    `mapstructure:"health"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Client    ClientConfig    `mapstructure:"client"`
}

// ServerConfig contains the HTTP and websocket listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"` // empty allows any origin
}

// BroadcastConfig controls the tick cadence and observer fan-out.
type BroadcastConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"` // per observer, must be shorter than interval
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	MaxObservers int           `mapstructure:"max_observers" validate:"gte=1,lte=10000"`
	ConnectRate  float64       `mapstructure:"connect_rate" validate:"gte=0"` // websocket upgrades per second, 0 disables the limit
	ConnectBurst int           `mapstructure:"connect_burst" validate:"gte=1"`
}

// LineConfig declares one monitored production line.
// The order of lines in the config is the display order.
type LineConfig struct {
	ID          string  `mapstructure:"id" validate:"required"`
	Name        string  `mapstructure:"name" validate:"required"`
	TargetSpeed float64 `mapstructure:"target_speed" validate:"gt=0"`
}

// AnomalyConfig points at the threshold rules.
// Rules is filled by Load, from RulesFile or the built-in defaults.
type AnomalyConfig struct {
	RulesFile string                 `mapstructure:"rules_file"`
	Rules     []*model.ThresholdRule `mapstructure:"-"`
}

// HealthConfig holds the machine health scoring constants.
type HealthConfig struct {
	WarningPenalty       float64 `mapstructure:"warning_penalty" validate:"gte=0,lte=100"`
	CriticalPenalty      float64 `mapstructure:"critical_penalty" validate:"gte=0,lte=100"`
	EfficiencyFloor      float64 `mapstructure:"efficiency_floor" validate:"gte=0,lte=100"`
	EfficiencyPenalty    float64 `mapstructure:"efficiency_penalty" validate:"gte=0,lte=100"`
	BaseMaintenanceHours int     `mapstructure:"base_maintenance_hours" validate:"gte=1"`
	HoursPerPoint        float64 `mapstructure:"hours_per_point" validate:"gte=0"`
	MinMaintenanceHours  int     `mapstructure:"min_maintenance_hours" validate:"gte=1"`
}

// SimulatorConfig configures the synthetic reading source.
type SimulatorConfig struct {
	Seed int64 `mapstructure:"seed"` // 0 seeds from the clock
}

// ReportConfig contains configurations for report export.
type ReportConfig struct {
	OutputDir        string   `mapstructure:"output_dir"`
	Formats          []string `mapstructure:"formats" validate:"dive,oneof=excel html"`
	FilenameTemplate string   `mapstructure:"filename_template"`
	Timezone         string   `mapstructure:"timezone"`
	HTMLTemplate     string   `mapstructure:"html_template"` // optional, the embedded template is used when empty
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// ClientConfig is used by the CLI commands that talk to a running server.
type ClientConfig struct {
	Endpoint string        `mapstructure:"endpoint" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retry    RetryConfig   `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// LineOrder returns the configured line ids in display order.
func (c *Config) LineOrder() []string {
	ids := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ID)
	}
	return ids
}

// Location returns the report timezone, or UTC when it is unset or unknown.
func (r ReportConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
