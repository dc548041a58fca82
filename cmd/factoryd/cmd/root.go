// Package cmd provides CLI commands for the factory monitor.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"factory-monitor/internal/config"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Global flags
var (
	cfgFile  string // Config file path, empty uses built-in defaults
	logLevel string // Overrides logging.level when set
	endpoint string // Overrides client.endpoint when set
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "factoryd",
	Short: "Real-time factory production monitor",
	Long: `factoryd simulates production lines, derives efficiency, OEE, machine health
and quality metrics, raises alerts when readings cross configured thresholds,
and pushes a snapshot of the whole factory to websocket observers on every tick.

Data flow: simulator -> monitor (metrics, anomalies, alerts) -> scheduler -> /ws observers

The serve command runs the monitor. The status, alerts, export and watch
commands talk to a running server.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides the config file")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "server endpoint for client commands, overrides client.endpoint")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}

// loadConfig loads the configuration and builds the logger from it.
// Command line flags override the file.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		tmpLogger := setupLogger("error", "console")
		tmpLogger.Error().Err(err).Str("path", cfgFile).Msg("failed to load config")
		return nil, tmpLogger, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	if endpoint != "" {
		cfg.Client.Endpoint = endpoint
	}

	logger := setupLogger(level, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", cfgFile).
		Str("log_level", level).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded successfully")

	return cfg, logger, nil
}

// setupLogger creates a zerolog logger with the specified level and format.
func setupLogger(level string, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var output io.Writer
	if format == "json" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
