package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"factory-monitor/internal/config"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and threshold rules",
	Long:  "Load the configuration file and the threshold rules, then check formats, required fields, value ranges and business constraints.",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Load calls Validate, rules included.
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	source := cfgFile
	if source == "" {
		source = "built-in defaults"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration is valid: %s\n", source)
	fmt.Fprintf(out, "  lines: %d, rules: %d, broadcast interval: %s\n",
		len(cfg.Lines), len(cfg.Anomaly.Rules), cfg.Broadcast.Interval)
	return nil
}
