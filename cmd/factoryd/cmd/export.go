package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"factory-monitor/internal/client"
	"factory-monitor/internal/config"
	"factory-monitor/internal/report"
	"factory-monitor/internal/service"
	"factory-monitor/internal/simulator"
)

// Command flags
var (
	exportFormats []string
	exportOutput  string
	exportTicks   int
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a report of the factory snapshot",
	Long: `Download Excel and HTML reports of the current snapshot from a running
server, or with --ticks run the simulator offline for that many ticks and
report on the result.

Examples:
  # Download both formats from the server in client.endpoint
  factoryd export

  # Simulate 100 ticks locally and write an HTML report to ./out
  factoryd export --ticks 100 -f html -o ./out`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", nil, "output formats (excel,html), overrides report.formats")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory, overrides report.output_dir")
	exportCmd.Flags().IntVar(&exportTicks, "ticks", 0, "simulate this many ticks locally instead of asking a server")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	formats := cfg.Report.Formats
	if len(exportFormats) > 0 {
		formats = exportFormats
	}
	outputDir := cfg.Report.OutputDir
	if exportOutput != "" {
		outputDir = exportOutput
	}

	reports := report.NewRegistry(cfg.Report.Location(), cfg.Report.HTMLTemplate)
	for _, f := range formats {
		if _, err := reports.Get(f); err != nil {
			return err
		}
	}

	var paths []string
	if exportTicks > 0 {
		paths, err = exportSimulated(cmd.Context(), cfg, reports, formats, outputDir)
	} else {
		paths, err = exportRemote(cmd.Context(), client.NewClient(&cfg.Client, logger), formats, outputDir)
	}
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written: %s\n", p)
	}
	return nil
}

// exportSimulated runs a private monitor for exportTicks ticks and writes its final snapshot.
func exportSimulated(ctx context.Context, cfg *config.Config, reports *report.Registry, formats []string, outputDir string) ([]string, error) {
	logger := setupLogger("error", cfg.Logging.Format)
	source := simulator.New(cfg.Lines, cfg.Simulator.Seed, cfg.Broadcast.Interval, logger)
	monitor := service.NewMonitor(cfg, source, logger)

	for i := 0; i < exportTicks; i++ {
		if _, err := monitor.Advance(ctx); err != nil {
			return nil, fmt.Errorf("simulation stopped at tick %d: %w", i, err)
		}
	}

	snap := monitor.Snapshot()
	return reports.WriteAll(&snap, formats, outputDir, cfg.Report.FilenameTemplate)
}

// exportRemote downloads each format from the server.
func exportRemote(ctx context.Context, api *client.Client, formats []string, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		export, err := api.Export(ctx, f)
		if err != nil {
			return paths, err
		}

		name := export.Filename
		if name == "" {
			name = "factory_report." + f
		}
		path := filepath.Join(outputDir, filepath.Base(name))
		if err := os.WriteFile(path, export.Data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
