package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"factory-monitor/internal/report"
	"factory-monitor/internal/server"
	"factory-monitor/internal/service"
	"factory-monitor/internal/simulator"
)

// Command flags
var (
	serveAddr     string
	serveInterval time.Duration
	serveSeed     int64
	exportOnExit  bool
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitor, REST API and websocket broadcast",
	Long: `Start the simulated production lines and broadcast a snapshot to every
websocket observer on each tick.

Examples:
  # Run with built-in defaults on :5001
  factoryd serve

  # Use a config file and tick every second
  factoryd serve -c configs/config.yaml --interval 1s

  # Write Excel and HTML reports of the final state on shutdown
  factoryd serve --export-on-exit`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides server.addr")
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "broadcast interval, overrides broadcast.interval")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 0, "simulator seed, overrides simulator.seed")
	serveCmd.Flags().BoolVar(&exportOnExit, "export-on-exit", false, "write reports of the final snapshot to report.output_dir on shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveInterval > 0 {
		if cfg.Broadcast.SendTimeout >= serveInterval {
			return fmt.Errorf("--interval %s must be longer than broadcast.send_timeout %s", serveInterval, cfg.Broadcast.SendTimeout)
		}
		cfg.Broadcast.Interval = serveInterval
	}
	if serveSeed != 0 {
		cfg.Simulator.Seed = serveSeed
	}

	source := simulator.New(cfg.Lines, cfg.Simulator.Seed, cfg.Broadcast.Interval, logger)
	monitor := service.NewMonitor(cfg, source, logger)
	scheduler := service.NewScheduler(monitor, cfg.Broadcast, logger)
	reports := report.NewRegistry(cfg.Report.Location(), cfg.Report.HTMLTemplate)
	srv := server.New(cfg, monitor, scheduler, reports, logger)

	logger.Info().
		Str("version", Version).
		Str("addr", cfg.Server.Addr).
		Int("lines", len(cfg.Lines)).
		Int("rules", len(cfg.Anomaly.Rules)).
		Dur("interval", cfg.Broadcast.Interval).
		Msg("starting factory monitor")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}

	if exportOnExit {
		snap := monitor.Snapshot()
		paths, err := reports.WriteAll(&snap, cfg.Report.Formats, cfg.Report.OutputDir, cfg.Report.FilenameTemplate)
		if err != nil {
			return fmt.Errorf("failed to export final snapshot: %w", err)
		}
		for _, p := range paths {
			logger.Info().Str("path", p).Msg("report written")
		}
	}

	logger.Info().Uint64("ticks", monitor.Tick()).Msg("factory monitor stopped")
	return nil
}
