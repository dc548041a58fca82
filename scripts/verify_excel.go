//go:build ignore
// +build ignore

// This script simulates a factory shift and writes sample reports for manual verification.
// Run with: go run scripts/verify_excel.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"factory-monitor/internal/config"
	"factory-monitor/internal/report"
	"factory-monitor/internal/service"
	"factory-monitor/internal/simulator"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
		os.Exit(1)
	}

	// A fixed seed and a long run make the alert and health sheets interesting.
	logger := zerolog.Nop()
	source := simulator.New(cfg.Lines, 42, cfg.Broadcast.Interval, logger)
	monitor := service.NewMonitor(cfg, source, logger)

	for i := 0; i < 500; i++ {
		if _, err := monitor.Advance(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error at tick %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	tz, _ := time.LoadLocation("Asia/Shanghai")
	reports := report.NewRegistry(tz, "")
	snap := monitor.Snapshot()

	paths, err := reports.WriteAll(&snap, []string{"excel", "html"}, ".", "sample_factory_report")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	for _, p := range paths {
		fmt.Printf("✅ Report generated: %s\n", p)
	}
	fmt.Printf("\nTick %d, %d active alerts (%d critical, %d warning)\n",
		snap.Tick, len(snap.Alerts), snap.AlertCounts.Critical, snap.AlertCounts.Warning)
	fmt.Println("\nPlease open the files to verify:")
	fmt.Println("  - Time is in Asia/Shanghai timezone")
	fmt.Println("  - Warning cells have yellow background")
	fmt.Println("  - Critical cells have red background")
	fmt.Println("  - Header row is frozen on every sheet")
}
