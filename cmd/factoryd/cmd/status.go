package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"factory-monitor/internal/client"
	"factory-monitor/internal/model"
)

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current factory snapshot from a running server",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	api := client.NewClient(&cfg.Client, logger)
	snap, err := api.Analytics(cmd.Context())
	if err != nil {
		return err
	}

	printStatus(cmd.OutOrStdout(), snap)
	return nil
}

// printStatus prints the overall metrics, one row per line and the alert counts.
func printStatus(w io.Writer, snap *model.BroadcastSnapshot) {
	o := snap.Overall
	fmt.Fprintf(w, "Tick %d at %s\n", snap.Tick, snap.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w, "───────────────────────────────────")
	fmt.Fprintf(w, "  Output:        %d (%d defects)\n", o.TotalOutput, o.TotalDefects)
	fmt.Fprintf(w, "  OEE:           %.1f%%\n", o.OverallOEE)
	fmt.Fprintf(w, "  Efficiency:    %.1f%%\n", o.AverageEfficiency)
	fmt.Fprintf(w, "  Active lines:  %d/%d\n", o.ActiveLines, o.TotalLines)
	fmt.Fprintf(w, "  Alerts:        %d critical, %d warning\n", snap.AlertCounts.Critical, snap.AlertCounts.Warning)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-10s %-12s %8s %7s %7s %9s\n", "LINE", "STATUS", "SPEED", "EFF%", "OEE%", "OUTPUT")
	for _, l := range snap.Lines {
		fmt.Fprintf(w, "%-10s %-12s %8.1f %7.1f %7.1f %9d\n",
			l.ID, l.Status, l.CurrentSpeed, l.Efficiency, l.OEE, l.ProductsProduced)
	}
}
