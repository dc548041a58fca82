package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"factory-monitor/internal/client"
	"factory-monitor/internal/model"
)

var alertsAll bool

// alertsCmd groups the alert commands.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List, acknowledge and resolve alerts on a running server",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active alerts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPIClient()
		if err != nil {
			return err
		}
		alerts, err := api.Alerts(cmd.Context(), alertsAll)
		if err != nil {
			return err
		}
		printAlerts(cmd.OutOrStdout(), alerts)
		return nil
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an open alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPIClient()
		if err != nil {
			return err
		}
		alert, err := api.Acknowledge(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", alert.ID, alert.Status)
		return nil
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an open or acknowledged alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPIClient()
		if err != nil {
			return err
		}
		alert, err := api.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", alert.ID, alert.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd, alertsAckCmd, alertsResolveCmd)

	alertsListCmd.Flags().BoolVar(&alertsAll, "all", false, "include acknowledged and resolved alerts")
}

func newAPIClient() (*client.Client, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return client.NewClient(&cfg.Client, logger), nil
}

func printAlerts(w io.Writer, alerts []model.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts")
		return
	}

	fmt.Fprintf(w, "%-10s %-19s %-10s %-9s %-13s %s\n", "ID", "TIME", "LINE", "SEVERITY", "STATUS", "MESSAGE")
	for _, a := range alerts {
		fmt.Fprintf(w, "%-10s %-19s %-10s %-9s %-13s %s\n",
			a.ID, a.Timestamp.Format("2006-01-02 15:04:05"), a.LineID, a.Severity, a.Status, a.Message)
	}
}
