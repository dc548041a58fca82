package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"factory-monitor/internal/tui"
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch live snapshots from a running server in the terminal",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	stream, err := tui.Dial(cmd.Context(), cfg.Client.Endpoint, cfg.Client.Timeout)
	if err != nil {
		return err
	}
	defer stream.Close()

	p := tea.NewProgram(tui.NewModel(stream, cfg.Client.Endpoint), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
