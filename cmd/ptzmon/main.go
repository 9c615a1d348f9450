// ptzmon - terminal monitor for the autotrack daemon
package main

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	flagAddr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ptzmon",
		Short: "ptzmon - live view of PTZ autotracking",
		Long: `ptzmon connects to an autotrack daemon and shows, per region, the
tracker phase, error zone, predicted error and commanded camera velocity.

Keys: up/down select a region, e/d enable or disable it, q quits.`,
		RunE: runMonitor,
	}
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "http://localhost:8090", "autotrack daemon base URL")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Print region status once and exit",
			RunE:  runStatus,
		},
		&cobra.Command{
			Use:   "enable <region>",
			Short: "Enable autotracking for a region",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runToggle(cmd, args[0], true) },
		},
		&cobra.Command{
			Use:   "disable <region>",
			Short: "Disable autotracking for a region and stop its camera",
			Args:  cobra.ExactArgs(1),
			RunE:  func(cmd *cobra.Command, args []string) error { return runToggle(cmd, args[0], false) },
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	api := newAPI(flagAddr)
	model := newModel(api)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithFPS(30))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go newStream(debugURL(flagAddr), p).Run(ctx)

	_, err := p.Run()
	return err
}

// debugURL maps the daemon's http(s) base URL to its debug websocket.
func debugURL(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/debug"
}
