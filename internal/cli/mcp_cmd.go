package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soyeahso/holiday/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the travel tools over MCP on stdin/stdout",
		Long:  "Runs the travel_server MCP tool host. Logs go to stderr and the configured log file; stdout carries the protocol.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return mcp.NewServer(a.tools, log).Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
