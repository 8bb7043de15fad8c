package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/gateway"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true, func(c *config.Config) {
				if port != 0 {
					c.Gateway.Port = port
				}
				if bind != "" {
					c.Gateway.Bind = bind
				}
			})
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			runner, err := a.runner()
			if err != nil {
				return err
			}

			opts := []gateway.ServerOption{
				gateway.WithRunner(runner),
				gateway.WithTools(a.tools),
			}
			if a.invocations != nil {
				opts = append(opts, gateway.WithInvocations(a.invocations))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return gateway.New(cfg, log, opts...).Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
