package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/tools"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List or call the travel tools directly",
	}

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsCallCmd())
	return cmd
}

func newToolsListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Listing needs no credentials, so the config is not validated.
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			defs := tools.NewRegistry(newLookups(&cfg)).Definitions()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(defs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, def := range defs {
				fmt.Fprintf(tw, "%s\t%s\n", def.Name, def.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print full definitions with input schemas")
	return cmd
}

func newToolsCallCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "call <name>",
		Short: "Call a tool with JSON arguments and print its result",
		Example: `  holiday tools call get_weather_info --input '{"city": "Lisbon", "number_of_days": 3}'
  holiday tools call get_flights --input '{"origin": "PAR", "destination": "ROM", "departure_date": "2026-06-01", "adults": 1}'`,
		Args: cobra.ExactArgs(1),
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

			out, err := a.tools.Execute(ctx, args[0], input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "{}", "tool arguments as a JSON object")
	return cmd
}
