package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show holiday paths and a configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", version.Info())

			fmt.Fprintf(out, "Config:  %s\n", paths.Config)
			fmt.Fprintf(out, "Data:    %s\n", paths.Data)
			fmt.Fprintf(out, "Logs:    %s\n", paths.Logs)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config file not found (using defaults and environment)")
			}
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config error: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Model:   provider=%s model=%s\n", cfg.Model.Provider, orDefault(cfg.Model.Model, "(provider default)"))
			fmt.Fprintf(out, "Tools:   policy=%s flights=%s timeout=%s\n",
				cfg.Tools.FailurePolicy, cfg.Tools.FlightSelection, cfg.ToolTimeout())
			fmt.Fprintf(out, "Keys:    weather=%s tavily=%s amadeus=%s\n",
				isSet(cfg.Weather.APIKey), isSet(cfg.Search.APIKey), isSet(cfg.Amadeus.ClientID))

			auth := "none"
			if cfg.Gateway.Token != "" {
				auth = "token"
			}
			fmt.Fprintf(out, "Gateway: port=%d bind=%s auth=%s\n", cfg.Gateway.Port, cfg.Gateway.Bind, auth)

			if cfg.Store.IsEnabled() {
				fmt.Fprintf(out, "Store:   %s\n", orDefault(cfg.Store.Path, paths.InvocationDB()))
			} else {
				fmt.Fprintln(out, "Store:   disabled")
			}

			if issues := config.Validate(&cfg); len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}
			return nil
		},
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func isSet(v string) string {
	if v == "" {
		return "missing"
	}
	return "set"
}
