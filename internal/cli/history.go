package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soyeahso/holiday/internal/agent"
	"github.com/soyeahso/holiday/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var (
		tool   string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent tool invocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			if !cfg.Store.IsEnabled() {
				return errors.New("the invocation log is disabled (store.enabled: false)")
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			recs, err := a.invocations.Recent(ctx, tool, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if recs == nil {
					recs = []store.InvocationRecord{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}

			if len(recs) == 0 {
				fmt.Fprintln(out, "No tool invocations recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTOOL\tOUTCOME\tDURATION\tINPUT")
			for _, r := range recs {
				input := r.Input
				if r.Outcome == agent.OutcomeError {
					input += "  ! " + r.Error
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%dms\t%s\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Tool, r.Outcome, r.DurationMS, input)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			counts, err := a.invocations.Counts(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal: %d ok, %d empty, %d error\n",
				counts[agent.OutcomeOK], counts[agent.OutcomeEmpty], counts[agent.OutcomeError])
			return nil
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "only show invocations of this tool")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of invocations to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
