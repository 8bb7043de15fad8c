package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/soyeahso/holiday/internal/agent"
	"github.com/soyeahso/holiday/internal/llm"
)

var (
	promptColor    = color.New(color.FgGreen, color.Bold).SprintFunc()
	assistantColor = color.New(color.FgCyan).SprintFunc()
	errorColor     = color.New(color.FgRed).SprintFunc()
	dimColor       = color.New(color.Faint).SprintFunc()
)

func newChatCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the holiday planner in the terminal",
		Long: "With a message, prints a single reply. Without one, starts an interactive chat; " +
			"type /reset to forget the conversation and /exit to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
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

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				res, err := runner.SubmitTurn(ctx, strings.Join(args, " "), nil)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, res.Reply)
				if verbose {
					printTurnStats(cmd.ErrOrStderr(), res)
				}
				return nil
			}

			return repl(ctx, runner, cmd.InOrStdin(), out, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print model, token and tool call counts after each reply")
	return cmd
}

// repl runs an interactive chat until EOF, /exit or ctx is done. A failed
// turn is reported and leaves the history as it was.
func repl(ctx context.Context, runner *agent.Runner, in io.Reader, out io.Writer, verbose bool) error {
	fmt.Fprintln(out, assistantColor(agent.WelcomeMessage))

	var history []llm.Message
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n"+promptColor("you> "))
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			history = nil
			fmt.Fprintln(out, dimColor("(conversation cleared)"))
			continue
		}

		res, err := runner.SubmitTurn(ctx, line, history)
		if err != nil {
			fmt.Fprintln(out, errorColor("error: "+err.Error()))
			continue
		}
		history = res.History
		fmt.Fprintln(out, assistantColor(res.Reply))
		if verbose {
			printTurnStats(out, res)
		}
	}
}

func printTurnStats(w io.Writer, res *agent.TurnResult) {
	fmt.Fprintln(w, dimColor(fmt.Sprintf("[model=%s tokens=%d+%d tools=%d %s]",
		res.Model, res.Usage.InputTokens, res.Usage.OutputTokens, res.ToolCalls, res.Duration.Round(time.Millisecond))))
}
