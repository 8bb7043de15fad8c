package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths     config.Paths
	log       *logging.Logger
	logCloser io.Closer
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "holiday: a travel planning assistant",
		Long: "holiday answers travel questions with a chat model backed by weather, news, " +
			"hotel and flight lookups. Run it as a web chat, a terminal chat or an MCP tool server.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			// A .env in the working directory wins over the one in the base dir.
			if err := config.LoadDotEnv(".env", paths.Env); err != nil {
				return err
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
				logCloser = nil
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.holiday/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// loadConfig loads the config, applies command-line overrides, validates
// it and rebuilds the logger from its logging section. The --log-level flag
// wins over the file. Commands that never talk to the chat model pass
// needModel=false so model settings are not required.
func loadConfig(needModel bool, overrides ...func(*config.Config)) (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	for _, o := range overrides {
		o(&cfg)
	}
	var ignore []string
	if !needModel {
		ignore = append(ignore, "model")
	}
	if err := config.Check(&cfg, ignore...); err != nil {
		return cfg, err
	}

	l, closer, err := logging.Open(logging.Options{
		Level: cfg.Logging.Level,
		Style: cfg.Logging.Style,
		File:  cfg.Logging.File,
	})
	if err != nil {
		return cfg, err
	}
	log, logCloser = l, closer
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// ExecuteMCP runs the mcp subcommand directly; args are passed after it.
func ExecuteMCP(args []string) error {
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"mcp"}, args...))
	return cmd.Execute()
}
