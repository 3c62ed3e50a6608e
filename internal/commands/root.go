// Package commands provides CLI commands for concierge.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/logger"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// app carries the state shared by every command of one invocation
type app struct {
	deps *Dependencies
	cfg  config.Config

	endpointFlag string
	verboseFlag  bool
	outputFlag   string
	fileFlag     string

	logCloser io.Closer
}

// NewRootCmd builds the command tree. A nil deps uses the defaults.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps}

	rootCmd := &cobra.Command{
		Use:   "concierge [message]",
		Short: "Terminal client for the Dining Concierge chatbot",
		Long: `concierge talks to the Dining Concierge chatbot from the terminal.
Messages are POSTed as {"message": "..."} to the configured endpoint and the
bot's reply is printed, or shown in an interactive chat window.

Examples:
  concierge chat                          Start interactive chat
  concierge "I need a table for two"      Send a single message
  concierge -f message.txt                Read the message from a file
  echo "hello" | concierge                Read the message from stdin
  concierge "hi" -o reply.md              Save the reply to a file
  concierge serve                         Run a local gateway for development
  concierge config set endpoint http://127.0.0.1:8787/chatbot`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(a.deps.Out, "concierge %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if a.fileFlag != "" {
				data, err := os.ReadFile(a.fileFlag)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return a.runQuery(cmd.Context(), string(data))
			}

			if len(args) > 0 {
				return a.runQuery(cmd.Context(), args[0])
			}

			input, ok, err := readPipedInput(a.deps.In)
			if err != nil {
				return err
			}
			if ok {
				return a.runQuery(cmd.Context(), input)
			}

			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.endpointFlag, "endpoint", "", "Chatbot endpoint URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&a.verboseFlag, "verbose", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&a.outputFlag, "output", "o", "", "Save reply to file")
	rootCmd.Flags().StringVarP(&a.fileFlag, "file", "f", "", "Read message from file")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.SetOut(deps.Out)
	rootCmd.SetErr(deps.Err)

	rootCmd.AddCommand(newChatCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}

// setup loads the effective config and opens the log file.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if a.endpointFlag != "" {
		cfg.Endpoint = a.endpointFlag
	}
	if a.verboseFlag {
		cfg.Verbose = true
	}
	a.cfg = cfg

	logPath, err := config.GetLogPath(cfg)
	if err != nil {
		fmt.Fprintf(a.deps.Err, "Warning: %v\n", err)
		return nil
	}
	closer, err := logger.Setup(logger.Options{Verbose: cfg.Verbose, File: logPath})
	if err != nil {
		// logging is best effort; the command still runs
		fmt.Fprintf(a.deps.Err, "Warning: %v\n", err)
		return nil
	}
	a.logCloser = closer
	return nil
}

func (a *app) teardown() {
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}

// readPipedInput reads in unless it is an interactive terminal
func readPipedInput(in io.Reader) (string, bool, error) {
	if in == nil {
		return "", false, nil
	}
	if f, ok := in.(*os.File); ok && !hasPipedInput(f) {
		return "", false, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", false, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

// hasPipedInput reports whether f is a pipe or file rather than a terminal
func hasPipedInput(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(nil).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
