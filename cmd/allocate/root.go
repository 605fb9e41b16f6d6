package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/internship-allocator/internal/config"
	"github.com/kirillkom/internship-allocator/internal/observability/logging"
)

const app = "allocate"

var (
	// Used for flags.
	logLevel   string
	policyFile string
	corpusPath string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "allocate runs offline internship allocations and queues match requests",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			slog.SetDefault(logging.New(os.Stderr, "allocator-cli", logLevel))
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cfg := config.Load()

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", cfg.PolicyFile, "fairness policy YAML (defaults to built-in policy)")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", cfg.CorpusPath, "opportunity table (.csv or .xlsx)")
}
