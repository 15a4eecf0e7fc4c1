// Package cmd provides the CLI commands for docsearch.
package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	apperrors "github.com/Aman-CERP/docsearch/internal/errors"
	"github.com/Aman-CERP/docsearch/internal/logging"
	"github.com/Aman-CERP/docsearch/internal/output"
	"github.com/Aman-CERP/docsearch/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the docsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docsearch",
		Short: "Hybrid document search over open-data catalogs",
		Long: `docsearch indexes a document catalog and answers queries with a
hybrid of semantic (embedding) and keyword (TF-IDF) retrieval,
weighting the two engines per query.

Run 'docsearch index' once, then 'docsearch search <query>'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("docsearch version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.docsearch/logs/")
	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = teardownLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.WriteToStderr = false
	if debugMode {
		cfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		// Logging must never block the command itself.
		slog.Warn("logging_setup_failed", slog.String("error", err.Error()))
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// ReportError prints a command error to out and returns the process
// exit code: 2 for fatal errors, 1 otherwise. Retryable failures get a
// hint that trying again may succeed.
func ReportError(out io.Writer, err error) int {
	if err == nil {
		return 0
	}
	w := output.New(out)
	w.Error(err.Error())
	if apperrors.IsRetryable(err) {
		w.Warning("transient failure, retrying may succeed")
	}
	if apperrors.IsFatal(err) {
		return 2
	}
	return 1
}
