package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"techrank/internal/bootstrap/logging"
	"techrank/internal/errs"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:           "techrank",
	Short:         "Technician performance and assignment ranking engine",
	Long:          "Points ledger, level ladder, promotions, skills, candidate ranking and technician notifications.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is called by main.main.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	// Flags are parsed inside ExecuteContext; the logger is rebuilt in PersistentPreRun.
	ctx = logging.WithLogger(ctx, logging.New(rootCmd.ErrOrStderr(), "text", "info"))
	ctx = logging.WithAttrs(ctx, slog.String("app", "techrank"))

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", errs.UserMessage(err))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
	rootCmd.PersistentFlags().String("company", "", "Company id every command is scoped to")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		logger := logging.New(cmd.ErrOrStderr(), logFormat, logLevel)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	}
}
