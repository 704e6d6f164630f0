package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/attriwatch/attriwatch/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

// RowErrorsError reports a batch that completed with rejected rows.
type RowErrorsError struct {
	Failed int
	Total  int
}

func (e *RowErrorsError) Error() string {
	return fmt.Sprintf("rejected %d of %d rows", e.Failed, e.Total)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attriwatch-cli",
		Short: "AttriWatch - offline retention priority scoring",
		Long: `AttriWatch scores employee tables with an attrition model and a
performance model and exports the high performers at risk of leaving.

Configuration follows the server: defaults, then the YAML file named by
--config or ATTRIWATCH_CONFIG, then ATTRIWATCH_* environment variables,
then command flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	logLevel := cmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := logger.InitWithOptions(logger.Options{Writer: cmd.ErrOrStderr()}); err != nil {
			return err
		}
		return logger.SetLevelString(*logLevel)
	}

	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newVocabCommand())
	cmd.AddCommand(newGenerateCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCommand().ExecuteContext(ctx)
}

func exitCode(err error) int {
	var rowErrs *RowErrorsError
	if errors.As(err, &rowErrs) {
		return ExitPartial
	}
	return ExitError
}
