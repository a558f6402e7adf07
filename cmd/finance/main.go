package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iho/gofinance/internal/adapter/cli"
	"github.com/iho/gofinance/internal/infrastructure/config"
	"github.com/iho/gofinance/internal/infrastructure/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "finance",
		Short:         "Personal finance manager",
		Long:          `Track income, expenses and budgets, and transfer money between local users.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			defer a.close()

			return runREPL(cmd.Context(), a, in, out)
		},
	}

	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")

	rootCmd.AddCommand(newExportCmd(&envFile), newMigrateCmd(&envFile))

	return rootCmd
}

func setup(ctx context.Context, envFile string) (*app, error) {
	cfg, err := config.LoadWithEnvFile(envFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	return newApp(ctx, cfg, log)
}

func runREPL(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	session := a.newSession()

	n, err := session.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	a.logger.Info().Int("users", n).Msg("user directory restored")

	return cli.New(session, in, out, a.logger.With().Str("component", "repl").Logger()).Run(ctx)
}
