package main

import (
	"fmt"

	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/gofinance/internal/adapter/repository/postgres"
	sqliteRepo "github.com/iho/gofinance/internal/adapter/repository/sqlite"
	"github.com/iho/gofinance/internal/infrastructure/config"
	"github.com/iho/gofinance/internal/infrastructure/logger"
	"github.com/iho/gofinance/internal/infrastructure/postgres"
	"github.com/iho/gofinance/internal/infrastructure/sqlite"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back) the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithEnvFile(*envFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}).
				With().Str("command", "migrate").Logger()

			switch cfg.StorageDriver {
			case config.DriverPostgres:
				if down {
					err = postgres.RunMigrationsDown(cfg.DatabaseURL, postgresRepo.Migrations, log)
				} else {
					err = postgres.RunMigrations(cfg.DatabaseURL, postgresRepo.Migrations, log)
				}
			case config.DriverSQLite:
				if down {
					return fmt.Errorf("rollback is only supported for %s", config.DriverPostgres)
				}
				db, oerr := sqlite.Open(cmd.Context(), cfg.SQLitePath)
				if oerr != nil {
					return oerr
				}
				db.Close()
				err = sqlite.RunMigrations(cfg.SQLitePath, sqliteRepo.Migrations, log)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "storage driver %q has no schema\n", cfg.StorageDriver)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Roll back all migrations (postgres only)")

	return cmd
}
