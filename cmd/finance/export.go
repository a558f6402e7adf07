package main

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/iho/gofinance/internal/adapter/export"
)

func newExportCmd(envFile *string) *cobra.Command {
	var (
		login     string
		secret    string
		outPath   string
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's operation history as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			delim, size := utf8.DecodeRuneInString(delimiter)
			if size == 0 || size != len(delimiter) {
				return fmt.Errorf("delimiter must be a single character, got %q", delimiter)
			}

			a, err := setup(cmd.Context(), *envFile)
			if err != nil {
				return err
			}
			defer a.close()

			log := a.logger.With().Str("command", "export").Logger()

			session := a.newSession()
			if _, err := session.Bootstrap(cmd.Context()); err != nil {
				return fmt.Errorf("load users: %w", err)
			}
			if _, err := session.Login(cmd.Context(), login, secret); err != nil {
				return err
			}

			ops, err := session.History()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				w = f
			}

			if err := export.WriteOperations(w, ops, delim); err != nil {
				return err
			}

			log.Info().Str("login", login).Int("operations", len(ops)).Str("out", outPath).Msg("history exported")
			return nil
		},
	}

	cmd.Flags().StringVar(&login, "login", "", "User login")
	cmd.Flags().StringVar(&secret, "secret", "", "User password")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "CSV field delimiter")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}
