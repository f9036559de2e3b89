package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"apivro/internal/config"
	pg "apivro/internal/infra/db/postgres"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}

	run := func(name string, fn func(cmd *cobra.Command, dsn string) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: "goose " + name,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig(cfgPath, devMode)
				if err != nil {
					return err
				}
				return fn(cmd, cfg.Database.URL)
			},
		}
	}

	cmd.AddCommand(run("up", func(cmd *cobra.Command, dsn string) error {
		if err := pg.MigrateUp(cmd.Context(), dsn); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	}))
	cmd.AddCommand(run("down", func(cmd *cobra.Command, dsn string) error {
		if err := pg.MigrateDown(cmd.Context(), dsn); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "rolled back one migration")
		return nil
	}))
	cmd.AddCommand(run("status", func(cmd *cobra.Command, dsn string) error {
		return pg.MigrateStatus(cmd.Context(), dsn)
	}))
	return cmd
}
