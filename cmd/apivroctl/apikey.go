package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pg "apivro/internal/infra/db/postgres"
	"apivro/internal/usecase"
)

func apikeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage device API keys",
	}

	var name string
	issue := &cobra.Command{
		Use:   "issue [user-id] [device-id]",
		Short: "Issue a new API key for a device; the raw key is printed once",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			uc := usecase.NewAPIKeyUseCase(pg.NewAPIKeyRepo(e.pool), pg.NewDeviceRepo(e.pool), nil, e.log)
			raw, key, err := uc.Issue(ctx, args[0], args[1], name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:      %s\n", key.ID)
			fmt.Fprintf(out, "name:    %s\n", key.Name)
			fmt.Fprintf(out, "api key: %s\n", raw)
			return nil
		},
	}
	issue.Flags().StringVarP(&name, "name", "n", "", "key label")

	revoke := &cobra.Command{
		Use:   "revoke [key-id]",
		Short: "Deactivate an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			uc := usecase.NewAPIKeyUseCase(pg.NewAPIKeyRepo(e.pool), pg.NewDeviceRepo(e.pool), nil, e.log)
			if err := uc.Revoke(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(issue, revoke)
	return cmd
}
