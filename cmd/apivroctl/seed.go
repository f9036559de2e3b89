package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"apivro/internal/domain/model"
	"apivro/internal/domain/ports/repository"
	pg "apivro/internal/infra/db/postgres"
)

// defaultPlans are the tiers a fresh installation sells.
var defaultPlans = []struct {
	ID    string
	Name  string
	Limit int
	Price int64
}{
	{"basic", "Basic", 1_000, 50_000},
	{"pro", "Pro", 10_000, 150_000},
	{"enterprise", "Enterprise", 100_000, 500_000},
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert reference data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "plans",
		Short: "Create the default plans when none exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			plans := pg.NewPlanRepo(e.pool)
			existing, err := plans.ListActive(ctx, repository.NoTX)
			if err != nil {
				return fmt.Errorf("list plans: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(existing) > 0 {
				fmt.Fprintf(out, "%d plans already present. No changes.\n", len(existing))
				for _, p := range existing {
					fmt.Fprintf(out, "  - %s (limit=%d, price=%s)\n", p.Name, p.MessageLimit, model.FormatRupiah(p.PriceMonthly))
				}
				return nil
			}

			for _, s := range defaultPlans {
				p, err := model.NewPlan(s.ID, s.Name, s.Limit, s.Price)
				if err != nil {
					return fmt.Errorf("plan %q: %w", s.ID, err)
				}
				if err := plans.Save(ctx, repository.NoTX, p); err != nil {
					return fmt.Errorf("save plan %q: %w", s.ID, err)
				}
				fmt.Fprintf(out, "seeded: %s (id=%s, limit=%d, price=%s)\n", p.Name, p.ID, p.MessageLimit, model.FormatRupiah(p.PriceMonthly))
			}
			return nil
		},
	})
	return cmd
}
