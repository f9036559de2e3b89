// Command apivroctl is the operator CLI: migrations, seed data, API keys and
// manual payment reconciliation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"apivro/internal/config"
	pg "apivro/internal/infra/db/postgres"
	"apivro/internal/infra/logging"
)

var Version = "dev"

var (
	cfgPath string
	devMode bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "apivroctl",
		Short:         "Operator tooling for the API VRO control plane",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "developer mode")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(apikeyCmd())
	rootCmd.AddCommand(paymentsCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

// env is what most subcommands need: config, a logger and a database pool.
type env struct {
	cfg  *config.Config
	log  *zerolog.Logger
	pool *pgxpool.Pool
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return &env{cfg: cfg, log: logger, pool: pool}, nil
}

func (e *env) Close() { e.pool.Close() }
