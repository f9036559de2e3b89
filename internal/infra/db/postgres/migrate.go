package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib" // database/sql driver "pgx" for goose
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func openForMigrations(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	return db, nil
}

// MigrateUp applies every embedded migration that is not applied yet.
func MigrateUp(ctx context.Context, dsn string) error {
	db, err := openForMigrations(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, dsn string) error {
	db, err := openForMigrations(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := goose.DownContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// MigrateStatus prints the applied state of each migration through goose's logger.
func MigrateStatus(ctx context.Context, dsn string) error {
	db, err := openForMigrations(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := goose.StatusContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose status: %w", err)
	}
	return nil
}
