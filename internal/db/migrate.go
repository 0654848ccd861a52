package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/horde/internal/db/migrations"
)

// RunMigrations brings the content schema (species, zones, pool sizes) up to
// date and returns the schema version it ended at.
func RunMigrations(ctx context.Context, dsn string) (int64, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("opening content database for migrations: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("setting goose dialect: %w", err)
	}

	before, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("reading content schema version: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return before, fmt.Errorf("migrating content schema from version %d: %w", before, err)
	}
	after, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return before, fmt.Errorf("reading content schema version: %w", err)
	}

	if after != before {
		slog.Info("content schema migrated", "from", before, "to", after)
	}
	return after, nil
}
