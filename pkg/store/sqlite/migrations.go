package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	migrationsFS, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrationsFS)
	if err != nil {
		return fmt.Errorf("sqlite: migrations: %w", err)
	}

	startTime := time.Now()
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	if len(results) > 0 {
		version, _ := provider.GetDBVersion(ctx)
		logger.Info("component store migrated",
			"applied", len(results),
			"version", version,
			"duration", time.Since(startTime).Round(time.Millisecond).String())
	}
	return nil
}
