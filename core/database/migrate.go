package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"setlist-api/core/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded migration that is not yet recorded in
// schema_migrations, in lexical file order.
func (d *Database) Migrate(ctx context.Context) error {
	if _, err := d.sqlx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	var applied []string
	if err := d.sqlx.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return fmt.Errorf("load schema_migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, file := range files {
		if done[file] {
			continue
		}
		body, err := migrations.ReadFile(file)
		if err != nil {
			return err
		}

		tx, err := d.sqlx.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, file); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		logger.Info("Database:Migrate:Applied", "version", file)
	}

	return nil
}
