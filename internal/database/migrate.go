package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

const (
	migrationTable = "schema_migrations"
	markerUp       = "-- +migrate Up"
	markerDown     = "-- +migrate Down"

	// serializes instances migrating the same database on startup
	migrationLockID = 7311842
)

// Migrator is satisfied by *pgxpool.Pool and *pgx.Conn
type Migrator interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migrate applies the .sql files at the root of migrations in name order,
// each at most once. Only the part between the Up and Down markers runs.
// Every file runs in its own transaction together with its bookkeeping row.
func Migrate(ctx context.Context, db Migrator, migrations fs.FS) error {
	logger := logrus.WithField("from", "migrations")

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(migrations, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		applied, err := applyMigration(ctx, db, file, ExtractUpMigration(string(content)))
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		if applied {
			logger.Infof("applied migration %s", file)
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db Migrator, name string, upSQL string) (applied bool, err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback(ctx))
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
		return false, err
	}
	if _, err = tx.Exec(ctx, `
CREATE TABLE IF NOT EXISTS `+migrationTable+` (
    name       TEXT        PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return false, err
	}

	var exists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+migrationTable+" WHERE name = $1)",
		name,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists {
		return false, tx.Commit(ctx)
	}

	if strings.TrimSpace(upSQL) != "" {
		// no arguments, pgx sends it over the simple protocol so a file may
		// hold several statements
		if _, err = tx.Exec(ctx, upSQL); err != nil {
			return false, err
		}
	}
	if _, err = tx.Exec(ctx, "INSERT INTO "+migrationTable+" (name) VALUES ($1)", name); err != nil {
		return false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ExtractUpMigration returns the SQL between the Up and Down markers. A file
// without markers is all Up.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, markerUp)
	if upIdx == -1 {
		return content
	}
	up := content[upIdx+len(markerUp):]
	if downIdx := strings.Index(up, markerDown); downIdx != -1 {
		up = up[:downIdx]
	}
	return up
}
