package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationFile matches "0001_tasks.up.sql" and "0001_tasks.down.sql".
var migrationFile = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// Migration is one schema version with the SQL to apply and revert it.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// MigrationState pairs a known migration with when it was applied. AppliedAt
// is zero for pending migrations.
type MigrationState struct {
	Migration
	Applied   bool
	AppliedAt time.Time
}

// parseFilename splits a migration file name into its version, name and
// direction.
func parseFilename(filename string) (version int, name string, up bool, err error) {
	m := migrationFile.FindStringSubmatch(filename)
	if m == nil {
		return 0, "", false, fmt.Errorf("want NNNN_name.up.sql or NNNN_name.down.sql, got %q", filename)
	}
	version, err = strconv.Atoi(m[1])
	if err != nil || version < 1 {
		return 0, "", false, fmt.Errorf("version %q must be a positive integer", m[1])
	}
	return version, m[2], m[3] == "up", nil
}

// loadMigrations reads the embedded SQL files. Every version needs exactly
// one up and one down file with the same name.
func loadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		version, name, up, err := parseFilename(entry.Name())
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(migrationsFS, path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if m.Name != name {
			return nil, fmt.Errorf("migration %04d has files named %q and %q", version, m.Name, name)
		}

		slot := &m.DownSQL
		if up {
			slot = &m.UpSQL
		}
		if *slot != "" {
			return nil, fmt.Errorf("migration %04d has more than one %s file", version, entry.Name())
		}
		*slot = string(body)
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration %04d_%s needs both up and down files", m.Version, m.Name)
		}
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out, nil
}

// Status lists every embedded migration in version order with its applied
// state.
func Status(ctx context.Context, conn *sql.DB) ([]MigrationState, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, err
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return nil, err
	}

	states := make([]MigrationState, len(migrations))
	for i, m := range migrations {
		at, ok := applied[m.Version]
		states[i] = MigrationState{Migration: m, Applied: ok, AppliedAt: at}
	}
	return states, nil
}

// MigrateUp applies every pending migration in version order.
func MigrateUp(ctx context.Context, conn *sql.DB) error {
	return migrateUp(ctx, conn)
}

func migrateUp(ctx context.Context, conn *sql.DB) error {
	states, err := Status(ctx, conn)
	if err != nil {
		return err
	}

	for _, s := range states {
		if s.Applied {
			continue
		}
		log.Info().Int("version", s.Version).Str("name", s.Name).Msg("applying migration")
		if err := runMigration(ctx, conn, s.Migration, true); err != nil {
			return fmt.Errorf("apply migration %04d_%s: %w", s.Version, s.Name, err)
		}
	}
	return nil
}

// MigrateDown reverts the n most recently applied migrations, newest first.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	if n < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", n)
	}

	states, err := Status(ctx, conn)
	if err != nil {
		return err
	}

	var applied []Migration
	for _, s := range slices.Backward(states) {
		if s.Applied {
			applied = append(applied, s.Migration)
		}
	}
	if n > len(applied) {
		return fmt.Errorf("cannot revert %d migrations: only %d applied", n, len(applied))
	}

	for _, m := range applied[:n] {
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		if err := runMigration(ctx, conn, m, false); err != nil {
			return fmt.Errorf("revert migration %04d_%s: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// appliedVersions returns the recorded versions and when they were applied.
// The tracking table is created on first use.
func appliedVersions(ctx context.Context, conn *sql.DB) (map[int]time.Time, error) {
	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := conn.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var (
			version int
			at      int64
		)
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[version] = time.Unix(0, at)
	}
	return applied, rows.Err()
}

// runMigration executes one direction of m and updates schema_migrations in
// the same transaction.
func runMigration(ctx context.Context, conn *sql.DB, m Migration, up bool) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	body, record, args := m.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", []any{m.Version}
	if up {
		body = m.UpSQL
		record = "INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)"
		args = []any{m.Version, m.Name, time.Now().UnixNano()}
	}

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
