// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/logging"
)

// Migration is one versioned schema change. Migrations are append-only:
// never edit or remove one that has shipped.
type Migration struct {
	Version     int       `db:"version"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Statements  []string  `db:"-"`
	AppliedAt   time.Time `db:"applied_at"`
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	applied_at TIMESTAMP NOT NULL
)`

// Migrations returns the ordered migration list for backend.
//
// Both dialects share the table shapes. PostgreSQL additionally gets foreign
// keys and secondary indexes; DuckDB updates rows referenced by foreign keys
// poorly and scans these table sizes faster than it maintains ART indexes.
func Migrations(backend string) []Migration {
	pg := backend == config.BackendPostgres
	ref := func(table string) string {
		if pg {
			return " REFERENCES " + table + "(id)"
		}
		return ""
	}

	initial := []string{
		`CREATE SEQUENCE IF NOT EXISTS users_id_seq`,
		`CREATE SEQUENCE IF NOT EXISTS apps_id_seq`,
		`CREATE SEQUENCE IF NOT EXISTS feedback_id_seq`,
		`CREATE SEQUENCE IF NOT EXISTS app_testers_id_seq`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
			username TEXT NOT NULL,
			username_key TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			email_key TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT,
			bio TEXT,
			avatar TEXT,
			specialization TEXT,
			points INTEGER NOT NULL DEFAULT 0,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS apps (
			id BIGINT PRIMARY KEY DEFAULT nextval('apps_id_seq'),
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			short_description TEXT,
			type TEXT NOT NULL,
			download_url TEXT NOT NULL,
			screenshots TEXT NOT NULL DEFAULT '[]',
			reward_points INTEGER NOT NULL DEFAULT 100,
			user_id BIGINT NOT NULL` + ref("users") + `,
			tester_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id BIGINT PRIMARY KEY DEFAULT nextval('feedback_id_seq'),
			user_id BIGINT NOT NULL` + ref("users") + `,
			app_id BIGINT NOT NULL` + ref("apps") + `,
			rating INTEGER NOT NULL,
			content TEXT NOT NULL,
			bugs TEXT,
			suggestions TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS app_testers (
			id BIGINT PRIMARY KEY DEFAULT nextval('app_testers_id_seq'),
			user_id BIGINT NOT NULL` + ref("users") + `,
			app_id BIGINT NOT NULL` + ref("apps") + `,
			status TEXT NOT NULL DEFAULT 'testing',
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, app_id)
		)`,
	}

	var indexes []string
	if pg {
		indexes = []string{
			`CREATE INDEX IF NOT EXISTS idx_apps_created ON apps(created_at DESC, id DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_apps_user ON apps(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_apps_type ON apps(type)`,
			`CREATE INDEX IF NOT EXISTS idx_feedback_app ON feedback(app_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_app_testers_user ON app_testers(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_users_points ON users(points DESC, id)`,
		}
	}

	return []Migration{
		{Version: 1, Name: "initial_schema", Description: "users, apps, feedback and app_testers", Statements: initial},
		{Version: 2, Name: "secondary_indexes", Description: "listing and leaderboard indexes", Statements: indexes},
	}
}

// Migrate applies every migration not yet recorded in schema_migrations and
// returns how many ran. Each migration commits with its bookkeeping row.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if _, err := s.db.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	count := 0
	for _, m := range Migrations(s.backend) {
		if applied[m.Version] {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return count, err
		}
		count++
		logging.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applied database migration")
	}

	if count > 0 {
		logging.Info().Int("count", count).Str("backend", s.backend).Msg("Database schema up to date")
	}
	return count, nil
}

func (s *Store) applyMigration(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration v%d: %w", m.Version, err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`),
		m.Version, m.Name, m.Description, s.now())
	if err != nil {
		return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration v%d: %w", m.Version, err)
	}
	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	var versions []int
	if err := s.db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations ORDER BY version`); err != nil {
		return nil, err
	}
	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// SchemaVersion returns the highest applied migration version, 0 when none.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// MigrationHistory returns applied migrations in version order.
func (s *Store) MigrationHistory(ctx context.Context) ([]Migration, error) {
	var history []Migration
	err := s.db.SelectContext(ctx, &history,
		`SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	return history, nil
}
