// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/metrics"
	"github.com/tomtom215/betabuddy/internal/storage"
)

func init() {
	// sqlx has no built-in bindvar entry for DuckDB.
	sqlx.BindDriver("duckdb", sqlx.QUESTION)
}

// Store is the SQL implementation of storage.Storage.
type Store struct {
	db      *sqlx.DB
	backend string

	// DuckDB uses optimistic concurrency and aborts concurrent writers on the
	// same row, so writes on that backend are serialized in-process.
	writeMu sync.Mutex

	now func() time.Time
}

// Compile-time interface check.
var _ storage.Storage = (*Store)(nil)

// New opens the database named by cfg.URL, configures the pool and, when
// cfg.MigrateOnStart is set, applies pending migrations.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	target, err := config.ParseDatabaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	switch target.Backend {
	case config.BackendPostgres:
		db, err = sqlx.Open("postgres", target.DSN)
	case config.BackendDuckDB:
		db, err = openDuckDB(target.DSN)
	default:
		return nil, fmt.Errorf("database backend %q is not SQL", target.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", target.Backend, err)
	}

	configurePool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to reach %s database: %w", target.Backend, err)
	}

	s := NewWithDB(db, target.Backend)

	if cfg.MigrateOnStart {
		if _, err := s.Migrate(ctx); err != nil {
			closeQuietly(db)
			return nil, err
		}
	}

	logging.Info().Str("backend", target.Backend).Msg("Database connected")
	return s, nil
}

// NewWithDB wraps an open handle. backend is config.BackendPostgres or
// config.BackendDuckDB and selects dialect differences.
func NewWithDB(db *sqlx.DB, backend string) *Store {
	return &Store{
		db:      db,
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func openDuckDB(path string) (*sqlx.DB, error) {
	if path == "" {
		path = ":memory:"
	} else if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}
	// Extensions are never needed; autoloading stalls in offline environments.
	return sqlx.Open("duckdb", path+"?autoinstall_known_extensions=false&autoload_known_extensions=false")
}

func configurePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	if maxIdle <= 0 || maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
}

// SetClock replaces the time source used for created_at values.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// DB exposes the underlying handle for the migrate command and tests.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Backend implements storage.Storage.
func (s *Store) Backend() string {
	return s.backend
}

// Ping implements storage.Storage.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.PingContext(ctx)
}

// Close implements storage.Storage. DuckDB files are checkpointed first so
// the next start does not replay a large WAL.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if s.backend == config.BackendDuckDB {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := s.db.ExecContext(ctx, "CHECKPOINT"); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return s.db.Close()
}

// lockWrites serializes writers on DuckDB and is a no-op on PostgreSQL,
// where row locks and unique indexes arbitrate.
func (s *Store) lockWrites() func() {
	if s.backend != config.BackendDuckDB {
		return func() {}
	}
	s.writeMu.Lock()
	return s.writeMu.Unlock
}

// observe records query latency and errors for the db_* metrics.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// closeQuietly closes a resource in an error path where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// nullable turns an optional string into a driver value: nil or the string.
func nullable(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
