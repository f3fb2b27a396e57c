// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
	"github.com/tomtom215/betabuddy/internal/storage/storagetest"
)

func newDuckDBStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), config.DatabaseConfig{
		URL:            "duckdb://:memory:",
		MaxOpenConns:   4,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("New(duckdb) error = %v", err)
	}
	return s
}

func TestDuckDBContract(t *testing.T) {
	storagetest.RunContract(t, func(t *testing.T) storage.Storage {
		return newDuckDBStore(t)
	})
}

func TestDuckDBMigrateIdempotent(t *testing.T) {
	s := newDuckDBStore(t)
	defer s.Close()
	ctx := context.Background()

	n, err := s.Migrate(ctx)
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second Migrate() applied %d migrations, want 0", n)
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if want := len(Migrations(config.BackendDuckDB)); version != want {
		t.Errorf("SchemaVersion() = %d, want %d", version, want)
	}

	history, err := s.MigrationHistory(ctx)
	if err != nil {
		t.Fatalf("MigrationHistory() error = %v", err)
	}
	if len(history) != 2 || history[0].Name != "initial_schema" {
		t.Errorf("MigrationHistory() = %+v", history)
	}
}

func TestDuckDBScreenshotsRoundTrip(t *testing.T) {
	s := newDuckDBStore(t)
	defer s.Close()
	ctx := context.Background()

	dev := storagetest.MustCreateUser(t, s, "dev")
	created, err := s.CreateApp(ctx, models.NewApp{
		Title:            "Shots",
		Description:      "An app with several screenshots for the gallery view.",
		ShortDescription: models.StringPtr("Gallery"),
		Type:             models.AppTypeDesktop,
		DownloadURL:      "https://example.com/shots",
		Screenshots:      []string{"/uploads/a.png", "/uploads/b.webp"},
		RewardPoints:     120,
		UserID:           dev.ID,
	})
	if err != nil {
		t.Fatalf("CreateApp() error = %v", err)
	}

	got, err := s.GetApp(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetApp() error = %v", err)
	}
	if len(got.Screenshots) != 2 || got.Screenshots[1] != "/uploads/b.webp" {
		t.Errorf("screenshots = %v", got.Screenshots)
	}
	if got.ShortDescription == nil || *got.ShortDescription != "Gallery" {
		t.Errorf("short description = %v", got.ShortDescription)
	}
}

func TestDuckDBFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "betabuddy.duckdb")
	ctx := context.Background()
	cfg := config.DatabaseConfig{URL: path, MigrateOnStart: true}

	s, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s.Backend() != config.BackendDuckDB {
		t.Errorf("Backend() = %q", s.Backend())
	}
	storagetest.MustCreateUser(t, s, "persisted")
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	u, err := reopened.GetUserByUsername(ctx, "PERSISTED")
	if err != nil {
		t.Fatalf("GetUserByUsername() after reopen error = %v", err)
	}
	if u.Username != "persisted" {
		t.Errorf("username = %q", u.Username)
	}
}

func TestNewRejectsMemoryBackend(t *testing.T) {
	if _, err := New(context.Background(), config.DatabaseConfig{URL: ""}); err == nil {
		t.Error("New() with empty URL should fail; the memory backend lives in storage")
	}
}
