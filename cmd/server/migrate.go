// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/database"
	"github.com/tomtom215/betabuddy/internal/logging"
)

var errNoDatabase = errors.New("DATABASE_URL is not set; the in-memory store has no schema to migrate")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply every pending schema migration to the database named by
DATABASE_URL (postgres:// or duckdb://) and print the resulting version.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
	cmd.Flags().Bool("history", false, "print applied migrations after migrating")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	showHistory, _ := cmd.Flags().GetBool("history")

	target, err := config.ParseDatabaseURL(cfg.Database.URL)
	if err != nil {
		return err
	}
	if target.Backend == config.BackendMemory {
		return errNoDatabase
	}

	dbCfg := cfg.Database
	dbCfg.MigrateOnStart = false

	ctx := cmd.Context()
	store, err := database.New(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close database")
		}
	}()

	applied, err := store.Migrate(ctx)
	if err != nil {
		return err
	}
	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Applied %d migration(s); %s schema is at version %d\n", applied, target.Backend, version)

	if showHistory {
		history, err := store.MigrationHistory(ctx)
		if err != nil {
			return err
		}
		printHistory(out, history)
	}
	return nil
}

func printHistory(w io.Writer, history []database.Migration) {
	for _, m := range history {
		fmt.Fprintf(w, "  %3d  %-28s %s\n", m.Version, m.Name, m.AppliedAt.UTC().Format("2006-01-02 15:04:05"))
	}
}
