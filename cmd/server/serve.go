// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/betabuddy/internal/api"
	"github.com/tomtom215/betabuddy/internal/audit"
	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/authz"
	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/database"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/marketplace"
	"github.com/tomtom215/betabuddy/internal/storage"
	"github.com/tomtom215/betabuddy/internal/supervisor"
	"github.com/tomtom215/betabuddy/internal/supervisor/services"
	"github.com/tomtom215/betabuddy/internal/upload"
)

const authzCacheTTL = time.Minute

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	logging.Info().
		Str("version", Version).
		Str("commit", Commit).
		Str("environment", cfg.Server.Environment).
		Msg("Starting BetaBuddy")
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS_ORIGINS allows any origin; cross-origin requests are sent without credentials")
	}

	components, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		// Leave room for the HTTP server's own drain.
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}
	tree.AddAPIService(services.NewHTTPServerService(components.server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewSessionCleanupService(components.sessions.Store, cfg.Session.CleanupInterval))
	if components.audit.Enabled() {
		tree.AddMaintenanceService(services.NewAuditRetentionService(components.audit, time.Hour))
	}

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}

	logging.Info().Msg("BetaBuddy stopped")
	return nil
}

// app holds the wired components and the resources they own.
type app struct {
	store    storage.Storage
	sessions *auth.OpenedStore
	enforcer *authz.Enforcer
	audit    *audit.Logger
	server   *http.Server
}

// buildApp wires storage, sessions, authorization, uploads, the audit
// trail and the router.
// On error every resource opened so far is released.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	built := false
	defer func() {
		if !built {
			a.Close()
		}
	}()

	var err error
	a.store, err = openStorage(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a.sessions, err = auth.OpenSessionStore(ctx, cfg.Session, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	logging.Info().Str("store", string(a.sessions.Type)).Msg("Session store ready")

	a.enforcer, err = authz.NewEnforcer(authz.EnforcerConfig{CacheTTL: authzCacheTTL})
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization enforcer: %w", err)
	}

	uploads, err := upload.New(cfg.Uploads)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	svc := marketplace.New(a.store)
	if err := svc.SeedAdmin(ctx, cfg.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	a.audit = audit.NewLogger(audit.NewMemoryStore(cfg.Audit.MaxEvents), audit.Config{
		Enabled:   cfg.Audit.Enabled,
		Retention: cfg.Audit.Retention,
	})
	authzMw := authz.NewMiddleware(a.enforcer)
	authzMw.OnDenied(a.audit.AuthzDenied)

	sessions := auth.NewSessionManager(a.sessions.Store, auth.ManagerConfig{
		CookieName:   cfg.Session.CookieName,
		TTL:          cfg.Session.TTL,
		Sliding:      true,
		CookieSecure: cfg.Session.CookieSecure,
	})

	router := api.NewRouter(
		api.NewHandler(svc, sessions, uploads, a.audit, Version),
		sessions,
		authzMw,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)),
		uploads,
		api.RouterOptions{RequestTimeout: cfg.Server.Timeout},
	)

	a.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	built = true
	return a, nil
}

// openStorage returns the in-memory store when no database URL is set.
func openStorage(ctx context.Context, cfg config.DatabaseConfig) (storage.Storage, error) {
	target, err := config.ParseDatabaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if target.Backend == config.BackendMemory {
		logging.Warn().Msg("DATABASE_URL not set; data is kept in memory and lost on restart")
		return storage.NewMemStorage(), nil
	}
	store, err := database.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Close releases everything buildApp opened. Safe on a partially built app.
func (a *app) Close() {
	if a.enforcer != nil {
		a.enforcer.Close()
	}
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close session store")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
