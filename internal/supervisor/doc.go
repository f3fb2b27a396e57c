// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package supervisor runs BetaBuddy's long-lived components under a suture
// supervisor tree, restarting them with backoff when they fail.
//
// Service wrappers live in the services subpackage. Typical wiring:
//
//	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
//	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
//	tree.AddMaintenanceService(services.NewSessionCleanupService(store, cfg.Session.CleanupInterval))
//	err := tree.Serve(ctx)
package supervisor
