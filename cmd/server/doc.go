// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

/*
Package main is the entry point for the BetaBuddy API server.

BetaBuddy is a beta-testing marketplace: developers list apps with a
reward, testers sign up to test them and earn points by leaving feedback.

# Commands

	betabuddy            start the API server (same as "serve")
	betabuddy serve      start the API server
	betabuddy migrate    apply pending schema migrations and exit
	betabuddy version    print build information

# Process Layout

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("betabuddy")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── Session cleanup (expired session sweep)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Startup order:

 1. Configuration: Koanf v2 with defaults, an optional YAML file and environment variables
 2. Logging: zerolog, also backing slog for the supervisor
 3. Storage: PostgreSQL or DuckDB via DATABASE_URL, in-memory otherwise
 4. Sessions: memory, BadgerDB or Redis
 5. Authorization: Casbin role policy
 6. Seed: the administrator account, when configured
 7. HTTP: Chi router with CORS, rate limiting and Prometheus metrics

# Shutdown

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for up to SHUTDOWN_TIMEOUT, then storage and the
session store are closed.

# Configuration

See internal/config for the full list. Common variables:

	PORT                 listen port (default 5000)
	DATABASE_URL         postgres://..., duckdb://path or empty for memory
	SESSION_STORE        memory, badger or redis
	UPLOAD_DIR           directory for screenshots and avatars
	CONFIG_PATH          optional YAML config file
	LOG_LEVEL            trace, debug, info, warn, error
*/
package main
