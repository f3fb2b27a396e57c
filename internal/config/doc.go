// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

/*
Package config provides centralized configuration management for BetaBuddy.

Configuration is layered with Koanf v2: struct defaults, then an optional YAML
file (config.yaml, /etc/betabuddy/config.yaml, or CONFIG_PATH), then
environment variables. Only variables listed in the mapping table are read.

# Environment Variables

Server:
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - PORT / HTTP_PORT: listen port (default: 5000)
  - HTTP_TIMEOUT: handler timeout (default: 30s)
  - ENVIRONMENT: development, production or test

Storage:
  - DATABASE_URL: empty for the in-memory store, postgres://... or duckdb://<path>
  - DB_MIGRATE_ON_START: run migrations at startup (default: true)

Sessions:
  - SESSION_STORE: memory, badger or redis (default: memory)
  - SESSION_STORE_PATH: badger directory
  - SESSION_TTL: session lifetime (default: 24h)
  - SESSION_COOKIE_NAME: cookie name (default: betabuddy.sid)
  - SESSION_COOKIE_SECURE: set the Secure attribute
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB: redis session store

Uploads:
  - UPLOAD_DIR: storage directory (default: ./uploads)
  - UPLOAD_MAX_FILE_SIZE: per-file limit in bytes (default: 10MB)

Security:
  - CORS_ORIGINS: comma-separated origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - AUTH_RATE_LIMIT_REQS: per-IP limit on login/register

Seeding:
  - ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD

Audit:
  - AUDIT_ENABLED: record the audit trail (default: true)
  - AUDIT_MAX_EVENTS: events kept in memory (default: 10000)
  - AUDIT_RETENTION: maximum event age (default: 720h)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Example YAML

	server:
	  port: 8080
	database:
	  url: duckdb:///var/lib/betabuddy/betabuddy.duckdb
	session:
	  store: badger
	  path: /var/lib/betabuddy/sessions
	security:
	  cors_origins:
	    - https://betabuddy.example.com
*/
package config
