// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Backend names returned by ParseDatabaseURL.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendDuckDB   = "duckdb"
)

// DatabaseTarget is the parsed form of DATABASE_URL.
type DatabaseTarget struct {
	Backend string
	// DSN is what gets handed to sql.Open: the full URL for postgres,
	// the file path (or "" for in-memory) for duckdb.
	DSN string
}

// ParseDatabaseURL resolves DATABASE_URL to a storage backend.
//
//	""                         -> memory
//	postgres://u:p@host/db     -> postgres
//	duckdb:///var/lib/bb.duckdb -> duckdb, DSN "/var/lib/bb.duckdb"
//	./data/betabuddy.duckdb    -> duckdb
//	duckdb://:memory:          -> duckdb, in-memory database
func ParseDatabaseURL(raw string) (DatabaseTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DatabaseTarget{Backend: BackendMemory}, nil
	}

	if strings.HasPrefix(raw, "duckdb://") {
		path := strings.TrimPrefix(raw, "duckdb://")
		if path == ":memory:" {
			path = ""
		}
		return DatabaseTarget{Backend: BackendDuckDB, DSN: path}, nil
	}

	if !strings.Contains(raw, "://") {
		if strings.HasSuffix(strings.ToLower(raw), ".duckdb") {
			return DatabaseTarget{Backend: BackendDuckDB, DSN: raw}, nil
		}
		return DatabaseTarget{}, fmt.Errorf("DATABASE_URL must be a postgres:// URL, a duckdb:// URL or a .duckdb file path")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return DatabaseTarget{}, fmt.Errorf("DATABASE_URL failed to parse URL: %w", err)
	}

	switch parsed.Scheme {
	case "postgres", "postgresql":
		if parsed.Host == "" {
			return DatabaseTarget{}, fmt.Errorf("DATABASE_URL host is required")
		}
		return DatabaseTarget{Backend: BackendPostgres, DSN: raw}, nil
	default:
		return DatabaseTarget{}, fmt.Errorf("DATABASE_URL scheme must be postgres, postgresql or duckdb, got: %s", parsed.Scheme)
	}
}

// Target returns the parsed DATABASE_URL. Validate has already rejected bad values.
func (d DatabaseConfig) Target() DatabaseTarget {
	t, err := ParseDatabaseURL(d.URL)
	if err != nil {
		return DatabaseTarget{Backend: BackendMemory}
	}
	return t
}
