// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package config

import (
	"testing"
	"time"
)

func TestParseDatabaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantBackend string
		wantDSN     string
		wantErr     bool
	}{
		{"empty is memory", "", BackendMemory, "", false},
		{"whitespace is memory", "   ", BackendMemory, "", false},
		{"postgres", "postgres://bb:pw@db:5432/betabuddy", BackendPostgres, "postgres://bb:pw@db:5432/betabuddy", false},
		{"postgresql", "postgresql://db/betabuddy", BackendPostgres, "postgresql://db/betabuddy", false},
		{"postgres without host", "postgres:///betabuddy", "", "", true},
		{"duckdb url", "duckdb:///var/lib/bb.duckdb", BackendDuckDB, "/var/lib/bb.duckdb", false},
		{"duckdb memory", "duckdb://:memory:", BackendDuckDB, "", false},
		{"duckdb file", "./data/betabuddy.duckdb", BackendDuckDB, "./data/betabuddy.duckdb", false},
		{"plain path", "./data/betabuddy.db", "", "", true},
		{"unknown scheme", "mysql://localhost/bb", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDatabaseURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDatabaseURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Backend != tt.wantBackend || got.DSN != tt.wantDSN {
				t.Errorf("ParseDatabaseURL(%q) = %+v, want {%s %s}", tt.raw, got, tt.wantBackend, tt.wantDSN)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 5000}
	if got := s.Addr(); got != "127.0.0.1:5000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestValidateRateLimits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero requests", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"window too short", func(c *Config) { c.Security.RateLimitWindow = 100 * time.Millisecond }, true},
		{"window too long", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, true},
		{"auth limit zero", func(c *Config) { c.Security.AuthRateLimitReqs = 0 }, true},
		{"disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled", "INFO"} {
		cfg := defaultConfig()
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("level %q rejected: %v", level, err)
		}
	}
}

func TestValidate_Session(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Session.TTL = 30 * time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for TTL under a minute")
	}

	cfg = defaultConfig()
	cfg.Session.CookieName = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty cookie name")
	}

	cfg = defaultConfig()
	cfg.Session.Store = "redis"
	cfg.Redis.Addr = "localhost:6379"
	if err := cfg.Validate(); err != nil {
		t.Errorf("redis with addr should validate: %v", err)
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("default environment should be development")
	}
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("default wildcard CORS should warn")
	}

	cfg.Server.Environment = "staging"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown environment should be rejected")
	}
}

func TestDatabaseTargetFallback(t *testing.T) {
	t.Parallel()

	d := DatabaseConfig{URL: "mysql://nope"}
	if got := d.Target().Backend; got != BackendMemory {
		t.Errorf("invalid URL should fall back to memory, got %q", got)
	}
}
