// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional config.yaml (or the file named by CONFIG_PATH)
//  3. Environment Variables: override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	store, err := database.New(ctx, cfg.Database)
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Redis    RedisConfig    `koanf:"redis"`
	Uploads  UploadConfig   `koanf:"uploads"`
	Security SecurityConfig `koanf:"security"`
	Seed     SeedConfig     `koanf:"seed"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - PORT or HTTP_PORT: listen port (default: 5000)
//   - HTTP_TIMEOUT: per-request handler timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects and tunes the storage backend.
// An empty URL runs the service on the in-memory store.
//
// Environment Variables:
//   - DATABASE_URL: postgres://..., postgresql://..., duckdb://<path> or a *.duckdb path
//   - DB_MIGRATE_ON_START: apply schema migrations during startup (default: true)
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

// SessionConfig holds session storage and cookie settings.
type SessionConfig struct {
	// Store is memory, badger or redis.
	Store           string        `koanf:"store"`
	Path            string        `koanf:"path"`
	TTL             time.Duration `koanf:"ttl"`
	CookieName      string        `koanf:"cookie_name"`
	CookieSecure    bool          `koanf:"cookie_secure"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// RedisConfig is used when Session.Store is redis.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// UploadConfig controls multipart file storage.
type UploadConfig struct {
	Dir         string `koanf:"dir"`
	MaxFileSize int64  `koanf:"max_file_size"`
	MaxFiles    int    `koanf:"max_files"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	AuthRateLimitReqs int           `koanf:"auth_rate_limit_reqs"`
}

// SeedConfig describes the administrator account created on first start.
// Seeding is skipped when AdminPassword is empty.
type SeedConfig struct {
	AdminUsername string `koanf:"admin_username"`
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`
}

// AuditConfig controls the in-memory audit trail served at /api/admin/audit.
type AuditConfig struct {
	Enabled   bool          `koanf:"enabled"`
	MaxEvents int           `koanf:"max_events"`
	Retention time.Duration `koanf:"retention"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load loads configuration using Koanf v2.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
