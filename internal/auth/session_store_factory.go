// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/logging"
)

// SessionStoreType names a session storage backend.
type SessionStoreType string

const (
	// SessionStoreMemory keeps sessions in process memory (lost on restart).
	SessionStoreMemory SessionStoreType = "memory"

	// SessionStoreBadger persists sessions in an embedded BadgerDB.
	SessionStoreBadger SessionStoreType = "badger"

	// SessionStoreRedis shares sessions between instances through Redis.
	SessionStoreRedis SessionStoreType = "redis"
)

// OpenedStore is a session store together with the resources that back it.
type OpenedStore struct {
	Store SessionStore
	Type  SessionStoreType

	close func() error
}

// Close releases the backing database or client.
func (o *OpenedStore) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}

// OpenSessionStore opens the backend selected by cfg.Store. An unreachable
// Redis is logged and tolerated; the breaker rejects calls until it returns.
func OpenSessionStore(ctx context.Context, cfg config.SessionConfig, rcfg config.RedisConfig) (*OpenedStore, error) {
	switch SessionStoreType(cfg.Store) {
	case SessionStoreMemory, "":
		return &OpenedStore{Store: NewMemorySessionStore(), Type: SessionStoreMemory}, nil

	case SessionStoreBadger:
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create session directory %s: %w", cfg.Path, err)
		}
		opts := badger.DefaultOptions(cfg.Path)
		opts.Logger = nil
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger db for sessions: %w", err)
		}
		logging.Info().Str("path", cfg.Path).Msg("Session store opened (badger)")
		return &OpenedStore{Store: NewBadgerSessionStore(db), Type: SessionStoreBadger, close: db.Close}, nil

	case SessionStoreRedis:
		client := NewRedisClient(rcfg.Addr, rcfg.Password, rcfg.DB)
		store := NewRedisSessionStore(client, rcfg.KeyPrefix)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			logging.Warn().Err(err).Str("addr", rcfg.Addr).Msg("Redis session store not reachable at startup")
		} else {
			logging.Info().Str("addr", rcfg.Addr).Msg("Session store connected (redis)")
		}
		return &OpenedStore{Store: store, Type: SessionStoreRedis, close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
