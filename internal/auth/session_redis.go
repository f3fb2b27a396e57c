// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/metrics"
)

// RedisBreakerName labels the Redis session circuit breaker in metrics.
const RedisBreakerName = "redis-sessions"

// ErrSessionStoreUnavailable is returned while the Redis breaker is open.
var ErrSessionStoreUnavailable = errors.New("session store unavailable")

// RedisSessionStore shares sessions between instances through Redis.
// Expiry is delegated to Redis key TTLs. Every command runs through a
// circuit breaker so a dead Redis fails requests fast instead of stalling
// each one for the dial timeout.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	cb     *gobreaker.CircuitBreaker[interface{}]
}

// NewRedisSessionStore creates a store over client. Keys are prefix+id.
func NewRedisSessionStore(client *redis.Client, prefix string) *RedisSessionStore {
	metrics.CircuitBreakerState.WithLabelValues(RedisBreakerName).Set(metrics.BreakerClosed)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        RedisBreakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing key is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Session store circuit breaker state changed")
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})

	return &RedisSessionStore{client: client, prefix: prefix, cb: cb}
}

// NewRedisClient builds a go-redis client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func (s *RedisSessionStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := s.cb.Execute(fn)
	rejected := errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
	metrics.RecordBreakerResult(RedisBreakerName, err, rejected)
	if rejected {
		return nil, fmt.Errorf("%w: %v", ErrSessionStoreUnavailable, err)
	}
	return result, err
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisSessionStore) set(ctx context.Context, session *Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, session.ID)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = s.execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, s.key(session.ID), data, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) load(ctx context.Context, id string) (*Session, error) {
	raw, err := s.execute(func() (interface{}, error) {
		return s.client.Get(ctx, s.key(id)).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw.([]byte), &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Create(ctx context.Context, session *Session) error {
	return s.set(ctx, session)
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, s.key(id)).Err()
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Touch(ctx context.Context, id string, newExpiry time.Time) error {
	session, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	session.LastAccessedAt = time.Now()
	session.ExpiresAt = newExpiry
	return s.set(ctx, session)
}

// CleanupExpired is a no-op: Redis evicts sessions when their TTL lapses.
func (s *RedisSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *RedisSessionStore) Count(ctx context.Context) (int, error) {
	n, err := s.execute(func() (interface{}, error) {
		count := 0
		iter := s.client.Scan(ctx, 0, s.prefix+"*", 200).Iterator()
		for iter.Next(ctx) {
			count++
		}
		return count, iter.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n.(int), nil
}

// Ping checks connectivity through the breaker.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.client.Ping(ctx).Err()
	})
	return err
}

// State returns the current breaker state.
func (s *RedisSessionStore) State() gobreaker.State {
	return s.cb.State()
}

// Close closes the Redis client.
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}
