// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package services

import (
	"context"
	"time"

	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/metrics"
)

// SessionSweeper is the part of a session store the cleanup job needs.
type SessionSweeper interface {
	CleanupExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// SessionCleanupService periodically removes expired sessions and
// refreshes the active_sessions gauge.
type SessionCleanupService struct {
	store    SessionSweeper
	interval time.Duration
}

// NewSessionCleanupService sweeps store every interval (default 10m).
func NewSessionCleanupService(store SessionSweeper, interval time.Duration) *SessionCleanupService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionCleanupService{store: store, interval: interval}
}

// Serve implements suture.Service. Sweep errors are logged, not returned:
// a failing store should not put the job into restart backoff.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionCleanupService) sweep(ctx context.Context) {
	removed, err := s.store.CleanupExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn().Err(err).Msg("Session cleanup failed")
		}
		return
	}
	if removed > 0 {
		logging.Debug().Int("removed", removed).Msg("Expired sessions removed")
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		return
	}
	metrics.SetActiveSessions(n)
}

// String names the service in supervisor logs.
func (s *SessionCleanupService) String() string {
	return "session-cleanup"
}
