// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package services

import (
	"context"
	"time"

	"github.com/tomtom215/betabuddy/internal/logging"
)

// AuditPruner drops audit events past their retention period.
type AuditPruner interface {
	Prune(ctx context.Context) (int64, error)
}

// AuditRetentionService prunes the audit trail on a fixed interval.
type AuditRetentionService struct {
	pruner   AuditPruner
	interval time.Duration
}

// NewAuditRetentionService prunes every interval (default 1h).
func NewAuditRetentionService(pruner AuditPruner, interval time.Duration) *AuditRetentionService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AuditRetentionService{pruner: pruner, interval: interval}
}

// Serve implements suture.Service.
func (s *AuditRetentionService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := s.pruner.Prune(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("Audit retention sweep failed")
				continue
			}
			if removed > 0 {
				logging.Info().Int64("removed", removed).Msg("Expired audit events pruned")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *AuditRetentionService) String() string {
	return "audit-retention"
}
