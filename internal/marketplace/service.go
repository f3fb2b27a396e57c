// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package marketplace

import (
	"context"

	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
)

// DefaultTopTesters is the leaderboard size when no limit is given.
const DefaultTopTesters = 4

// maxTopTesters caps leaderboard requests.
const maxTopTesters = 100

// Service holds the marketplace use cases.
type Service struct {
	store storage.Storage
}

// New creates a Service over store.
func New(store storage.Storage) *Service {
	return &Service{store: store}
}

// Storage returns the backing store for health checks.
func (s *Service) Storage() storage.Storage {
	return s.store
}

// summaries loads the users named by ids as a lookup map.
func (s *Service) summaries(ctx context.Context, ids []int64) (map[int64]*models.UserSummary, error) {
	users, err := s.store.GetUsersByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*models.UserSummary, len(users))
	for id, u := range users {
		out[id] = u.Summary()
	}
	return out, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
