// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package storage

import (
	"sort"
	"strings"

	"github.com/tomtom215/betabuddy/internal/models"
)

// PopularThreshold is the tester count at which an app counts as popular.
const PopularThreshold = 10

// Sort orders for AppQuery.Sort.
const (
	SortNewest  = "newest"
	SortPopular = "popular"
	SortRewards = "rewards"
)

// AppQuery is the parsed form of the /api/apps query string.
type AppQuery struct {
	Type      string `json:"type" validate:"omitempty,app_type"`
	Search    string `json:"search" validate:"max=200"`
	MinReward *int   `json:"minReward" validate:"omitempty,min=0"`
	MaxReward *int   `json:"maxReward" validate:"omitempty,min=0"`
	Popular   bool   `json:"popular"`
	Sort      string `json:"sort" validate:"omitempty,sort_order"`
	// Limit caps the result after filtering and sorting; <= 0 means no cap.
	Limit int `json:"limit"`
}

// ApplyQuery runs FilterApps, SortApps and the limit. apps must already be
// restricted to q.Type; the input slice is not modified.
func ApplyQuery(apps []models.App, q AppQuery) []models.App {
	out := FilterApps(apps, q)
	SortApps(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// FilterApps returns the apps matching every predicate in q, preserving order.
func FilterApps(apps []models.App, q AppQuery) []models.App {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.App, 0, len(apps))

	for i := range apps {
		a := &apps[i]
		if q.Type != "" && a.Type != q.Type {
			continue
		}
		if search != "" && !matchesSearch(a, search) {
			continue
		}
		if q.MinReward != nil && a.RewardPoints < *q.MinReward {
			continue
		}
		if q.MaxReward != nil && a.RewardPoints > *q.MaxReward {
			continue
		}
		if q.Popular && a.TesterCount < PopularThreshold {
			continue
		}
		out = append(out, *a)
	}
	return out
}

func matchesSearch(a *models.App, needle string) bool {
	if strings.Contains(strings.ToLower(a.Title), needle) {
		return true
	}
	if a.ShortDescription != nil && strings.Contains(strings.ToLower(*a.ShortDescription), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(a.Description), needle)
}

// SortApps orders apps in place. Unknown or empty order means newest.
// Popular and rewards orders fall back to newest on ties.
func SortApps(apps []models.App, order string) {
	newer := func(a, b *models.App) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}

	var less func(i, j int) bool
	switch order {
	case SortPopular:
		less = func(i, j int) bool {
			if apps[i].TesterCount != apps[j].TesterCount {
				return apps[i].TesterCount > apps[j].TesterCount
			}
			return newer(&apps[i], &apps[j])
		}
	case SortRewards:
		less = func(i, j int) bool {
			if apps[i].RewardPoints != apps[j].RewardPoints {
				return apps[i].RewardPoints > apps[j].RewardPoints
			}
			return newer(&apps[i], &apps[j])
		}
	default:
		less = func(i, j int) bool { return newer(&apps[i], &apps[j]) }
	}
	sort.SliceStable(apps, less)
}
