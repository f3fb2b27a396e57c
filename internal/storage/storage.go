// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package storage defines the persistence contract for BetaBuddy and ships
// the in-memory implementation used when no DATABASE_URL is configured.
//
// Implementations:
//   - MemStorage (this package): mutex-guarded maps, lost on restart
//   - database.Store (internal/database): sqlx over PostgreSQL or DuckDB
//
// Both implementations return the sentinel errors in errors.go wrapped with
// context, so callers test them with errors.Is.
//
// The two lifecycle workflows, StartTesting and SubmitFeedback, are single
// Storage calls so each backend can make them atomic: one critical section
// in memory, one transaction in SQL.
package storage

import (
	"context"

	"github.com/tomtom215/betabuddy/internal/models"
)

// Storage is the persistence interface consumed by the marketplace service.
type Storage interface {
	// Users. Username and email lookups are case-insensitive.
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)
	CreateUser(ctx context.Context, u models.NewUser) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, p models.ProfileUpdate) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// TopTesters orders by points desc, then id asc. limit <= 0 returns everyone.
	TopTesters(ctx context.Context, limit int) ([]models.User, error)

	// Apps. Listings are newest first (created_at desc, id desc).
	GetApp(ctx context.Context, id int64) (*models.App, error)
	// ListApps filters by exact type when appType is non-empty.
	ListApps(ctx context.Context, appType string) ([]models.App, error)
	ListAppsByUser(ctx context.Context, userID int64) ([]models.App, error)
	CreateApp(ctx context.Context, a models.NewApp) (*models.App, error)

	// Feedback, newest first.
	ListFeedbackByApp(ctx context.Context, appID int64) ([]models.Feedback, error)

	// Tester records.
	GetAppTester(ctx context.Context, userID, appID int64) (*models.AppTester, error)
	ListAppTestersByUser(ctx context.Context, userID int64) ([]models.AppTester, error)

	// StartTesting moves (userID, appID) from none to testing and increments the
	// app's tester count, atomically.
	//
	// Errors: ErrAppNotFound, ErrAlreadyTesting.
	StartTesting(ctx context.Context, userID, appID int64) (*models.AppTester, error)

	// SubmitFeedback stores feedback, moves the tester record from testing to
	// completed and adds the app's reward points to the user, atomically.
	//
	// Errors: ErrAppNotFound, ErrNotTesting, ErrFeedbackAlreadySubmitted.
	SubmitFeedback(ctx context.Context, f models.NewFeedback) (*models.Feedback, error)

	// Backend names the implementation for health output: memory, postgres or duckdb.
	Backend() string
	Ping(ctx context.Context) error
	Close() error
}
