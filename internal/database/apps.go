// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
)

const appColumns = `id, title, description, short_description, type, download_url, screenshots, reward_points, user_id, tester_count, created_at`

const newestFirst = ` ORDER BY created_at DESC, id DESC`

func (s *Store) getApp(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.App, error) {
	start := time.Now()
	var a models.App
	err := sqlx.GetContext(ctx, q, &a, s.db.Rebind(`SELECT `+appColumns+` FROM apps WHERE id = ?`), id)
	observe("SELECT", "apps", start, ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrAppNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetApp(ctx context.Context, id int64) (*models.App, error) {
	a, err := s.getApp(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("get app %d: %w", id, err)
	}
	return a, nil
}

func (s *Store) selectApps(ctx context.Context, query string, args ...interface{}) ([]models.App, error) {
	start := time.Now()
	apps := []models.App{}
	err := s.db.SelectContext(ctx, &apps, s.db.Rebind(query), args...)
	observe("SELECT", "apps", start, err)
	return apps, err
}

func (s *Store) ListApps(ctx context.Context, appType string) ([]models.App, error) {
	var (
		apps []models.App
		err  error
	)
	if appType == "" {
		apps, err = s.selectApps(ctx, `SELECT `+appColumns+` FROM apps`+newestFirst)
	} else {
		apps, err = s.selectApps(ctx, `SELECT `+appColumns+` FROM apps WHERE type = ?`+newestFirst, appType)
	}
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	return apps, nil
}

func (s *Store) ListAppsByUser(ctx context.Context, userID int64) ([]models.App, error) {
	apps, err := s.selectApps(ctx, `SELECT `+appColumns+` FROM apps WHERE user_id = ?`+newestFirst, userID)
	if err != nil {
		return nil, fmt.Errorf("list apps by user %d: %w", userID, err)
	}
	return apps, nil
}

func (s *Store) CreateApp(ctx context.Context, na models.NewApp) (*models.App, error) {
	defer s.lockWrites()()

	a := models.App{
		Title:            na.Title,
		Description:      na.Description,
		ShortDescription: na.ShortDescription,
		Type:             na.Type,
		DownloadURL:      na.DownloadURL,
		Screenshots:      append(models.StringList{}, na.Screenshots...),
		RewardPoints:     na.RewardPoints,
		UserID:           na.UserID,
		CreatedAt:        s.now(),
	}

	shots, err := a.Screenshots.Value()
	if err != nil {
		return nil, fmt.Errorf("create app: %w", err)
	}

	start := time.Now()
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO apps (title, description, short_description, type, download_url, screenshots, reward_points, user_id, tester_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		RETURNING id`),
		a.Title, a.Description, nullable(a.ShortDescription), a.Type, a.DownloadURL,
		shots, a.RewardPoints, a.UserID, a.CreatedAt,
	).Scan(&a.ID)
	observe("INSERT", "apps", start, err)
	if err != nil {
		return nil, fmt.Errorf("create app: %w", err)
	}
	return &a, nil
}

func (s *Store) ListFeedbackByApp(ctx context.Context, appID int64) ([]models.Feedback, error) {
	start := time.Now()
	items := []models.Feedback{}
	err := s.db.SelectContext(ctx, &items, s.db.Rebind(
		`SELECT id, user_id, app_id, rating, content, bugs, suggestions, created_at
		FROM feedback WHERE app_id = ?`+newestFirst), appID)
	observe("SELECT", "feedback", start, err)
	if err != nil {
		return nil, fmt.Errorf("list feedback for app %d: %w", appID, err)
	}
	return items, nil
}
