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

const testerColumns = `id, user_id, app_id, status, created_at`

func (s *Store) getTester(ctx context.Context, q sqlx.QueryerContext, userID, appID int64) (*models.AppTester, error) {
	start := time.Now()
	var t models.AppTester
	err := sqlx.GetContext(ctx, q, &t, s.db.Rebind(
		`SELECT `+testerColumns+` FROM app_testers WHERE user_id = ? AND app_id = ?`), userID, appID)
	observe("SELECT", "app_testers", start, ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) GetAppTester(ctx context.Context, userID, appID int64) (*models.AppTester, error) {
	t, err := s.getTester(ctx, s.db, userID, appID)
	if err != nil {
		return nil, fmt.Errorf("get tester (%d, %d): %w", userID, appID, err)
	}
	return t, nil
}

func (s *Store) ListAppTestersByUser(ctx context.Context, userID int64) ([]models.AppTester, error) {
	start := time.Now()
	items := []models.AppTester{}
	err := s.db.SelectContext(ctx, &items, s.db.Rebind(
		`SELECT `+testerColumns+` FROM app_testers WHERE user_id = ?`+newestFirst), userID)
	observe("SELECT", "app_testers", start, err)
	if err != nil {
		return nil, fmt.Errorf("list testers for user %d: %w", userID, err)
	}
	return items, nil
}

// inTx runs fn in a transaction, committing on nil and rolling back otherwise.
// Transaction conflicts are retried.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return withRetry(ctx, func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func (s *Store) StartTesting(ctx context.Context, userID, appID int64) (*models.AppTester, error) {
	defer s.lockWrites()()

	var rec *models.AppTester
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.getApp(ctx, tx, appID); err != nil {
			return err
		}

		if _, err := s.getTester(ctx, tx, userID, appID); err == nil {
			return storage.ErrAlreadyTesting
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		t := models.AppTester{
			UserID:    userID,
			AppID:     appID,
			Status:    models.TesterStatusTesting,
			CreatedAt: s.now(),
		}
		start := time.Now()
		err := tx.QueryRowxContext(ctx, s.db.Rebind(
			`INSERT INTO app_testers (user_id, app_id, status, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
			t.UserID, t.AppID, t.Status, t.CreatedAt,
		).Scan(&t.ID)
		observe("INSERT", "app_testers", start, err)
		if isUniqueViolation(err) {
			return storage.ErrAlreadyTesting
		}
		if err != nil {
			return err
		}

		start = time.Now()
		_, err = tx.ExecContext(ctx, s.db.Rebind(`UPDATE apps SET tester_count = tester_count + 1 WHERE id = ?`), appID)
		observe("UPDATE", "apps", start, err)
		if err != nil {
			return err
		}

		rec = &t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start testing app %d: %w", appID, err)
	}
	return rec, nil
}

func (s *Store) SubmitFeedback(ctx context.Context, nf models.NewFeedback) (*models.Feedback, error) {
	defer s.lockWrites()()

	var fb *models.Feedback
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		app, err := s.getApp(ctx, tx, nf.AppID)
		if err != nil {
			return err
		}

		// The conditional update is the testing -> completed transition; it
		// row-locks on PostgreSQL so a concurrent duplicate sees zero rows.
		start := time.Now()
		res, err := tx.ExecContext(ctx, s.db.Rebind(
			`UPDATE app_testers SET status = ? WHERE user_id = ? AND app_id = ? AND status = ?`),
			models.TesterStatusCompleted, nf.UserID, nf.AppID, models.TesterStatusTesting)
		observe("UPDATE", "app_testers", start, err)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := s.getTester(ctx, tx, nf.UserID, nf.AppID); errors.Is(err, storage.ErrNotFound) {
				return storage.ErrNotTesting
			} else if err != nil {
				return err
			}
			return storage.ErrFeedbackAlreadySubmitted
		}

		f := models.Feedback{
			UserID:      nf.UserID,
			AppID:       nf.AppID,
			Rating:      nf.Rating,
			Content:     nf.Content,
			Bugs:        nf.Bugs,
			Suggestions: nf.Suggestions,
			CreatedAt:   s.now(),
		}
		start = time.Now()
		err = tx.QueryRowxContext(ctx, s.db.Rebind(`
			INSERT INTO feedback (user_id, app_id, rating, content, bugs, suggestions, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
			f.UserID, f.AppID, f.Rating, f.Content, nullable(f.Bugs), nullable(f.Suggestions), f.CreatedAt,
		).Scan(&f.ID)
		observe("INSERT", "feedback", start, err)
		if err != nil {
			return err
		}

		start = time.Now()
		res, err = tx.ExecContext(ctx, s.db.Rebind(`UPDATE users SET points = points + ? WHERE id = ?`), app.RewardPoints, nf.UserID)
		observe("UPDATE", "users", start, err)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return storage.ErrUserNotFound
		}

		fb = &f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit feedback for app %d: %w", nf.AppID, err)
	}
	return fb, nil
}
