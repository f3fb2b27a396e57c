// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/metrics"
	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// decoyHash returns a valid hash used to spend the same scrypt work on an
// unknown username as on a wrong password.
func decoyHash() string {
	dummyHashOnce.Do(func() {
		h, err := auth.HashPassword("betabuddy-decoy")
		if err != nil {
			logging.Error().Err(err).Msg("Failed to build decoy password hash")
			return
		}
		dummyHash = h
	})
	return dummyHash
}

// Register validates req, hashes the password and creates the account.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validate(&req); err != nil {
		metrics.RecordAuthAttempt("register", false)
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	u, err := s.store.CreateUser(ctx, models.NewUser{
		Username:       req.Username,
		Email:          req.Email,
		Password:       hash,
		Name:           models.StringPtr(strings.TrimSpace(req.Name)),
		Bio:            models.StringPtr(req.Bio),
		Avatar:         models.StringPtr(req.Avatar),
		Specialization: models.StringPtr(req.Specialization),
	})
	metrics.RecordAuthAttempt("register", err == nil)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials. Any mismatch is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, storage.ErrUserNotFound) {
		if h := decoyHash(); h != "" {
			_, _ = auth.VerifyPassword(req.Password, h)
		}
		metrics.RecordAuthAttempt("login", false)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := auth.VerifyPassword(req.Password, u.Password)
	if err != nil {
		logging.CtxWarn(ctx).Err(err).Int64("user_id", u.ID).Msg("Stored password hash unreadable")
		ok = false
	}
	metrics.RecordAuthAttempt("login", ok)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// CurrentUser loads the signed-in user.
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateProfile changes the provided profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req models.ProfileUpdateRequest) (*models.User, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	upd := models.ProfileUpdate{Name: req.Name, Bio: req.Bio, Specialization: req.Specialization}
	if upd.Empty() {
		return s.store.GetUser(ctx, userID)
	}
	return s.store.UpdateProfile(ctx, userID, upd)
}

// SetAvatar points the user's avatar at an uploaded image URL.
func (s *Service) SetAvatar(ctx context.Context, userID int64, url string) (*models.User, error) {
	return s.store.UpdateProfile(ctx, userID, models.ProfileUpdate{Avatar: &url})
}

// SeedAdmin creates the configured administrator when missing. It is a
// no-op without a username and skipped with a warning without a password.
func (s *Service) SeedAdmin(ctx context.Context, cfg config.SeedConfig) error {
	if cfg.AdminUsername == "" {
		return nil
	}
	if _, err := s.store.GetUserByUsername(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("seed admin: %w", err)
	}

	if cfg.AdminPassword == "" {
		logging.Warn().Str("username", cfg.AdminUsername).Msg("Admin account not seeded: ADMIN_PASSWORD is not set")
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	u, err := s.store.CreateUser(ctx, models.NewUser{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: hash,
		Name:     models.StringPtr("Administrator"),
		IsAdmin:  true,
	})
	if errors.Is(err, storage.ErrDuplicateUsername) || errors.Is(err, storage.ErrDuplicateEmail) {
		logging.Warn().Err(err).Msg("Admin account not seeded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	logging.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("Seeded admin account")
	return nil
}

// AdminUsers lists every account with activity counts, ordered by id.
func (s *Service) AdminUsers(ctx context.Context) ([]models.AdminUserView, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.AdminUserView, 0, len(users))
	for _, u := range users {
		apps, err := s.store.ListAppsByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		testers, err := s.store.ListAppTestersByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		completed := 0
		for _, t := range testers {
			if t.Status == models.TesterStatusCompleted {
				completed++
			}
		}
		out = append(out, models.AdminUserView{User: u, AppsSubmitted: len(apps), TestsCompleted: completed})
	}
	return out, nil
}

// TopTesters returns the leaderboard. limit <= 0 selects DefaultTopTesters.
func (s *Service) TopTesters(ctx context.Context, limit int) ([]models.TesterSummary, error) {
	if limit <= 0 {
		limit = DefaultTopTesters
	}
	if limit > maxTopTesters {
		limit = maxTopTesters
	}

	users, err := s.store.TopTesters(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.TesterSummary, len(users))
	for i := range users {
		out[i] = users[i].TesterSummary()
	}
	return out, nil
}
