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
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
)

const userColumns = `id, username, email, password, name, bio, avatar, specialization, points, is_admin, created_at`

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// getUserWhere loads one user; sql.ErrNoRows becomes storage.ErrUserNotFound.
func (s *Store) getUserWhere(ctx context.Context, q sqlx.QueryerContext, where string, arg interface{}) (*models.User, error) {
	start := time.Now()
	var u models.User
	err := sqlx.GetContext(ctx, q, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE `+where), arg)
	observe("SELECT", "users", start, ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.getUserWhere(ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.getUserWhere(ctx, s.db, "username_key = ?", foldKey(username))
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.getUserWhere(ctx, s.db, "email_key = ?", foldKey(email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	out := make(map[int64]*models.User, len(ids))
	if len(ids) == 0 {
		return out, ctx.Err()
	}

	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build user batch query: %w", err)
	}

	start := time.Now()
	var users []models.User
	err = s.db.SelectContext(ctx, &users, s.db.Rebind(query), args...)
	observe("SELECT", "users", start, err)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}

	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	defer s.lockWrites()()

	uname, email := foldKey(nu.Username), foldKey(nu.Email)

	// The unique indexes are authoritative; the pre-check only yields a
	// precise error without relying on driver message text.
	var taken []string
	err := s.db.SelectContext(ctx, &taken, s.db.Rebind(
		`SELECT CASE WHEN username_key = ? THEN 'username' ELSE 'email' END FROM users WHERE username_key = ? OR email_key = ?`),
		uname, uname, email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	for _, which := range taken {
		if which == "username" {
			return nil, fmt.Errorf("create user: %w", storage.ErrDuplicateUsername)
		}
	}
	if len(taken) > 0 {
		return nil, fmt.Errorf("create user: %w", storage.ErrDuplicateEmail)
	}

	u := models.User{
		Username:       nu.Username,
		Email:          nu.Email,
		Password:       nu.Password,
		Name:           nu.Name,
		Bio:            nu.Bio,
		Avatar:         nu.Avatar,
		Specialization: nu.Specialization,
		IsAdmin:        nu.IsAdmin,
		CreatedAt:      s.now(),
	}

	start := time.Now()
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO users (username, username_key, email, email_key, password, name, bio, avatar, specialization, points, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		RETURNING id`),
		u.Username, uname, u.Email, email, u.Password,
		nullable(u.Name), nullable(u.Bio), nullable(u.Avatar), nullable(u.Specialization),
		u.IsAdmin, u.CreatedAt,
	).Scan(&u.ID)
	observe("INSERT", "users", start, err)

	if isUniqueViolation(err) {
		if violatedColumn(err, "email_key") {
			return nil, fmt.Errorf("create user: %w", storage.ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("create user: %w", storage.ErrDuplicateUsername)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, p models.ProfileUpdate) (*models.User, error) {
	defer s.lockWrites()()

	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	add := func(column string, v *string) {
		if v != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *v)
		}
	}
	add("name", p.Name)
	add("bio", p.Bio)
	add("specialization", p.Specialization)
	add("avatar", p.Avatar)

	if len(sets) > 0 {
		start := time.Now()
		args = append(args, id)
		res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
		observe("UPDATE", "users", start, err)
		if err != nil {
			return nil, fmt.Errorf("update profile %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, fmt.Errorf("update profile %d: %w", id, storage.ErrUserNotFound)
		}
	}

	u, err := s.getUserWhere(ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("update profile %d: %w", id, err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	start := time.Now()
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	observe("SELECT", "users", start, err)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Store) TopTesters(ctx context.Context, limit int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY points DESC, id ASC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	start := time.Now()
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, s.db.Rebind(query), args...)
	observe("SELECT", "users", start, err)
	if err != nil {
		return nil, fmt.Errorf("top testers: %w", err)
	}
	return users, nil
}

// ignoreNoRows keeps missing rows out of the error metrics.
func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
