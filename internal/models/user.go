// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package models

import (
	"time"
)

// User is an account. Developers and testers are the same type; the role
// is implied by owned apps and AppTester rows.
//
// Password holds the scrypt hash and is never serialized.
type User struct {
	ID             int64     `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	Password       string    `json:"-" db:"password"`
	Name           *string   `json:"name" db:"name"`
	Bio            *string   `json:"bio" db:"bio"`
	Avatar         *string   `json:"avatar" db:"avatar"`
	Specialization *string   `json:"specialization" db:"specialization"`
	Points         int       `json:"points" db:"points"`
	IsAdmin        bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// NewUser is the insert form of User. Password must already be hashed.
type NewUser struct {
	Username       string
	Email          string
	Password       string
	Name           *string
	Bio            *string
	Avatar         *string
	Specialization *string
	IsAdmin        bool
}

// UserSummary is the public view of a developer or tester embedded in other payloads.
type UserSummary struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Name           *string `json:"name"`
	Avatar         *string `json:"avatar"`
	Specialization *string `json:"specialization"`
}

// Summary returns the public view of u. A nil user yields nil.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Avatar:         u.Avatar,
		Specialization: u.Specialization,
	}
}

// TesterSummary is a leaderboard row.
type TesterSummary struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Name           *string `json:"name"`
	Avatar         *string `json:"avatar"`
	Points         int     `json:"points"`
	Specialization *string `json:"specialization"`
}

// TesterSummary returns the leaderboard view of u.
func (u *User) TesterSummary() TesterSummary {
	return TesterSummary{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Avatar:         u.Avatar,
		Points:         u.Points,
		Specialization: u.Specialization,
	}
}

// ProfileUpdate carries the optional profile fields a user may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name           *string
	Bio            *string
	Specialization *string
	Avatar         *string
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Bio == nil && p.Specialization == nil && p.Avatar == nil
}

// StringPtr returns a pointer to s, or nil for "".
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// AdminUserView is a user row in the administration listing.
type AdminUserView struct {
	User
	AppsSubmitted  int `json:"appsSubmitted"`
	TestsCompleted int `json:"testsCompleted"`
}
