// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package auth

import (
	"context"

	"github.com/tomtom215/betabuddy/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "auth_session"

// ContextWithSession stores the authenticated session in ctx.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the authenticated session, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey).(*Session)
	return s
}

// UserIDFromContext returns the signed-in user's ID.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if s := SessionFromContext(ctx); s != nil {
		return s.UserID, true
	}
	return 0, false
}

// RolesFromContext returns the caller's roles; anonymous when signed out.
func RolesFromContext(ctx context.Context) []string {
	if s := SessionFromContext(ctx); s != nil {
		return s.Roles()
	}
	return []string{models.RoleAnonymous}
}
