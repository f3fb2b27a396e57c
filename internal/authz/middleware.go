// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package authz

import (
	"net/http"

	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/logging"
)

// DeniedFunc observes a request refused with 403.
type DeniedFunc func(r *http.Request, object, action string)

// Middleware enforces route policies against the caller's session roles.
type Middleware struct {
	enforcer *Enforcer
	onDenied DeniedFunc
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// OnDenied registers fn to be called for every 403. It must be set before
// the middleware serves requests.
func (m *Middleware) OnDenied(fn DeniedFunc) {
	m.onDenied = fn
}

// Require returns chi-style middleware allowing the request only when one
// of the caller's roles may perform action on object. Anonymous callers
// get 401 so clients know to sign in; signed-in callers get 403.
func (m *Middleware) Require(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles := auth.RolesFromContext(r.Context())

			allowed, err := m.enforcer.EnforceAny(roles, object, action)
			if err != nil {
				logging.CtxErr(r.Context(), err).Str("object", object).Msg("Authorization error")
				auth.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			if auth.SessionFromContext(r.Context()) == nil {
				auth.WriteUnauthorized(w)
				return
			}
			logging.CtxWarn(r.Context()).Strs("roles", roles).Str("object", object).Str("action", action).
				Msg("Access denied")
			if m.onDenied != nil {
				m.onDenied(r, object, action)
			}
			auth.WriteError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		})
	}
}
