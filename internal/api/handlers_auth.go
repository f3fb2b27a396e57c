// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/betabuddy/internal/audit"
	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/marketplace"
	"github.com/tomtom215/betabuddy/internal/models"
)

// writeDecodeError answers a body that could not be decoded.
func (rw *ResponseWriter) writeDecodeError(err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "Request body is too large", nil)
		return
	}
	rw.BadRequest("Invalid request body")
}

const maxAuditUsername = 64

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Register creates an account and signs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.writeDecodeError(err)
		return
	}

	user, err := h.svc.Register(r.Context(), req)
	if err != nil {
		rw.ServiceError(err)
		return
	}

	if _, err := h.sessions.Login(r.Context(), w, r, user); err != nil {
		rw.ServiceError(err)
		return
	}
	h.security.Registered(user.ID, user.Username, user.Email, clientIP(r))
	h.recordAudit(r, audit.Event{
		Type:  audit.EventTypeRegister,
		Actor: audit.Actor{UserID: user.ID, Username: user.Username, Roles: []string{models.RoleUser}},
	})

	rw.Created(user)
}

// Login verifies credentials and issues a session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.writeDecodeError(err)
		return
	}

	user, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, marketplace.ErrInvalidCredentials) {
			h.security.LoginFailed(req.Username, clientIP(r), "invalid_credentials")
			h.recordAudit(r, audit.Event{
				Type:        audit.EventTypeLoginFailure,
				Outcome:     audit.OutcomeFailure,
				Actor:       audit.Actor{Username: truncateRunes(req.Username, maxAuditUsername)},
				Description: "invalid credentials",
			})
		}
		rw.ServiceError(err)
		return
	}

	sess, err := h.sessions.Login(r.Context(), w, r, user)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	h.security.LoginSucceeded(user.ID, user.Username, sess.ID, clientIP(r))
	h.recordAudit(r, audit.Event{
		Type:  audit.EventTypeLoginSuccess,
		Actor: audit.Actor{UserID: sess.UserID, Username: sess.Username, Roles: sess.Roles()},
	})

	rw.Success(user)
}

// Logout destroys the caller's session. Calling it without a session is
// not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sess := auth.SessionFromContext(r.Context())
	if err := h.sessions.Logout(r.Context(), w, r); err != nil {
		rw.ServiceError(err)
		return
	}
	if sess != nil {
		h.security.LoggedOut(sess.UserID, sess.ID, clientIP(r))
		h.recordAudit(r, audit.Event{Type: audit.EventTypeLogout})
	}

	rw.Success(map[string]bool{"loggedOut": true})
}

// CurrentUser returns the signed-in user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	user, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(user)
}

// UpdateProfile applies a partial profile update.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	var req models.ProfileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.writeDecodeError(err)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	h.security.Log(&logging.AuthEvent{
		Event:     "profile_updated",
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: clientIP(r),
		Success:   true,
	})
	h.recordAudit(r, audit.Event{
		Type:   audit.EventTypeProfileUpdated,
		Target: audit.Ref("user", user.ID),
	})

	rw.Success(user)
}
