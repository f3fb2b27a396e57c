// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/models"
)

// ManagerConfig configures cookie handling and session lifetime.
type ManagerConfig struct {
	CookieName string

	// TTL is both the session lifetime and the cookie Max-Age.
	TTL time.Duration

	// Sliding extends the expiry on every authenticated request.
	Sliding bool

	CookieSecure bool
}

// DefaultManagerConfig returns a week-long sliding session.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		CookieName: "betabuddy.sid",
		TTL:        7 * 24 * time.Hour,
		Sliding:    true,
	}
}

// SessionManager issues, resolves and destroys cookie sessions.
type SessionManager struct {
	store SessionStore
	cfg   ManagerConfig
}

// NewSessionManager creates a manager over store. Zero fields of cfg take
// their DefaultManagerConfig values.
func NewSessionManager(store SessionStore, cfg ManagerConfig) *SessionManager {
	def := DefaultManagerConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	return &SessionManager{store: store, cfg: cfg}
}

// Store returns the underlying session store.
func (m *SessionManager) Store() SessionStore {
	return m.store
}

// CookieName returns the session cookie name.
func (m *SessionManager) CookieName() string {
	return m.cfg.CookieName
}

// Authenticate resolves the session cookie and, when it names a live
// session, puts the session in the request context. Requests without a
// valid session pass through anonymously.
func (m *SessionManager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := m.sessionID(r)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.Get(r.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				logging.CtxErr(r.Context(), err).Msg("Session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		if m.cfg.Sliding {
			if err := m.store.Touch(r.Context(), id, time.Now().Add(m.cfg.TTL)); err != nil {
				logging.CtxWarn(r.Context()).Err(err).Msg("Failed to extend session")
			}
		}

		ctx := ContextWithSession(r.Context(), session)
		ctx = logging.ContextWithUserID(ctx, session.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Login starts a session for user and sets the cookie. Any session the
// request already carried is destroyed first so a planted ID never becomes
// authenticated.
func (m *SessionManager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) (*Session, error) {
	if old := m.sessionID(r); old != "" {
		if err := m.store.Delete(ctx, old); err != nil {
			logging.CtxWarn(ctx).Err(err).Msg("Failed to delete previous session")
		}
	}

	session, err := NewSession(user, m.cfg.TTL)
	if err != nil {
		return nil, err
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}
	m.setCookie(w, session.ID, int(m.cfg.TTL.Seconds()))
	return session, nil
}

// Logout destroys the request's session, if any, and clears the cookie.
func (m *SessionManager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := m.sessionID(r)
	m.setCookie(w, "", -1)
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *SessionManager) sessionID(r *http.Request) string {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (m *SessionManager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// WriteUnauthorized writes the standard 401 envelope.
func WriteUnauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
}

// WriteError writes an error envelope with the given status and code.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	resp := models.APIResponse{
		Status:   models.StatusError,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode error response")
	}
}
