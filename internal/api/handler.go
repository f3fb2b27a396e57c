// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/betabuddy/internal/audit"
	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/marketplace"
	"github.com/tomtom215/betabuddy/internal/upload"
)

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	svc      *marketplace.Service
	sessions *auth.SessionManager
	uploads  *upload.Store
	security *logging.SecurityLogger
	audit    *audit.Logger

	version   string
	startTime time.Time
}

// NewHandler creates a Handler. version is reported by the health endpoint.
// auditLog may be nil to disable the audit trail.
func NewHandler(svc *marketplace.Service, sessions *auth.SessionManager, uploads *upload.Store, auditLog *audit.Logger, version string) *Handler {
	return &Handler{
		svc:       svc,
		sessions:  sessions,
		uploads:   uploads,
		security:  logging.NewSecurityLogger(),
		audit:     auditLog,
		version:   version,
		startTime: time.Now(),
	}
}

// pathID parses the {name} URL parameter as a positive ID.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// currentUserID returns the signed-in user. Routes behind authz always
// carry a session, so the false case answers 401 for misrouted handlers.
func currentUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
	}
	return id, ok
}

// clientIP returns the address chi's RealIP middleware settled on.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// recordAudit fills in the source, and the actor when unset, then records ev.
func (h *Handler) recordAudit(r *http.Request, ev audit.Event) {
	if ev.Actor.UserID == 0 && ev.Actor.Username == "" {
		ev.Actor = audit.ActorFromContext(r.Context())
	}
	ev.Source = audit.SourceFromRequest(r)
	h.audit.Log(r.Context(), &ev)
}
