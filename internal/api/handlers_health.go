// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/betabuddy/internal/metrics"
	"github.com/tomtom215/betabuddy/internal/models"
)

// healthCheckTimeout bounds each dependency probe.
const healthCheckTimeout = 2 * time.Second

// probe runs the storage and session checks. ready is false when storage
// is unreachable; a failing session count only degrades the report.
func (h *Handler) probe(ctx context.Context) (models.HealthStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	status := models.HealthStatus{
		Status:  "healthy",
		Version: h.version,
		Backend: h.svc.Storage().Backend(),
		Uptime:  time.Since(h.startTime).Seconds(),
		Checks:  map[string]string{"storage": "ok", "sessions": "ok"},
	}
	ready := true

	if err := h.svc.Storage().Ping(ctx); err != nil {
		status.Checks["storage"] = err.Error()
		status.Status = "unhealthy"
		ready = false
	}

	if n, err := h.sessions.Store().Count(ctx); err != nil {
		status.Checks["sessions"] = err.Error()
		if ready {
			status.Status = "degraded"
		}
	} else {
		status.Sessions = n
		metrics.SetActiveSessions(n)
	}

	return status, ready
}

// Health reports dependency status. It always answers 200 so dashboards
// can read the body; use HealthReady for gating traffic.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	status, _ := h.probe(r.Context())
	rw.Success(status)
}

// HealthLive answers 200 while the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 503 until storage is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status, ready := h.probe(r.Context())
	if !ready {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   models.StatusError,
			Data:     status,
			Metadata: models.Metadata{Timestamp: time.Now().UTC()},
			Error:    &models.APIError{Code: ErrCodeUnavailable, Message: "Service not ready"},
		})
		return
	}
	NewResponseWriter(w, r).Success(status)
}
