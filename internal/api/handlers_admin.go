// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/betabuddy/internal/audit"
)

// AdminUsers handles GET /api/admin/users.
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	users, err := h.svc.AdminUsers(r.Context())
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(users)
}

// AuditLogResponse is the payload of GET /api/admin/audit.
type AuditLogResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// AdminAudit handles GET /api/admin/audit.
//
// Query parameters (all optional):
//   - type: comma-separated event types, e.g. auth.login_failure,authz.denied
//   - outcome: success or failure
//   - userId: actor user ID
//   - ip: client address
//   - since, until: RFC 3339 timestamps
//   - limit: 1-1000 (default 100)
//   - offset: events to skip, newest first
func (h *Handler) AdminAudit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	filter, err := parseAuditFilter(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	events, total, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		rw.ServiceError(err)
		return
	}

	limit := filter.Limit
	if limit == 0 {
		limit = audit.DefaultQueryLimit
	}
	rw.Success(AuditLogResponse{
		Events: events,
		Total:  total,
		Limit:  limit,
		Offset: filter.Offset,
	})
}

func parseAuditFilter(r *http.Request) (audit.QueryFilter, error) {
	q := r.URL.Query()
	var f audit.QueryFilter

	if raw := strings.TrimSpace(q.Get("type")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t := audit.EventType(strings.TrimSpace(part))
			if !audit.KnownEventType(t) {
				return f, fmt.Errorf("unknown event type %q", t)
			}
			f.Types = append(f.Types, t)
		}
	}

	switch o := audit.Outcome(strings.ToLower(strings.TrimSpace(q.Get("outcome")))); o {
	case "", audit.OutcomeSuccess, audit.OutcomeFailure:
		f.Outcome = o
	default:
		return f, fmt.Errorf("outcome must be success or failure")
	}

	if raw := strings.TrimSpace(q.Get("userId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("userId must be a positive integer")
		}
		f.ActorID = id
	}

	f.SourceIP = strings.TrimSpace(q.Get("ip"))

	for key, dst := range map[string]**time.Time{"since": &f.Since, "until": &f.Until} {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("%s must be an RFC 3339 timestamp", key)
		}
		*dst = &ts
	}

	limit, err := queryIntPtr(r, "limit")
	if err != nil || (limit != nil && (*limit < 1 || *limit > audit.MaxQueryLimit)) {
		return f, fmt.Errorf("limit must be between 1 and %d", audit.MaxQueryLimit)
	}
	if limit != nil {
		f.Limit = *limit
	}

	offset, err := queryIntPtr(r, "offset")
	if err != nil || (offset != nil && *offset < 0) {
		return f, fmt.Errorf("offset must be a non-negative integer")
	}
	if offset != nil {
		f.Offset = *offset
	}
	return f, nil
}
