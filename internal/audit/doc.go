// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

/*
Package audit records security and marketplace events for administrators.

Events cover account activity (registration, login, logout, profile
changes), authorization denials and marketplace actions (app submission,
testing sign-up, feedback). They are kept in a bounded MemoryStore and
served to admins at GET /api/admin/audit.

Credentials never enter an event. Login failures record the attempted
username and the client address only.

# Usage

	auditLog := audit.NewLogger(audit.NewMemoryStore(cfg.Audit.MaxEvents), audit.Config{
	    Enabled:   cfg.Audit.Enabled,
	    Retention: cfg.Audit.Retention,
	})

	auditLog.Log(r.Context(), &audit.Event{
	    Type:   audit.EventTypeAppSubmitted,
	    Actor:  audit.ActorFromContext(r.Context()),
	    Source: audit.SourceFromRequest(r),
	    Target: audit.Ref("app", app.ID),
	})

Retention is enforced by Prune, which the supervisor runs periodically.

# Metrics

	audit_events_total{type, outcome}
*/
package audit
