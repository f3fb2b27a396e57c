// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package audit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/logging"
)

// EventsTotal counts recorded audit events.
var EventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audit_events_total",
		Help: "Total audit events recorded",
	},
	[]string{"type", "outcome"},
)

// Config configures a Logger.
type Config struct {
	Enabled bool

	// Retention is how long events are kept. Zero keeps them until the
	// store's size cap evicts them.
	Retention time.Duration
}

// Logger records audit events to a Store. A nil *Logger is valid and
// discards everything.
type Logger struct {
	store     Store
	enabled   atomic.Bool
	retention time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// NewLogger creates a Logger writing to store.
func NewLogger(store Store, cfg Config) *Logger {
	l := &Logger{
		store:     store,
		retention: cfg.Retention,
		now:       time.Now,
		logger:    logging.WithComponent("audit"),
	}
	l.enabled.Store(cfg.Enabled)
	return l
}

// Log fills in ID, timestamp, request ID and severity where unset, then
// saves event. Storage failures are logged, never returned: auditing must
// not fail the request it describes.
func (l *Logger) Log(ctx context.Context, event *Event) {
	if l == nil || !l.enabled.Load() {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = logging.RequestIDFromContext(ctx)
	}
	if event.Outcome == "" {
		event.Outcome = OutcomeSuccess
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
		if event.Outcome == OutcomeFailure {
			event.Severity = SeverityWarning
		}
	}

	EventsTotal.WithLabelValues(string(event.Type), string(event.Outcome)).Inc()

	// The caller's context may already be done when the response is sent.
	if err := l.store.Save(context.WithoutCancel(ctx), event); err != nil {
		l.logger.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to save audit event")
		return
	}
	l.logger.Debug().
		Str("type", string(event.Type)).
		Str("outcome", string(event.Outcome)).
		Int64("actor_id", event.Actor.UserID).
		Msg("Audit event recorded")
}

// Query returns matching events, newest first, with the total match count.
// Limit defaults to DefaultQueryLimit and is capped at MaxQueryLimit.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, int64, error) {
	if l == nil {
		return []Event{}, 0, nil
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultQueryLimit
	}
	filter.Limit = min(filter.Limit, MaxQueryLimit)
	filter.Offset = max(filter.Offset, 0)

	events, err := l.store.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := l.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Prune deletes events older than the retention period.
func (l *Logger) Prune(ctx context.Context) (int64, error) {
	if l == nil || l.retention <= 0 {
		return 0, nil
	}
	return l.store.Delete(ctx, l.now().Add(-l.retention))
}

// AuthzDenied records a refused request. Its signature matches
// authz.DeniedFunc.
func (l *Logger) AuthzDenied(r *http.Request, object, action string) {
	l.Log(r.Context(), &Event{
		Type:    EventTypeAuthzDenied,
		Outcome: OutcomeFailure,
		Actor:   ActorFromContext(r.Context()),
		Source:  SourceFromRequest(r),
		Target:  &Target{Type: object},
		Metadata: map[string]string{
			"action": action,
			"method": r.Method,
			"path":   r.URL.Path,
		},
	})
}

// SetEnabled turns recording on or off.
func (l *Logger) SetEnabled(enabled bool) {
	l.enabled.Store(enabled)
}

// Enabled reports whether events are being recorded.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled.Load()
}

// SourceFromRequest extracts the client address and user agent. It expects
// RemoteAddr to have been rewritten by a real-IP middleware already.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ua := r.UserAgent()
	if len(ua) > 256 {
		ua = ua[:256]
	}
	return Source{IPAddress: ip, UserAgent: ua}
}

// ActorFromContext describes the signed-in caller, or an anonymous actor.
func ActorFromContext(ctx context.Context) Actor {
	sess := auth.SessionFromContext(ctx)
	if sess == nil {
		return Actor{Roles: auth.RolesFromContext(ctx)}
	}
	return Actor{UserID: sess.UserID, Username: sess.Username, Roles: sess.Roles()}
}

// Ref builds a Target for an object with a numeric ID.
func Ref(kind string, id int64) *Target {
	return &Target{Type: kind, ID: strconv.FormatInt(id, 10)}
}
