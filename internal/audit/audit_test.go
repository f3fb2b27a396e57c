// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package audit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/models"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func event(typ EventType, actor int64, outcome Outcome, at time.Time) *Event {
	return &Event{Type: typ, Actor: Actor{UserID: actor}, Outcome: outcome, Timestamp: at}
}

func TestMemoryStore_QueryNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	for i := 0; i < 5; i++ {
		e := event(EventTypeLoginSuccess, int64(i+1), OutcomeSuccess, baseTime.Add(time.Duration(i)*time.Minute))
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := s.Query(ctx, QueryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 2 || got[0].Actor.UserID != 5 || got[1].Actor.UserID != 4 {
		t.Errorf("Query() = %+v, want actors 5 then 4", got)
	}

	got, _ = s.Query(ctx, QueryFilter{Limit: 2, Offset: 3})
	if len(got) != 2 || got[0].Actor.UserID != 2 || got[1].Actor.UserID != 1 {
		t.Errorf("Query(offset 3) = %+v, want actors 2 then 1", got)
	}
}

func TestMemoryStore_Filters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_ = s.Save(ctx, event(EventTypeLoginFailure, 0, OutcomeFailure, baseTime))
	_ = s.Save(ctx, event(EventTypeLoginSuccess, 7, OutcomeSuccess, baseTime.Add(time.Minute)))
	_ = s.Save(ctx, event(EventTypeAppSubmitted, 7, OutcomeSuccess, baseTime.Add(2*time.Minute)))
	_ = s.Save(ctx, event(EventTypeAuthzDenied, 8, OutcomeFailure, baseTime.Add(3*time.Minute)))

	since := baseTime.Add(90 * time.Second)
	tests := []struct {
		name   string
		filter QueryFilter
		want   int64
	}{
		{"all", QueryFilter{}, 4},
		{"by type", QueryFilter{Types: []EventType{EventTypeLoginFailure, EventTypeLoginSuccess}}, 2},
		{"by outcome", QueryFilter{Outcome: OutcomeFailure}, 2},
		{"by actor", QueryFilter{ActorID: 7}, 2},
		{"since", QueryFilter{Since: &since}, 2},
		{"combined", QueryFilter{ActorID: 7, Types: []EventType{EventTypeAppSubmitted}}, 1},
		{"no match", QueryFilter{ActorID: 99}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := s.Count(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if n != tt.want {
				t.Errorf("Count() = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestMemoryStore_CapDropsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10)

	for i := 0; i < 11; i++ {
		_ = s.Save(ctx, event(EventTypeLogout, int64(i), OutcomeSuccess, baseTime))
	}
	if s.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", s.Len())
	}
	oldest, _ := s.Query(ctx, QueryFilter{Offset: 9})
	if len(oldest) != 1 || oldest[0].Actor.UserID != 1 {
		t.Errorf("oldest event = %+v, want actor 1", oldest)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_ = s.Save(ctx, event(EventTypeLogout, 1, OutcomeSuccess, baseTime.Add(-48*time.Hour)))
	_ = s.Save(ctx, event(EventTypeLogout, 2, OutcomeSuccess, baseTime))

	n, err := s.Delete(ctx, baseTime.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n != 1 || s.Len() != 1 {
		t.Errorf("Delete() = %d, Len() = %d; want 1, 1", n, s.Len())
	}
}

func TestLogger_FillsDefaults(t *testing.T) {
	store := NewMemoryStore(0)
	l := NewLogger(store, Config{Enabled: true})
	l.now = func() time.Time { return baseTime }

	ctx := logging.ContextWithRequestID(context.Background(), "req-123")
	l.Log(ctx, &Event{Type: EventTypeLoginFailure, Outcome: OutcomeFailure})

	events, total, err := l.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if total != 1 || len(events) != 1 {
		t.Fatalf("Query() = %d events, total %d; want 1", len(events), total)
	}
	e := events[0]
	if e.ID == "" {
		t.Error("ID not generated")
	}
	if !e.Timestamp.Equal(baseTime) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, baseTime)
	}
	if e.RequestID != "req-123" {
		t.Errorf("RequestID = %q, want req-123", e.RequestID)
	}
	if e.Severity != SeverityWarning {
		t.Errorf("Severity = %q, want warning for a failure", e.Severity)
	}
}

func TestLogger_Disabled(t *testing.T) {
	store := NewMemoryStore(0)
	l := NewLogger(store, Config{Enabled: false})
	l.Log(context.Background(), &Event{Type: EventTypeLogout})
	if store.Len() != 0 {
		t.Errorf("disabled logger stored %d events", store.Len())
	}

	l.SetEnabled(true)
	l.Log(context.Background(), &Event{Type: EventTypeLogout})
	if store.Len() != 1 {
		t.Errorf("enabled logger stored %d events, want 1", store.Len())
	}
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	l.Log(context.Background(), &Event{Type: EventTypeLogout})
	events, total, err := l.Query(context.Background(), QueryFilter{})
	if err != nil || total != 0 || len(events) != 0 {
		t.Errorf("nil Query() = %v, %d, %v", events, total, err)
	}
	if n, err := l.Prune(context.Background()); n != 0 || err != nil {
		t.Errorf("nil Prune() = %d, %v", n, err)
	}
	if l.Enabled() {
		t.Error("nil logger reports enabled")
	}
}

func TestLogger_QueryLimits(t *testing.T) {
	store := NewMemoryStore(0)
	l := NewLogger(store, Config{Enabled: true})
	for i := 0; i < DefaultQueryLimit+5; i++ {
		l.Log(context.Background(), &Event{Type: EventTypeTestingStarted})
	}

	events, total, err := l.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(events) != DefaultQueryLimit {
		t.Errorf("len(events) = %d, want default limit %d", len(events), DefaultQueryLimit)
	}
	if total != int64(DefaultQueryLimit+5) {
		t.Errorf("total = %d, want %d", total, DefaultQueryLimit+5)
	}
}

func TestLogger_Prune(t *testing.T) {
	store := NewMemoryStore(0)
	l := NewLogger(store, Config{Enabled: true, Retention: time.Hour})

	l.now = func() time.Time { return baseTime.Add(-2 * time.Hour) }
	l.Log(context.Background(), &Event{Type: EventTypeLogout})
	l.now = func() time.Time { return baseTime }
	l.Log(context.Background(), &Event{Type: EventTypeLogout})

	n, err := l.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 || store.Len() != 1 {
		t.Errorf("Prune() = %d, Len() = %d; want 1, 1", n, store.Len())
	}
}

func TestSourceAndActor(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/apps", nil)
	r.RemoteAddr = "203.0.113.9:41000"
	r.Header.Set("User-Agent", "beta-client/1.0")

	src := SourceFromRequest(r)
	if src.IPAddress != "203.0.113.9" || src.UserAgent != "beta-client/1.0" {
		t.Errorf("SourceFromRequest() = %+v", src)
	}

	anon := ActorFromContext(context.Background())
	if anon.UserID != 0 || len(anon.Roles) != 1 || anon.Roles[0] != models.RoleAnonymous {
		t.Errorf("anonymous actor = %+v", anon)
	}

	ctx := auth.ContextWithSession(context.Background(), &auth.Session{UserID: 4, Username: "dana"})
	actor := ActorFromContext(ctx)
	if actor.UserID != 4 || actor.Username != "dana" {
		t.Errorf("ActorFromContext() = %+v", actor)
	}

	if ref := Ref("app", 12); ref.Type != "app" || ref.ID != "12" {
		t.Errorf("Ref() = %+v", ref)
	}
}
