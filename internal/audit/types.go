// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package audit

import (
	"context"
	"time"
)

// EventType categorizes audit events.
type EventType string

const (
	// Account events
	EventTypeRegister       EventType = "auth.register"
	EventTypeLoginSuccess   EventType = "auth.login_success"
	EventTypeLoginFailure   EventType = "auth.login_failure"
	EventTypeLogout         EventType = "auth.logout"
	EventTypeProfileUpdated EventType = "user.profile_updated"
	EventTypeAvatarUpdated  EventType = "user.avatar_updated"

	// Authorization events
	EventTypeAuthzDenied EventType = "authz.denied"

	// Marketplace events
	EventTypeAppSubmitted      EventType = "app.submitted"
	EventTypeTestingStarted    EventType = "testing.started"
	EventTypeFeedbackSubmitted EventType = "feedback.submitted"
)

// KnownEventType reports whether t is one of the EventType constants.
func KnownEventType(t EventType) bool {
	switch t {
	case EventTypeRegister, EventTypeLoginSuccess, EventTypeLoginFailure, EventTypeLogout,
		EventTypeProfileUpdated, EventTypeAvatarUpdated, EventTypeAuthzDenied,
		EventTypeAppSubmitted, EventTypeTestingStarted, EventTypeFeedbackSubmitted:
		return true
	}
	return false
}

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audit record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Outcome   Outcome   `json:"outcome"`
	Actor     Actor     `json:"actor"`

	// Target is the object acted on, when there is one.
	Target *Target `json:"target,omitempty"`
	Source Source  `json:"source"`

	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	RequestID string `json:"requestId,omitempty"`
}

// Actor is who performed the action. UserID is 0 for anonymous callers.
type Actor struct {
	UserID   int64    `json:"userId,omitempty"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Target is the object of an action, e.g. {Type: "app", ID: "12"}.
type Target struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Source is where a request came from.
type Source struct {
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error

	// Query returns matching events, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	// Count returns the number of matching events, ignoring Limit and Offset.
	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// Delete removes events older than olderThan.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter selects audit events. Zero fields match everything.
type QueryFilter struct {
	Types    []EventType
	Outcome  Outcome
	ActorID  int64
	SourceIP string
	Since    *time.Time
	Until    *time.Time
	Limit    int
	Offset   int
}

// DefaultQueryLimit and MaxQueryLimit bound Query page sizes.
const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

// Matches reports whether e satisfies every criterion of f.
func (f *QueryFilter) Matches(e *Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.ActorID != 0 && e.Actor.UserID != f.ActorID {
		return false
	}
	if f.SourceIP != "" && e.Source.IPAddress != f.SourceIP {
		return false
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Timestamp.After(*f.Until) {
		return false
	}
	return true
}
