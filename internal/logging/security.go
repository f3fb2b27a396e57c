// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package logging

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// AuthEvent is a security-relevant account event written to the audit stream.
type AuthEvent struct {
	// Event is one of register, login_success, login_failed, logout, profile_updated.
	Event     string
	UserID    int64
	Username  string
	Email     string
	SessionID string
	IPAddress string
	UserAgent string
	Success   bool
	Reason    string
}

// SecurityLogger writes AuthEvents with identifying fields masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger returns a SecurityLogger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: WithComponent("auth")}
}

// NewSecurityLoggerWithLogger returns a SecurityLogger writing to logger.
//
//nolint:gocritic // zerolog.Logger is a value type
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// Log writes ev. Failed events are logged at warn level.
func (l *SecurityLogger) Log(ev *AuthEvent) {
	e := l.logger.Info()
	status := "success"
	if !ev.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", ev.Event).Str("status", status)

	if ev.UserID != 0 {
		e = e.Int64("user_id", ev.UserID)
	}
	if ev.Username != "" {
		e = e.Str("username", SanitizeUsername(ev.Username))
	}
	if ev.Email != "" {
		e = e.Str("email", SanitizeEmail(ev.Email))
	}
	if ev.SessionID != "" {
		e = e.Str("session_id", SanitizeSessionID(ev.SessionID))
	}
	if ev.IPAddress != "" {
		e = e.Str("ip", ev.IPAddress)
	}
	if ev.UserAgent != "" {
		e = e.Str("user_agent", truncate(SanitizeLogValue(ev.UserAgent), 100))
	}
	if ev.Reason != "" && !ev.Success {
		e = e.Str("reason", SanitizeLogValue(ev.Reason))
	}
	e.Msg("auth event")
}

// LoginSucceeded records a successful login.
func (l *SecurityLogger) LoginSucceeded(userID int64, username, sessionID, ip string) {
	l.Log(&AuthEvent{Event: "login_success", UserID: userID, Username: username, SessionID: sessionID, IPAddress: ip, Success: true})
}

// LoginFailed records a rejected login attempt.
func (l *SecurityLogger) LoginFailed(username, ip, reason string) {
	l.Log(&AuthEvent{Event: "login_failed", Username: username, IPAddress: ip, Reason: reason})
}

// Registered records a new account.
func (l *SecurityLogger) Registered(userID int64, username, email, ip string) {
	l.Log(&AuthEvent{Event: "register", UserID: userID, Username: username, Email: email, IPAddress: ip, Success: true})
}

// LoggedOut records a session teardown.
func (l *SecurityLogger) LoggedOut(userID int64, sessionID, ip string) {
	l.Log(&AuthEvent{Event: "logout", UserID: userID, SessionID: sessionID, IPAddress: ip, Success: true})
}

// SanitizeLogValue escapes control characters so user input cannot forge log lines.
func SanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SanitizeSessionID keeps the first and last four characters.
//
//	"3f1a9c0d2b7e4455" -> "3f1a...4455"
func SanitizeSessionID(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= 12 {
		return "***"
	}
	return id[:4] + "..." + id[len(id)-4:]
}

// SanitizeUsername keeps the first two characters.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return SanitizeLogValue(username[:2]) + "***"
}

// SanitizeEmail masks the local part: "jane.doe@example.com" -> "ja***@example.com".
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	local := email[:at]
	if len(local) > 2 {
		local = local[:2]
	}
	return SanitizeLogValue(local) + "***" + SanitizeLogValue(email[at:])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
