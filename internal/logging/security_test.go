// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("SanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeSessionID(t *testing.T) {
	t.Parallel()

	if got := SanitizeSessionID(""); got != "" {
		t.Errorf("empty = %q", got)
	}
	if got := SanitizeSessionID("short"); got != "***" {
		t.Errorf("short = %q", got)
	}
	if got := SanitizeSessionID("3f1a9c0d2b7e4455"); got != "3f1a...4455" {
		t.Errorf("long = %q", got)
	}
}

func TestSanitizeUsername(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":      "",
		"al":    "***",
		"alice": "al***",
	}
	for in, want := range tests {
		if got := SanitizeUsername(in); got != want {
			t.Errorf("SanitizeUsername(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                     "",
		"no-at-sign":           "***",
		"@example.com":         "***",
		"jane.doe@example.com": "ja***@example.com",
		"a@b.io":               "a***@b.io",
	}
	for in, want := range tests {
		if got := SanitizeEmail(in); got != want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSecurityLogger_LoginFailed(t *testing.T) {
	var buf bytes.Buffer
	l := NewSecurityLoggerWithLogger(zerolog.New(&buf))

	l.LoginFailed("mallory", "10.0.0.1", "bad password\ninjected")

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"event":"login_failed"`, `"status":"failed"`, `"username":"ma***"`, `"component":"auth"`, `bad password\\x0ainjected`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
	if strings.Contains(out, "mallory") {
		t.Errorf("username should be masked: %s", out)
	}
}

func TestSecurityLogger_SuccessEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewSecurityLoggerWithLogger(zerolog.New(&buf))

	l.Registered(3, "alice", "alice@example.com", "127.0.0.1")
	l.LoginSucceeded(3, "alice", "0123456789abcdef0123", "127.0.0.1")
	l.LoggedOut(3, "0123456789abcdef0123", "127.0.0.1")

	out := buf.String()
	for _, want := range []string{`"event":"register"`, `"event":"login_success"`, `"event":"logout"`, `"email":"al***@example.com"`, `"session_id":"0123...0123"`, `"user_id":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
	if strings.Contains(out, `"reason"`) {
		t.Errorf("successful events should not carry a reason: %s", out)
	}
}
