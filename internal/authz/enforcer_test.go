// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package authz

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestEnforcer(t *testing.T, cfg EnforcerConfig) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	e := newTestEnforcer(t, EnforcerConfig{})

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{"anonymous", ObjectApps, ActionRead, true},
		{"anonymous", ObjectTesters, ActionRead, true},
		{"anonymous", ObjectSession, ActionWrite, true},
		{"anonymous", ObjectApps, ActionWrite, false},
		{"anonymous", ObjectProfile, ActionRead, false},
		{"anonymous", ObjectUsers, ActionRead, false},

		{"user", ObjectApps, ActionRead, true},
		{"user", ObjectApps, ActionWrite, true},
		{"user", ObjectTesting, ActionWrite, true},
		{"user", ObjectFeedback, ActionWrite, true},
		{"user", ObjectUploads, ActionWrite, true},
		{"user", ObjectUsers, ActionRead, false},

		{"admin", ObjectUsers, ActionRead, true},
		{"user", ObjectAudit, ActionRead, false},
		{"admin", ObjectAudit, ActionRead, true},
		{"admin", ObjectApps, ActionWrite, true},
		{"admin", ObjectApps, ActionRead, true},

		{"stranger", ObjectApps, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.object+"/"+tt.action, func(t *testing.T) {
			got, err := e.Enforce(tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnforcer_EnforceAny(t *testing.T) {
	e := newTestEnforcer(t, EnforcerConfig{})

	ok, err := e.EnforceAny([]string{"stranger", "admin"}, ObjectUsers, ActionRead)
	if err != nil || !ok {
		t.Errorf("EnforceAny() = %v, %v; want true", ok, err)
	}
	ok, err = e.EnforceAny(nil, ObjectApps, ActionRead)
	if err != nil || ok {
		t.Errorf("EnforceAny(nil) = %v, %v; want false", ok, err)
	}
}

func TestEnforcer_ImplicitRoles(t *testing.T) {
	e := newTestEnforcer(t, EnforcerConfig{})

	roles, err := e.ImplicitRoles("admin")
	if err != nil {
		t.Fatal(err)
	}
	has := map[string]bool{}
	for _, r := range roles {
		has[r] = true
	}
	for _, want := range []string{"admin", "user", "anonymous"} {
		if !has[want] {
			t.Errorf("ImplicitRoles(admin) = %v, missing %s", roles, want)
		}
	}
}

func TestEnforcer_Cache(t *testing.T) {
	e := newTestEnforcer(t, EnforcerConfig{CacheTTL: time.Minute})

	for i := 0; i < 3; i++ {
		if ok, _ := e.Enforce("user", ObjectApps, ActionWrite); !ok {
			t.Fatal("user denied apps write")
		}
	}
	if n := e.cache.Len(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}
}

func TestEnforcer_PolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	policy := "p, anonymous, apps, read\np, admin, users, read\ng, admin, anonymous\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}

	e := newTestEnforcer(t, EnforcerConfig{PolicyPath: path})
	if got := len(e.Policy()); got != 2 {
		t.Errorf("Policy() has %d rules, want 2", got)
	}
	if ok, _ := e.Enforce("user", ObjectApps, ActionWrite); ok {
		t.Error("file policy should not grant user apps write")
	}
	if ok, _ := e.Enforce("admin", ObjectApps, ActionRead); !ok {
		t.Error("admin should inherit anonymous apps read")
	}
}

func TestLoadPolicyText_Invalid(t *testing.T) {
	e := newTestEnforcer(t, EnforcerConfig{})
	if err := loadPolicyText(e.enforcer, "p, only-two"); err == nil {
		t.Error("loadPolicyText() accepted a malformed line")
	}
}
