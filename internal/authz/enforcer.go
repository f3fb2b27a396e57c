// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/betabuddy/internal/cache"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resource names used in policies.
const (
	ObjectApps     = "apps"
	ObjectAudit    = "audit"
	ObjectFeedback = "feedback"
	ObjectTesters  = "testers"
	ObjectSession  = "session"
	ObjectTesting  = "testing"
	ObjectProfile  = "profile"
	ObjectUploads  = "uploads"
	ObjectUsers    = "users"
)

// Actions used in policies.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// EnforcerConfig configures the enforcer.
type EnforcerConfig struct {
	// PolicyPath optionally overrides the embedded policy with a CSV file.
	PolicyPath string

	// CacheTTL bounds how long a decision is memoized. Zero disables caching.
	CacheTTL time.Duration
}

// Enforcer wraps a casbin SyncedEnforcer with a decision cache.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *cache.Cache[bool]
}

// NewEnforcer builds an enforcer from the embedded RBAC model. The policy
// comes from cfg.PolicyPath when that file exists, else the embedded one.
func NewEnforcer(cfg EnforcerConfig) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicyText(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{enforcer: enforcer}
	if cfg.CacheTTL > 0 {
		// Policies are static for the process lifetime, so entries only age out.
		e.cache = cache.New[bool](cfg.CacheTTL, cache.WithSizeObserver(func(n int) {
			AuthzCacheSize.Set(float64(n))
		}))
	}
	recordPolicySize(enforcer)
	return e, nil
}

// loadPolicyText adds p and g lines from CSV-formatted policy text.
func loadPolicyText(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		var err error
		switch {
		case parts[0] == "p" && len(parts) == 4:
			_, err = enforcer.AddPolicy(parts[1], parts[2], parts[3])
		case parts[0] == "g" && len(parts) == 3:
			_, err = enforcer.AddGroupingPolicy(parts[1], parts[2])
		default:
			return fmt.Errorf("invalid policy line %q", line)
		}
		if err != nil {
			return fmt.Errorf("failed to add policy %q: %w", line, err)
		}
	}
	return nil
}

// Enforce reports whether role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	start := time.Now()
	if e.cache != nil {
		if allowed, ok := e.cache.Get(cache.Key(role, object, action)); ok {
			recordDecision(role, object, action, allowed, time.Since(start), true)
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		AuthzErrorsTotal.Inc()
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.Set(cache.Key(role, object, action), allowed)
	}
	recordDecision(role, object, action, allowed, time.Since(start), false)
	return allowed, nil
}

// EnforceAny reports whether any of roles may perform action on object.
func (e *Enforcer) EnforceAny(roles []string, object, action string) (bool, error) {
	for _, role := range roles {
		allowed, err := e.Enforce(role, object, action)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}
	return false, nil
}

// ImplicitRoles returns role and every role it inherits.
func (e *Enforcer) ImplicitRoles(role string) ([]string, error) {
	inherited, err := e.enforcer.GetImplicitRolesForUser(role)
	if err != nil {
		return nil, err
	}
	return append([]string{role}, inherited...), nil
}

// Policy returns the loaded p rules.
func (e *Enforcer) Policy() [][]string {
	policies, _ := e.enforcer.GetPolicy()
	return policies
}

// Close stops the cache janitor.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
