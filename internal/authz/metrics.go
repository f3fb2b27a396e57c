// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package authz

import (
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisionsTotal counts decisions by role, object, action and result.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total authorization decisions",
		},
		[]string{"role", "object", "action", "result"},
	)

	AuthzDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authz_decision_duration_seconds",
			Help:    "Authorization decision latency",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005},
		},
		[]string{"cache"},
	)

	AuthzCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authz_cache_entries",
			Help: "Memoized authorization decisions",
		},
	)

	AuthzPolicyRulesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authz_policy_rules_total",
			Help: "Loaded policy rules",
		},
	)

	AuthzErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_errors_total",
			Help: "Authorization evaluation errors",
		},
	)
)

func recordDecision(role, object, action string, allowed bool, d time.Duration, cacheHit bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	AuthzDecisionsTotal.WithLabelValues(role, object, action, result).Inc()

	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	AuthzDecisionDuration.WithLabelValues(cache).Observe(d.Seconds())
}

func recordPolicySize(e *casbin.SyncedEnforcer) {
	policies, err := e.GetPolicy()
	if err != nil {
		return
	}
	AuthzPolicyRulesTotal.Set(float64(len(policies)))
}
