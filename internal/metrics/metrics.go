// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of storage queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of storage query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Marketplace Metrics
	AppsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betabuddy_apps_submitted_total",
			Help: "Total number of apps submitted for testing",
		},
		[]string{"type"},
	)

	TestersStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betabuddy_testers_started_total",
			Help: "Total number of tester enrollments",
		},
	)

	FeedbackSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betabuddy_feedback_submitted_total",
			Help: "Total number of feedback submissions",
		},
	)

	PointsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "betabuddy_points_awarded_total",
			Help: "Total reward points awarded to testers",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betabuddy_uploads_total",
			Help: "Total number of uploaded files by form field and result",
		},
		[]string{"field", "result"}, // result: stored, rejected, too_large, removed
	)

	// Authentication Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "betabuddy_sessions_active",
			Help: "Current number of live sessions",
		},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "betabuddy_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"action", "result"}, // action: login, register; result: success, failure
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Supervisor Metrics
	ServiceRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supervisor_service_restarts_total",
			Help: "Total number of supervised service restarts",
		},
		[]string{"service"},
	)
)

// RecordDBQuery records a storage query. The error label is the first 50
// characters of the message.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit counts a request rejected by a rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAppSubmitted counts a new app by type.
func RecordAppSubmitted(appType string) {
	AppsSubmitted.WithLabelValues(appType).Inc()
}

// RecordTesterStarted counts a tester enrollment.
func RecordTesterStarted() {
	TestersStarted.Inc()
}

// RecordFeedback counts a feedback submission and the points it awarded.
func RecordFeedback(points int) {
	FeedbackSubmitted.Inc()
	if points > 0 {
		PointsAwarded.Add(float64(points))
	}
}

// RecordUpload counts an uploaded file.
func RecordUpload(field, result string) {
	UploadsTotal.WithLabelValues(field, result).Inc()
}

// RecordAuthAttempt counts a login or registration outcome.
func RecordAuthAttempt(action string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	AuthAttempts.WithLabelValues(action, result).Inc()
}

// SetActiveSessions sets the live session gauge.
func SetActiveSessions(n int) {
	SessionsActive.Set(float64(n))
}

// RecordServiceRestart counts a supervisor restart of service.
func RecordServiceRestart(service string) {
	ServiceRestarts.WithLabelValues(service).Inc()
}

// Circuit breaker state values for CircuitBreakerState.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// RecordBreakerResult counts a call through a circuit breaker. rejected
// reports that the breaker refused the call without attempting it.
func RecordBreakerResult(name string, err error, rejected bool) {
	switch {
	case rejected:
		CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
	case err != nil:
		CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
	default:
		CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	}
}

// RecordBreakerTransition updates the state gauge and counts the transition.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(breakerStateValue(to)))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

func breakerStateValue(state string) int {
	switch strings.ToLower(state) {
	case "half-open":
		return BreakerHalfOpen
	case "open":
		return BreakerOpen
	default:
		return BreakerClosed
	}
}
