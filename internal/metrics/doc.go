// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

/*
Package metrics provides Prometheus metrics for BetaBuddy.

All collectors are registered on the default registry via promauto and are
exposed at /metrics:

	curl http://localhost:5000/metrics

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Storage:
  - db_query_duration_seconds{operation,table}
  - db_query_errors_total{operation,table,error_type}

Marketplace:
  - betabuddy_apps_submitted_total{type}
  - betabuddy_testers_started_total
  - betabuddy_feedback_submitted_total
  - betabuddy_points_awarded_total
  - betabuddy_uploads_total{field,result}

Auth:
  - betabuddy_sessions_active
  - betabuddy_auth_attempts_total{action,result}

Resilience:
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
  - supervisor_service_restarts_total{service}

Endpoint labels are chi route patterns (for example /api/apps/{id}), never
raw paths, so label cardinality stays bounded.
*/
package metrics
