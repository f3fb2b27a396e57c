// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

/*
Package api provides the HTTP surface of BetaBuddy.

It wires a chi router with request correlation, access logging, Prometheus
instrumentation, CORS, rate limiting and cookie sessions in front of the
marketplace service. Every JSON endpoint answers with models.APIResponse.

# Routes

Public:
  - GET  /api/apps, /api/apps/{id}, /api/testers/top
  - POST /api/register, /api/login, /api/logout
  - GET  /api/health, /api/health/live, /api/health/ready
  - GET  /metrics, /uploads/*

Signed in (role "user"):
  - POST /api/apps (multipart), /api/apps/{id}/test, /api/apps/{id}/feedback
  - GET  /api/my/apps, /api/my/testing
  - GET, PATCH /api/user; POST /api/user/avatar (multipart)

Admin:
  - GET /api/admin/users
  - GET /api/admin/audit (filter by type, outcome, userId, ip, since, until)

Access is decided by the Casbin policy in internal/authz; handlers only read
the caller's identity from the session.

# Errors

Service errors are mapped to status codes in one place (writeServiceError).
Unexpected errors are logged with the request ID and surface to clients as
a generic INTERNAL_ERROR.
*/
package api
