// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package middleware provides the HTTP middleware shared by every route:
// request ID propagation, Prometheus request metrics and access logging.
//
// All middleware has the func(http.Handler) http.Handler shape and is
// mounted on the chi router in internal/api:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.AccessLog(time.Second))
//	r.Use(middleware.PrometheusMetrics)
//
// PrometheusMetrics labels requests with the matched chi route pattern
// (for example /api/apps/{id}) rather than the raw path so the label set
// stays bounded.
package middleware
