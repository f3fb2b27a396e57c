// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/betabuddy/internal/logging"
)

// AccessLog logs one line per request. Requests slower than slow are logged
// at warn level; 5xx responses at error level. A non-positive slow disables
// the slow-request warning.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			ctx := r.Context()

			ev := logging.CtxDebug(ctx)
			msg := "HTTP request"
			switch {
			case rec.status >= http.StatusInternalServerError:
				ev = logging.CtxError(ctx)
			case slow > 0 && elapsed > slow:
				ev = logging.CtxWarn(ctx)
				msg = "Slow request detected"
			case r.Method != http.MethodGet && r.Method != http.MethodHead:
				ev = logging.CtxInfo(ctx)
			}

			ev.Str("method", r.Method).
				Str("path", logging.SanitizeLogValue(r.URL.Path)).
				Str("route", routePattern(r)).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Int64("duration_ms", elapsed.Milliseconds()).
				Str("remote", r.RemoteAddr).
				Msg(msg)
		})
	}
}
