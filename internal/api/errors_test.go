// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/marketplace"
	"github.com/tomtom215/betabuddy/internal/storage"
	"github.com/tomtom215/betabuddy/internal/upload"
	"github.com/tomtom215/betabuddy/internal/validation"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		known  bool
	}{
		{"invalid credentials", marketplace.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized, true},
		{"wrapped app not found", fmt.Errorf("get app 3: %w", storage.ErrAppNotFound), http.StatusNotFound, ErrCodeNotFound, true},
		{"generic not found", storage.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, true},
		{"already testing", storage.ErrAlreadyTesting, http.StatusBadRequest, ErrCodeConflict, true},
		{"not testing", storage.ErrNotTesting, http.StatusBadRequest, ErrCodeBadRequest, true},
		{"feedback twice", storage.ErrFeedbackAlreadySubmitted, http.StatusConflict, ErrCodeConflict, true},
		{"too large", upload.ErrRequestTooLarge, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, true},
		{"file too large", fmt.Errorf("%w: big.zip", upload.ErrFileTooLarge), http.StatusRequestEntityTooLarge, ErrCodeTooLarge, true},
		{"session store down", fmt.Errorf("%w: open", auth.ErrSessionStoreUnavailable), http.StatusServiceUnavailable, ErrCodeUnavailable, true},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, known := classify(tt.err)
			if resp.status != tt.status || resp.code != tt.code || known != tt.known {
				t.Errorf("classify() = (%d, %s, %v), want (%d, %s, %v)",
					resp.status, resp.code, known, tt.status, tt.code, tt.known)
			}
		})
	}
}

func TestWriteServiceError_HidesInternalDetail(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/apps", nil)
	writeServiceError(rec, req, errors.New("pq: connection refused to 10.0.0.5"))

	apiErr := expectErrorCode(t, rec, http.StatusInternalServerError, ErrCodeInternal)
	if apiErr.Message != internalErrorMessage {
		t.Errorf("message = %q, want generic message", apiErr.Message)
	}
}

func TestWriteServiceError_ValidationDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/apps/1/feedback", nil)
	verr := validation.NewRequestValidationError("rating", "max", "Rating must be at most 5")
	writeServiceError(rec, req, fmt.Errorf("submit: %w", verr))

	apiErr := expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
	if apiErr.Message != "Rating must be at most 5" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Details == nil {
		t.Error("validation error carries no details")
	}
}

func TestChiMiddlewareConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := ChiMiddlewareConfigFrom(config.SecurityConfig{
		CORSOrigins:       []string{"https://betabuddy.example"},
		RateLimitReqs:     50,
		RateLimitWindow:   30 * time.Second,
		AuthRateLimitReqs: 3,
	})
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "https://betabuddy.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRequests != 50 || cfg.RateLimitWindow != 30*time.Second || cfg.AuthRateLimitRequests != 3 {
		t.Errorf("rate limits = %d/%v auth %d", cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.AuthRateLimitRequests)
	}

	def := ChiMiddlewareConfigFrom(config.SecurityConfig{})
	if def.RateLimitRequests != 100 || def.RateLimitWindow != time.Minute {
		t.Errorf("defaults = %d/%v", def.RateLimitRequests, def.RateLimitWindow)
	}
}

func TestChiMiddleware_CORSPreflight(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{"https://betabuddy.example"},
		CORSAllowedMethods:   []string{"GET", "POST"},
		CORSAllowedHeaders:   []string{"Content-Type"},
		CORSAllowCredentials: true,
		CORSMaxAge:           600,
	})
	handler := m.CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/apps", nil)
	req.Header.Set("Origin", "https://betabuddy.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://betabuddy.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q", got)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitRequests: 1, RateLimitWindow: time.Minute, RateLimitDisabled: true})
	handler := m.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/apps", nil).WithContext(context.Background()))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}
