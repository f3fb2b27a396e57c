// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/marketplace"
	"github.com/tomtom215/betabuddy/internal/storage"
	"github.com/tomtom215/betabuddy/internal/upload"
	"github.com/tomtom215/betabuddy/internal/validation"
)

// apiError is the client-facing form of a known failure.
type apiError struct {
	status  int
	code    string
	message string
}

// knownErrors is checked in order with errors.Is. The specific not-found
// sentinels come before storage.ErrNotFound, which they also match.
var knownErrors = []struct {
	target error
	resp   apiError
}{
	{marketplace.ErrInvalidCredentials, apiError{http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid username or password"}},
	{storage.ErrDuplicateUsername, apiError{http.StatusBadRequest, ErrCodeConflict, "Username already exists"}},
	{storage.ErrDuplicateEmail, apiError{http.StatusBadRequest, ErrCodeConflict, "Email already exists"}},
	{storage.ErrAlreadyTesting, apiError{http.StatusBadRequest, ErrCodeConflict, "You are already testing this app"}},
	{storage.ErrNotTesting, apiError{http.StatusBadRequest, ErrCodeBadRequest, "You must be testing this app to provide feedback"}},
	{storage.ErrFeedbackAlreadySubmitted, apiError{http.StatusConflict, ErrCodeConflict, "You have already submitted feedback for this app"}},
	{storage.ErrAppNotFound, apiError{http.StatusNotFound, ErrCodeNotFound, "App not found"}},
	{storage.ErrUserNotFound, apiError{http.StatusNotFound, ErrCodeNotFound, "User not found"}},
	{storage.ErrNotFound, apiError{http.StatusNotFound, ErrCodeNotFound, "Resource not found"}},
	{upload.ErrInvalidFileType, apiError{http.StatusBadRequest, ErrCodeBadRequest, upload.InvalidFileTypeMessage}},
	{upload.ErrInvalidImage, apiError{http.StatusBadRequest, ErrCodeBadRequest, upload.InvalidImageMessage}},
	{upload.ErrMalformedForm, apiError{http.StatusBadRequest, ErrCodeBadRequest, "Request must be multipart/form-data"}},
	{upload.ErrTooManyFiles, apiError{http.StatusBadRequest, ErrCodeBadRequest, "Too many files uploaded"}},
	{upload.ErrFileTooLarge, apiError{http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "File exceeds the upload size limit"}},
	{upload.ErrRequestTooLarge, apiError{http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "Request body is too large"}},
	{auth.ErrSessionStoreUnavailable, apiError{http.StatusServiceUnavailable, ErrCodeUnavailable, "Service temporarily unavailable"}},
	{context.DeadlineExceeded, apiError{http.StatusServiceUnavailable, ErrCodeUnavailable, "Request timed out"}},
}

// classify returns the client-facing form of err. ok is false for
// unexpected errors.
func classify(err error) (apiError, bool) {
	for _, k := range knownErrors {
		if errors.Is(err, k.target) {
			return k.resp, true
		}
	}
	return apiError{http.StatusInternalServerError, ErrCodeInternal, internalErrorMessage}, false
}

// writeServiceError maps err to an envelope. Validation errors carry their
// field details; unexpected errors are logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, verr.Error(), verr.Details())
		return
	}

	resp, known := classify(err)
	if !known {
		logging.CtxErr(r.Context(), err).Str("path", r.URL.Path).Msg("Request failed")
	} else if resp.status >= http.StatusInternalServerError {
		logging.CtxWarn(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Dependency unavailable")
	}
	respondError(w, resp.status, resp.code, resp.message, nil)
}
