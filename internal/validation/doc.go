// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator reports fields by their JSON names and
// renders sentence-case messages ("Username must be at least 3 characters").
// The first violation becomes the API error message and every violation is
// listed in the error details.
//
// # Quick Start
//
//	type RegisterRequest struct {
//	    Username string `json:"username" validate:"required,min=3,max=50"`
//	    Email    string `json:"email" validate:"required,email"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Details())
//	    return
//	}
//
// # Custom Tags
//
//   - app_type: web, mobile or desktop
//   - sort_order: newest, popular or rewards
//
// Use omitempty in front of either tag for optional query parameters.
package validation
