// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package marketplace

import (
	"errors"

	"github.com/tomtom215/betabuddy/internal/validation"
)

// ErrInvalidCredentials is returned by Login for an unknown username or a
// wrong password. The two cases are indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid username or password")

// validate runs struct validation and converts a nil result to a nil error.
func validate(v interface{}) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	return nil
}

func invalid(field, tag, message string) error {
	return validation.NewRequestValidationError(field, tag, message)
}
