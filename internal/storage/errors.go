// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package storage

import (
	"errors"
)

// ErrNotFound is the generic missing-row error. ErrAppNotFound and
// ErrUserNotFound both match it with errors.Is.
var ErrNotFound = errors.New("not found")

var (
	ErrAppNotFound  error = &notFoundError{msg: "app not found"}
	ErrUserNotFound error = &notFoundError{msg: "user not found"}
)

var (
	// ErrAlreadyTesting means the user already has a tester record for the app.
	ErrAlreadyTesting = errors.New("already testing this app")

	// ErrNotTesting means feedback arrived for an app the user never started testing.
	ErrNotTesting = errors.New("not testing this app")

	// ErrFeedbackAlreadySubmitted means the tester record is already completed.
	ErrFeedbackAlreadySubmitted = errors.New("feedback already submitted")

	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string { return e.msg }

// Is makes errors.Is(err, ErrNotFound) true for every specific not-found error.
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }
