// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package models

import (
	"time"
)

// Tester lifecycle states. A pair with no AppTester row is in the implicit
// "none" state; completed is terminal.
const (
	TesterStatusTesting   = "testing"
	TesterStatusCompleted = "completed"
)

// Rating bounds for feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// AppTester records that a user is testing (or has finished testing) an app.
// At most one row exists per (UserID, AppID).
type AppTester struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	AppID     int64     `json:"appId" db:"app_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// TestingEntry is a row of the "my testing" list.
type TestingEntry struct {
	AppTester
	App *AppWithDeveloper `json:"app"`
}

// Feedback is a tester's review of an app.
type Feedback struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	AppID       int64     `json:"appId" db:"app_id"`
	Rating      int       `json:"rating" db:"rating"`
	Content     string    `json:"content" db:"content"`
	Bugs        *string   `json:"bugs" db:"bugs"`
	Suggestions *string   `json:"suggestions" db:"suggestions"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// NewFeedback is the insert form of Feedback.
type NewFeedback struct {
	UserID      int64
	AppID       int64
	Rating      int
	Content     string
	Bugs        *string
	Suggestions *string
}

// FeedbackWithUser is feedback with its author's public summary.
type FeedbackWithUser struct {
	Feedback
	User *UserSummary `json:"user"`
}

// AverageRating returns the mean rating, or 0 for no feedback.
func AverageRating(items []Feedback) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, f := range items {
		total += f.Rating
	}
	return float64(total) / float64(len(items))
}
