// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// App types.
const (
	AppTypeWeb     = "web"
	AppTypeMobile  = "mobile"
	AppTypeDesktop = "desktop"
)

// Reward bounds and default for app submissions.
const (
	MinRewardPoints     = 50
	MaxRewardPoints     = 500
	DefaultRewardPoints = 100
)

// App is a submission open for testing. Only TesterCount changes after creation.
type App struct {
	ID               int64      `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	ShortDescription *string    `json:"shortDescription" db:"short_description"`
	Type             string     `json:"type" db:"type"`
	DownloadURL      string     `json:"downloadUrl" db:"download_url"`
	Screenshots      StringList `json:"screenshots" db:"screenshots"`
	RewardPoints     int        `json:"rewardPoints" db:"reward_points"`
	UserID           int64      `json:"userId" db:"user_id"`
	TesterCount      int        `json:"testerCount" db:"tester_count"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
}

// NewApp is the insert form of App.
type NewApp struct {
	Title            string
	Description      string
	ShortDescription *string
	Type             string
	DownloadURL      string
	Screenshots      []string
	RewardPoints     int
	UserID           int64
}

// AppWithDeveloper is a listing row.
type AppWithDeveloper struct {
	App
	Developer *UserSummary `json:"developer"`
}

// AppDetail is the single-app view with its feedback.
type AppDetail struct {
	App
	Developer     *UserSummary       `json:"developer"`
	Feedback      []FeedbackWithUser `json:"feedback"`
	AverageRating float64            `json:"averageRating"`
}

// StringList is a []string persisted as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("models: cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*s = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("models: decode string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}

// MarshalJSON renders a nil list as [].
func (s StringList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}
