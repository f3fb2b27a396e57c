// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package models

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=50"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Password       string `json:"password" validate:"required,min=6,max=128"`
	Name           string `json:"name" validate:"omitempty,min=2,max=100"`
	Bio            string `json:"bio" validate:"omitempty,max=250"`
	Avatar         string `json:"avatar" validate:"omitempty,max=512"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SubmitAppRequest holds the text fields of the multipart app submission.
// A nil RewardPoints means the field was omitted and DefaultRewardPoints
// applies; an explicit value must be within 50..500.
type SubmitAppRequest struct {
	Title            string `json:"title" validate:"required,min=3,max=120"`
	ShortDescription string `json:"shortDescription" validate:"omitempty,max=150"`
	Description      string `json:"description" validate:"required,min=30,max=10000"`
	Type             string `json:"type" validate:"required,app_type"`
	DownloadURL      string `json:"downloadUrl" validate:"required,url,max=2048"`
	RewardPoints     *int   `json:"rewardPoints" validate:"omitnil,min=50,max=500"`
}

// FeedbackRequest is the body of POST /api/apps/{id}/feedback.
type FeedbackRequest struct {
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Content     string `json:"content" validate:"required,min=30,max=5000"`
	Bugs        string `json:"bugs" validate:"omitempty,max=5000"`
	Suggestions string `json:"suggestions" validate:"omitempty,max=5000"`
}

// ProfileUpdateRequest is the body of PATCH /api/user. Omitted fields are unchanged.
type ProfileUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=100"`
	Bio            *string `json:"bio" validate:"omitempty,max=250"`
	Specialization *string `json:"specialization" validate:"omitempty,max=100"`
}
