// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package validation

import (
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type testSubmission struct {
	Title            string `json:"title" validate:"required,min=3"`
	ShortDescription string `json:"shortDescription" validate:"omitempty,max=150"`
	Type             string `json:"type" validate:"required,app_type"`
	RewardPoints     int    `json:"rewardPoints" validate:"min=50,max=500"`
	Sort             string `json:"sort" validate:"omitempty,sort_order"`
	Email            string `json:"email" validate:"omitempty,email"`
	Internal         string `json:"-"`
}

func validSubmission() testSubmission {
	return testSubmission{
		Title:        "Pixel Garden",
		Type:         "mobile",
		RewardPoints: 150,
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	s := validSubmission()
	if err := ValidateStruct(&s); err != nil {
		t.Errorf("ValidateStruct() returned unexpected error: %v", err)
	}

	s.Sort = "rewards"
	s.Email = "dev@example.com"
	if err := ValidateStruct(&s); err != nil {
		t.Errorf("ValidateStruct() returned unexpected error: %v", err)
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*testSubmission)
		wantField   string
		wantTag     string
		wantMessage string
	}{
		{
			name:        "title too short",
			mutate:      func(s *testSubmission) { s.Title = "ab" },
			wantField:   "title",
			wantTag:     "min",
			wantMessage: "Title must be at least 3 characters",
		},
		{
			name:        "missing title",
			mutate:      func(s *testSubmission) { s.Title = "" },
			wantField:   "title",
			wantTag:     "required",
			wantMessage: "Title is required",
		},
		{
			name:        "short description too long",
			mutate:      func(s *testSubmission) { s.ShortDescription = string(make([]byte, 151)) },
			wantField:   "shortDescription",
			wantTag:     "max",
			wantMessage: "Short description must be at most 150 characters",
		},
		{
			name:        "unknown app type",
			mutate:      func(s *testSubmission) { s.Type = "console" },
			wantField:   "type",
			wantTag:     "app_type",
			wantMessage: "Type must be one of: web, mobile, desktop",
		},
		{
			name:        "reward below minimum",
			mutate:      func(s *testSubmission) { s.RewardPoints = 10 },
			wantField:   "rewardPoints",
			wantTag:     "min",
			wantMessage: "Reward points must be at least 50",
		},
		{
			name:        "reward above maximum",
			mutate:      func(s *testSubmission) { s.RewardPoints = 501 },
			wantField:   "rewardPoints",
			wantTag:     "max",
			wantMessage: "Reward points must be at most 500",
		},
		{
			name:        "unknown sort",
			mutate:      func(s *testSubmission) { s.Sort = "oldest" },
			wantField:   "sort",
			wantTag:     "sort_order",
			wantMessage: "Sort must be one of: newest, popular, rewards",
		},
		{
			name:        "invalid email",
			mutate:      func(s *testSubmission) { s.Email = "not-an-email" },
			wantField:   "email",
			wantTag:     "email",
			wantMessage: "Email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.mutate(&s)

			err := ValidateStruct(&s)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected exactly one error, got %v", errs)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("got field=%s tag=%s, want field=%s tag=%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if err.Error() != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestRequestValidationError_FirstMessageAndDetails(t *testing.T) {
	s := testSubmission{Title: "", Type: "tv", RewardPoints: 1}

	err := ValidateStruct(&s)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := len(err.Errors()); got != 3 {
		t.Fatalf("expected 3 errors, got %d", got)
	}
	if err.Error() != "Title is required" {
		t.Errorf("Error() = %q, want first violation", err.Error())
	}

	fields, ok := err.Details()["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details() = %v", err.Details())
	}
	if fields[1]["field"] != "type" {
		t.Errorf("second detail field = %v, want type", fields[1]["field"])
	}
}

func TestNewRequestValidationError(t *testing.T) {
	err := NewRequestValidationError("screenshots", "required", "At least one screenshot is required")
	if err.Error() != "At least one screenshot is required" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Errors()[0].Field() != "screenshots" {
		t.Errorf("Field() = %q", err.Errors()[0].Field())
	}
}

func TestEmptyRequestValidationError(t *testing.T) {
	err := &RequestValidationError{}
	if err.Error() != "Validation failed" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"username":         "Username",
		"shortDescription": "Short description",
		"rewardPoints":     "Reward points",
		"downloadUrl":      "Download url",
	}
	for in, want := range tests {
		if got := Label(in); got != want {
			t.Errorf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}
