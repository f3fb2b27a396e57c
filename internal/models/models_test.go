// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestUserJSONOmitsPassword(t *testing.T) {
	u := User{
		ID:        1,
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "deadbeef.cafebabe",
		Points:    150,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(b)
	if strings.Contains(out, "password") || strings.Contains(out, "deadbeef") {
		t.Errorf("password leaked: %s", out)
	}
	for _, want := range []string{`"username":"alice"`, `"isAdmin":false`, `"points":150`, `"name":null`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestUserSummaries(t *testing.T) {
	name := "Alice"
	u := &User{ID: 7, Username: "alice", Name: &name, Points: 300, Email: "a@example.com"}

	s := u.Summary()
	if s.ID != 7 || s.Username != "alice" || *s.Name != "Alice" {
		t.Errorf("Summary() = %+v", s)
	}
	ts := u.TesterSummary()
	if ts.Points != 300 {
		t.Errorf("TesterSummary().Points = %d", ts.Points)
	}

	var nilUser *User
	if nilUser.Summary() != nil {
		t.Error("nil user should have nil summary")
	}
}

func TestAppWithDeveloperFlattens(t *testing.T) {
	a := AppWithDeveloper{
		App:       App{ID: 3, Title: "Pixel Garden", Type: AppTypeMobile, RewardPoints: 150},
		Developer: &UserSummary{ID: 1, Username: "dev"},
	}

	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(b)
	for _, want := range []string{`"id":3`, `"title":"Pixel Garden"`, `"developer":{"id":1`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestStringListValueAndScan(t *testing.T) {
	v, err := StringList{"/uploads/a.png", "/uploads/b.png"}.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != `["/uploads/a.png","/uploads/b.png"]` {
		t.Errorf("Value() = %v", v)
	}

	nilValue, _ := StringList(nil).Value()
	if nilValue != "[]" {
		t.Errorf("nil Value() = %v", nilValue)
	}

	tests := []struct {
		name string
		src  interface{}
		want int
	}{
		{"string", `["x","y"]`, 2},
		{"bytes", []byte(`["x"]`), 1},
		{"nil", nil, 0},
		{"empty", "", 0},
		{"json null", "null", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringList
			if err := s.Scan(tt.src); err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if len(s) != tt.want || s == nil {
				t.Errorf("Scan() = %#v, want %d items", s, tt.want)
			}
		})
	}

	var s StringList
	if err := s.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
	if err := s.Scan("{not json"); err == nil {
		t.Error("expected error scanning malformed JSON")
	}
}

func TestAverageRating(t *testing.T) {
	if got := AverageRating(nil); got != 0 {
		t.Errorf("AverageRating(nil) = %v", got)
	}
	got := AverageRating([]Feedback{{Rating: 4}, {Rating: 5}, {Rating: 3}})
	if got != 4 {
		t.Errorf("AverageRating = %v, want 4", got)
	}
}

func TestRolesFor(t *testing.T) {
	if r := RolesFor(nil); len(r) != 1 || r[0] != RoleAnonymous {
		t.Errorf("RolesFor(nil) = %v", r)
	}
	if r := RolesFor(&User{}); len(r) != 1 || r[0] != RoleUser {
		t.Errorf("RolesFor(user) = %v", r)
	}
	if r := RolesFor(&User{IsAdmin: true}); len(r) != 2 || r[1] != RoleAdmin {
		t.Errorf("RolesFor(admin) = %v", r)
	}
	if !IsValidRole(RoleAdmin) || IsValidRole("editor") {
		t.Error("IsValidRole mismatch")
	}
}

func TestProfileUpdateEmpty(t *testing.T) {
	if !(ProfileUpdate{}).Empty() {
		t.Error("zero ProfileUpdate should be empty")
	}
	if (ProfileUpdate{Bio: StringPtr("hi")}).Empty() {
		t.Error("ProfileUpdate with bio should not be empty")
	}
	if StringPtr("") != nil {
		t.Error("StringPtr(\"\") should be nil")
	}
}
