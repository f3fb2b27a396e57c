// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package storagetest holds the behavioral suite every storage.Storage
// implementation must pass. Backends call RunContract from their own tests
// with a factory that returns a fresh, empty store.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) storage.Storage

// RunContract runs every contract test against stores built by newStore.
func RunContract(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(*testing.T, storage.Storage)
	}{
		{"CreateAndGetUser", testCreateAndGetUser},
		{"DuplicateUserCaseInsensitive", testDuplicateUser},
		{"UpdateProfilePartial", testUpdateProfile},
		{"GetUsersByIDs", testGetUsersByIDs},
		{"CreateAndListApps", testCreateAndListApps},
		{"GetAppNotFound", testGetAppNotFound},
		{"StartTesting", testStartTesting},
		{"StartTestingTwice", testStartTestingTwice},
		{"StartTestingConcurrent", testStartTestingConcurrent},
		{"SubmitFeedbackAwardsPoints", testSubmitFeedback},
		{"SubmitFeedbackWithoutTesting", testSubmitFeedbackNotTesting},
		{"SubmitFeedbackTwice", testSubmitFeedbackTwice},
		{"SubmitFeedbackConcurrent", testSubmitFeedbackConcurrent},
		{"TopTestersOrdering", testTopTesters},
		{"CanceledContext", testCanceledContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

// MustCreateUser inserts a user or fails the test.
func MustCreateUser(t *testing.T, s storage.Storage, username string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.NewUser{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	})
	if err != nil {
		t.Fatalf("CreateUser(%q) error = %v", username, err)
	}
	return u
}

// MustCreateApp inserts an app owned by ownerID or fails the test.
func MustCreateApp(t *testing.T, s storage.Storage, ownerID int64, title, appType string, reward int) *models.App {
	t.Helper()
	a, err := s.CreateApp(context.Background(), models.NewApp{
		Title:        title,
		Description:  "A thorough description of " + title + " for testers.",
		Type:         appType,
		DownloadURL:  "https://example.com/" + title,
		Screenshots:  []string{"/uploads/screenshots-1-1.png"},
		RewardPoints: reward,
		UserID:       ownerID,
	})
	if err != nil {
		t.Fatalf("CreateApp(%q) error = %v", title, err)
	}
	return a
}

func feedbackFor(userID, appID int64) models.NewFeedback {
	return models.NewFeedback{
		UserID:  userID,
		AppID:   appID,
		Rating:  4,
		Content: "Works well overall, the onboarding flow needs a little polish.",
	}
}

func testCreateAndGetUser(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := MustCreateUser(t, s, "Alice")

	if u.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if u.Points != 0 || u.IsAdmin {
		t.Errorf("new user defaults = points %d admin %v", u.Points, u.IsAdmin)
	}

	byID, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if byID.Username != "Alice" || byID.Password != "hashed" {
		t.Errorf("GetUser() = %+v", byID)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil || byName.ID != u.ID {
		t.Errorf("GetUserByUsername(lowercase) = %v, %v", byName, err)
	}
	byEmail, err := s.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Errorf("GetUserByEmail(uppercase) = %v, %v", byEmail, err)
	}

	if _, err := s.GetUser(ctx, u.ID+1000); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("GetUser(missing) error = %v, want ErrUserNotFound", err)
	}
	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUserByUsername(missing) error = %v, want ErrNotFound", err)
	}
}

func testDuplicateUser(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	MustCreateUser(t, s, "bob")

	_, err := s.CreateUser(ctx, models.NewUser{Username: "BOB", Email: "other@example.com", Password: "x"})
	if !errors.Is(err, storage.ErrDuplicateUsername) {
		t.Errorf("duplicate username error = %v", err)
	}
	_, err = s.CreateUser(ctx, models.NewUser{Username: "robert", Email: "Bob@Example.com", Password: "x"})
	if !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Errorf("duplicate email error = %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("ListUsers() len = %d, want 1", len(users))
	}
}

func testUpdateProfile(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := MustCreateUser(t, s, "carol")

	updated, err := s.UpdateProfile(ctx, u.ID, models.ProfileUpdate{
		Name: models.StringPtr("Carol C."),
		Bio:  models.StringPtr("QA for mobile games"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name == nil || *updated.Name != "Carol C." {
		t.Errorf("name = %v", updated.Name)
	}

	// Omitted fields keep their values.
	updated, err = s.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Specialization: models.StringPtr("Android")})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Bio == nil || *updated.Bio != "QA for mobile games" {
		t.Errorf("bio lost on partial update: %v", updated.Bio)
	}
	if updated.Specialization == nil || *updated.Specialization != "Android" {
		t.Errorf("specialization = %v", updated.Specialization)
	}

	if _, err := s.UpdateProfile(ctx, u.ID+1000, models.ProfileUpdate{}); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("UpdateProfile(missing) error = %v", err)
	}
}

func testGetUsersByIDs(t *testing.T, s storage.Storage) {
	a := MustCreateUser(t, s, "dave")
	b := MustCreateUser(t, s, "erin")

	got, err := s.GetUsersByIDs(context.Background(), []int64{a.ID, b.ID, b.ID + 1000})
	if err != nil {
		t.Fatalf("GetUsersByIDs() error = %v", err)
	}
	if len(got) != 2 || got[a.ID] == nil || got[b.ID] == nil {
		t.Errorf("GetUsersByIDs() = %v", got)
	}

	empty, err := s.GetUsersByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetUsersByIDs(nil) = %v, %v", empty, err)
	}
}

func testCreateAndListApps(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	other := MustCreateUser(t, s, "other")

	first := MustCreateApp(t, s, dev.ID, "first", models.AppTypeWeb, 100)
	second := MustCreateApp(t, s, dev.ID, "second", models.AppTypeMobile, 200)
	third := MustCreateApp(t, s, other.ID, "third", models.AppTypeWeb, 50)

	if first.TesterCount != 0 {
		t.Errorf("new app tester count = %d", first.TesterCount)
	}
	if len(first.Screenshots) != 1 {
		t.Errorf("screenshots = %v", first.Screenshots)
	}

	all, err := s.ListApps(ctx, "")
	if err != nil {
		t.Fatalf("ListApps() error = %v", err)
	}
	if ids := appIDs(all); fmt.Sprint(ids) != fmt.Sprint([]int64{third.ID, second.ID, first.ID}) {
		t.Errorf("ListApps() order = %v, want newest first", ids)
	}

	web, err := s.ListApps(ctx, models.AppTypeWeb)
	if err != nil {
		t.Fatalf("ListApps(web) error = %v", err)
	}
	if len(web) != 2 {
		t.Errorf("ListApps(web) len = %d, want 2", len(web))
	}

	mine, err := s.ListAppsByUser(ctx, dev.ID)
	if err != nil {
		t.Fatalf("ListAppsByUser() error = %v", err)
	}
	if ids := appIDs(mine); fmt.Sprint(ids) != fmt.Sprint([]int64{second.ID, first.ID}) {
		t.Errorf("ListAppsByUser() = %v", ids)
	}

	got, err := s.GetApp(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetApp() error = %v", err)
	}
	if got.Title != "second" || got.RewardPoints != 200 || got.UserID != dev.ID {
		t.Errorf("GetApp() = %+v", got)
	}
}

func testGetAppNotFound(t *testing.T, s storage.Storage) {
	_, err := s.GetApp(context.Background(), 424242)
	if !errors.Is(err, storage.ErrAppNotFound) || !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetApp(missing) error = %v", err)
	}
}

func testStartTesting(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	tester := MustCreateUser(t, s, "tester")
	app := MustCreateApp(t, s, dev.ID, "game", models.AppTypeMobile, 150)

	rec, err := s.StartTesting(ctx, tester.ID, app.ID)
	if err != nil {
		t.Fatalf("StartTesting() error = %v", err)
	}
	if rec.Status != models.TesterStatusTesting || rec.UserID != tester.ID || rec.AppID != app.ID {
		t.Errorf("tester record = %+v", rec)
	}

	got, err := s.GetApp(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApp() error = %v", err)
	}
	if got.TesterCount != 1 {
		t.Errorf("tester count = %d, want 1", got.TesterCount)
	}

	found, err := s.GetAppTester(ctx, tester.ID, app.ID)
	if err != nil || found.ID != rec.ID {
		t.Errorf("GetAppTester() = %v, %v", found, err)
	}
	if _, err := s.GetAppTester(ctx, dev.ID, app.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetAppTester(none) error = %v", err)
	}

	list, err := s.ListAppTestersByUser(ctx, tester.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("ListAppTestersByUser() = %v, %v", list, err)
	}

	if _, err := s.StartTesting(ctx, tester.ID, app.ID+1000); !errors.Is(err, storage.ErrAppNotFound) {
		t.Errorf("StartTesting(missing app) error = %v", err)
	}
}

func testStartTestingTwice(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	tester := MustCreateUser(t, s, "tester")
	app := MustCreateApp(t, s, dev.ID, "tool", models.AppTypeDesktop, 100)

	if _, err := s.StartTesting(ctx, tester.ID, app.ID); err != nil {
		t.Fatalf("StartTesting() error = %v", err)
	}
	if _, err := s.StartTesting(ctx, tester.ID, app.ID); !errors.Is(err, storage.ErrAlreadyTesting) {
		t.Errorf("second StartTesting() error = %v, want ErrAlreadyTesting", err)
	}

	got, _ := s.GetApp(ctx, app.ID)
	if got.TesterCount != 1 {
		t.Errorf("tester count = %d after rejected retry", got.TesterCount)
	}
}

func testStartTestingConcurrent(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	tester := MustCreateUser(t, s, "tester")
	app := MustCreateApp(t, s, dev.ID, "race", models.AppTypeWeb, 100)

	const workers = 8
	var (
		wg       sync.WaitGroup
		ok, dupe atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.StartTesting(ctx, tester.ID, app.ID)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, storage.ErrAlreadyTesting):
				dupe.Add(1)
			default:
				t.Errorf("StartTesting() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || dupe.Load() != workers-1 {
		t.Errorf("successes = %d, duplicates = %d", ok.Load(), dupe.Load())
	}
	got, _ := s.GetApp(ctx, app.ID)
	if got.TesterCount != 1 {
		t.Errorf("tester count = %d, want 1", got.TesterCount)
	}
}

func testSubmitFeedback(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	tester := MustCreateUser(t, s, "tester")
	app := MustCreateApp(t, s, dev.ID, "notes", models.AppTypeMobile, 250)

	if _, err := s.StartTesting(ctx, tester.ID, app.ID); err != nil {
		t.Fatalf("StartTesting() error = %v", err)
	}
	fb, err := s.SubmitFeedback(ctx, feedbackFor(tester.ID, app.ID))
	if err != nil {
		t.Fatalf("SubmitFeedback() error = %v", err)
	}
	if fb.ID == 0 || fb.Rating != 4 {
		t.Errorf("feedback = %+v", fb)
	}

	u, _ := s.GetUser(ctx, tester.ID)
	if u.Points != 250 {
		t.Errorf("points = %d, want 250", u.Points)
	}
	rec, _ := s.GetAppTester(ctx, tester.ID, app.ID)
	if rec.Status != models.TesterStatusCompleted {
		t.Errorf("status = %q, want completed", rec.Status)
	}

	list, err := s.ListFeedbackByApp(ctx, app.ID)
	if err != nil || len(list) != 1 || list[0].ID != fb.ID {
		t.Errorf("ListFeedbackByApp() = %v, %v", list, err)
	}
}

func testSubmitFeedbackNotTesting(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	tester := MustCreateUser(t, s, "tester")
	app := MustCreateApp(t, s, dev.ID, "skip", models.AppTypeWeb, 100)

	if _, err := s.SubmitFeedback(ctx, feedbackFor(tester.ID, app.ID)); !errors.Is(err, storage.ErrNotTesting) {
		t.Errorf("SubmitFeedback(not testing) error = %v", err)
	}
	if _, err := s.SubmitFeedback(ctx, feedbackFor(tester.ID, app.ID+1000)); !errors.Is(err, storage.ErrAppNotFound) {
		t.Errorf("SubmitFeedback(missing app) error = %v", err)
	}

	u, _ := s.GetUser(ctx, tester.ID)
	if u.Points != 0 {
		t.Errorf("points changed on rejected feedback: %d", u.Points)
	}
	list, _ := s.ListFeedbackByApp(ctx, app.ID)
	if len(list) != 0 {
		t.Errorf("feedback stored on rejection: %v", list)
	}
}

func testSubmitFeedbackTwice(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	tester := MustCreateUser(t, s, "tester")
	app := MustCreateApp(t, s, dev.ID, "twice", models.AppTypeWeb, 100)

	if _, err := s.StartTesting(ctx, tester.ID, app.ID); err != nil {
		t.Fatalf("StartTesting() error = %v", err)
	}
	if _, err := s.SubmitFeedback(ctx, feedbackFor(tester.ID, app.ID)); err != nil {
		t.Fatalf("SubmitFeedback() error = %v", err)
	}
	_, err := s.SubmitFeedback(ctx, feedbackFor(tester.ID, app.ID))
	if !errors.Is(err, storage.ErrFeedbackAlreadySubmitted) {
		t.Errorf("second SubmitFeedback() error = %v", err)
	}

	u, _ := s.GetUser(ctx, tester.ID)
	if u.Points != 100 {
		t.Errorf("points = %d, want 100 (awarded once)", u.Points)
	}
	if _, err := s.StartTesting(ctx, tester.ID, app.ID); !errors.Is(err, storage.ErrAlreadyTesting) {
		t.Errorf("restart after completion error = %v", err)
	}
}

func testSubmitFeedbackConcurrent(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	tester := MustCreateUser(t, s, "tester")
	app := MustCreateApp(t, s, dev.ID, "rush", models.AppTypeMobile, 150)

	if _, err := s.StartTesting(ctx, tester.ID, app.ID); err != nil {
		t.Fatalf("StartTesting() error = %v", err)
	}

	const workers = 16
	var (
		wg       sync.WaitGroup
		ok, dupe atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SubmitFeedback(ctx, feedbackFor(tester.ID, app.ID))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, storage.ErrFeedbackAlreadySubmitted):
				dupe.Add(1)
			default:
				t.Errorf("SubmitFeedback() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || dupe.Load() != workers-1 {
		t.Errorf("successes = %d, duplicates = %d", ok.Load(), dupe.Load())
	}
	u, _ := s.GetUser(ctx, tester.ID)
	if u.Points != 150 {
		t.Errorf("points = %d, want 150 (awarded once)", u.Points)
	}
	list, err := s.ListFeedbackByApp(ctx, app.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("ListFeedbackByApp() = %d rows, %v; want 1", len(list), err)
	}
	rec, _ := s.GetAppTester(ctx, tester.ID, app.ID)
	if rec.Status != models.TesterStatusCompleted {
		t.Errorf("status = %q, want completed", rec.Status)
	}
}

func testTopTesters(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	dev := MustCreateUser(t, s, "dev")
	low := MustCreateUser(t, s, "low")
	high := MustCreateUser(t, s, "high")
	tie := MustCreateUser(t, s, "tie")

	big := MustCreateApp(t, s, dev.ID, "big", models.AppTypeWeb, 300)
	small := MustCreateApp(t, s, dev.ID, "small", models.AppTypeWeb, 100)

	award := func(u *models.User, a *models.App) {
		t.Helper()
		if _, err := s.StartTesting(ctx, u.ID, a.ID); err != nil {
			t.Fatalf("StartTesting() error = %v", err)
		}
		if _, err := s.SubmitFeedback(ctx, feedbackFor(u.ID, a.ID)); err != nil {
			t.Fatalf("SubmitFeedback() error = %v", err)
		}
	}
	award(high, big)
	award(low, small)
	award(tie, small)

	top, err := s.TopTesters(ctx, 3)
	if err != nil {
		t.Fatalf("TopTesters() error = %v", err)
	}
	want := []int64{high.ID, low.ID, tie.ID}
	if got := userIDs(top); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("TopTesters(3) = %v, want %v", got, want)
	}

	everyone, err := s.TopTesters(ctx, 0)
	if err != nil || len(everyone) != 4 {
		t.Errorf("TopTesters(0) = %d users, %v", len(everyone), err)
	}
}

func testCanceledContext(t *testing.T, s storage.Storage) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ListApps(ctx, ""); err == nil {
		t.Error("ListApps() with canceled context should fail")
	}
	if _, err := s.CreateUser(ctx, models.NewUser{Username: "x", Email: "x@example.com", Password: "x"}); err == nil {
		t.Error("CreateUser() with canceled context should fail")
	}
}

func appIDs(apps []models.App) []int64 {
	out := make([]int64, len(apps))
	for i := range apps {
		out[i] = apps[i].ID
	}
	return out
}

func userIDs(users []models.User) []int64 {
	out := make([]int64, len(users))
	for i := range users {
		out[i] = users[i].ID
	}
	return out
}
