// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/betabuddy/internal/models"
)

// testerKey identifies a (user, app) tester record.
type testerKey struct {
	userID int64
	appID  int64
}

// MemStorage is the in-memory Storage. One RWMutex guards every map, and the
// lifecycle workflows run inside a single write-locked section, so concurrent
// StartTesting calls for one pair produce exactly one record.
//
// Values are stored and returned by copy; callers never share memory with the store.
type MemStorage struct {
	mu sync.RWMutex

	users      map[int64]models.User
	byUsername map[string]int64
	byEmail    map[string]int64

	apps     map[int64]models.App
	feedback map[int64]models.Feedback
	testers  map[int64]models.AppTester
	byPair   map[testerKey]int64

	nextUserID     int64
	nextAppID      int64
	nextFeedbackID int64
	nextTesterID   int64

	now func() time.Time
}

// Compile-time interface check.
var _ Storage = (*MemStorage)(nil)

// NewMemStorage returns an empty in-memory store.
func NewMemStorage() *MemStorage {
	return &MemStorage{
		users:          make(map[int64]models.User),
		byUsername:     make(map[string]int64),
		byEmail:        make(map[string]int64),
		apps:           make(map[int64]models.App),
		feedback:       make(map[int64]models.Feedback),
		testers:        make(map[int64]models.AppTester),
		byPair:         make(map[testerKey]int64),
		nextUserID:     1,
		nextAppID:      1,
		nextFeedbackID: 1,
		nextTesterID:   1,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Tests use it to get deterministic ordering.
func (m *MemStorage) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (m *MemStorage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user %d: %w", id, ErrUserNotFound)
	}
	return &u, nil
}

func (m *MemStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[foldKey(username)]
	if !ok {
		return nil, fmt.Errorf("get user by username: %w", ErrUserNotFound)
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[foldKey(email)]
	if !ok {
		return nil, fmt.Errorf("get user by email: %w", ErrUserNotFound)
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemStorage) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			u := u
			out[id] = &u
		}
	}
	return out, nil
}

func (m *MemStorage) CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	uname, email := foldKey(nu.Username), foldKey(nu.Email)
	if _, taken := m.byUsername[uname]; taken {
		return nil, fmt.Errorf("create user: %w", ErrDuplicateUsername)
	}
	if _, taken := m.byEmail[email]; taken {
		return nil, fmt.Errorf("create user: %w", ErrDuplicateEmail)
	}

	u := models.User{
		ID:             m.nextUserID,
		Username:       nu.Username,
		Email:          nu.Email,
		Password:       nu.Password,
		Name:           nu.Name,
		Bio:            nu.Bio,
		Avatar:         nu.Avatar,
		Specialization: nu.Specialization,
		IsAdmin:        nu.IsAdmin,
		CreatedAt:      m.now(),
	}
	m.nextUserID++
	m.users[u.ID] = u
	m.byUsername[uname] = u.ID
	m.byEmail[email] = u.ID
	return &u, nil
}

func (m *MemStorage) UpdateProfile(ctx context.Context, id int64, p models.ProfileUpdate) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("update profile %d: %w", id, ErrUserNotFound)
	}
	if p.Name != nil {
		u.Name = p.Name
	}
	if p.Bio != nil {
		u.Bio = p.Bio
	}
	if p.Specialization != nil {
		u.Specialization = p.Specialization
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}
	m.users[id] = u
	return &u, nil
}

func (m *MemStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStorage) TopTesters(ctx context.Context, limit int) ([]models.User, error) {
	users, err := m.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	// ListUsers is id-ascending, so a stable sort keeps the id tiebreak.
	sort.SliceStable(users, func(i, j int) bool { return users[i].Points > users[j].Points })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// ---------------------------------------------------------------------------
// Apps
// ---------------------------------------------------------------------------

func copyApp(a models.App) models.App {
	a.Screenshots = append(models.StringList{}, a.Screenshots...)
	return a
}

func (m *MemStorage) GetApp(ctx context.Context, id int64) (*models.App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.apps[id]
	if !ok {
		return nil, fmt.Errorf("get app %d: %w", id, ErrAppNotFound)
	}
	a = copyApp(a)
	return &a, nil
}

func (m *MemStorage) listApps(keep func(*models.App) bool) []models.App {
	out := make([]models.App, 0, len(m.apps))
	for _, a := range m.apps {
		if keep(&a) {
			out = append(out, copyApp(a))
		}
	}
	SortApps(out, SortNewest)
	return out
}

func (m *MemStorage) ListApps(ctx context.Context, appType string) ([]models.App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listApps(func(a *models.App) bool { return appType == "" || a.Type == appType }), nil
}

func (m *MemStorage) ListAppsByUser(ctx context.Context, userID int64) ([]models.App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listApps(func(a *models.App) bool { return a.UserID == userID }), nil
}

func (m *MemStorage) CreateApp(ctx context.Context, na models.NewApp) (*models.App, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a := models.App{
		ID:               m.nextAppID,
		Title:            na.Title,
		Description:      na.Description,
		ShortDescription: na.ShortDescription,
		Type:             na.Type,
		DownloadURL:      na.DownloadURL,
		Screenshots:      append(models.StringList{}, na.Screenshots...),
		RewardPoints:     na.RewardPoints,
		UserID:           na.UserID,
		CreatedAt:        m.now(),
	}
	m.nextAppID++
	m.apps[a.ID] = a
	a = copyApp(a)
	return &a, nil
}

// ---------------------------------------------------------------------------
// Feedback and tester records
// ---------------------------------------------------------------------------

func (m *MemStorage) ListFeedbackByApp(ctx context.Context, appID int64) ([]models.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Feedback, 0)
	for _, f := range m.feedback {
		if f.AppID == appID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemStorage) GetAppTester(ctx context.Context, userID, appID int64) (*models.AppTester, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPair[testerKey{userID, appID}]
	if !ok {
		return nil, fmt.Errorf("get tester (%d, %d): %w", userID, appID, ErrNotFound)
	}
	t := m.testers[id]
	return &t, nil
}

func (m *MemStorage) ListAppTestersByUser(ctx context.Context, userID int64) ([]models.AppTester, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.AppTester, 0)
	for _, t := range m.testers {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemStorage) StartTesting(ctx context.Context, userID, appID int64) (*models.AppTester, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[appID]
	if !ok {
		return nil, fmt.Errorf("start testing app %d: %w", appID, ErrAppNotFound)
	}
	key := testerKey{userID, appID}
	if _, exists := m.byPair[key]; exists {
		return nil, fmt.Errorf("start testing app %d: %w", appID, ErrAlreadyTesting)
	}

	t := models.AppTester{
		ID:        m.nextTesterID,
		UserID:    userID,
		AppID:     appID,
		Status:    models.TesterStatusTesting,
		CreatedAt: m.now(),
	}
	m.nextTesterID++
	m.testers[t.ID] = t
	m.byPair[key] = t.ID

	app.TesterCount++
	m.apps[appID] = app
	return &t, nil
}

func (m *MemStorage) SubmitFeedback(ctx context.Context, nf models.NewFeedback) (*models.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[nf.AppID]
	if !ok {
		return nil, fmt.Errorf("submit feedback for app %d: %w", nf.AppID, ErrAppNotFound)
	}
	testerID, ok := m.byPair[testerKey{nf.UserID, nf.AppID}]
	if !ok {
		return nil, fmt.Errorf("submit feedback for app %d: %w", nf.AppID, ErrNotTesting)
	}
	tester := m.testers[testerID]
	if tester.Status != models.TesterStatusTesting {
		return nil, fmt.Errorf("submit feedback for app %d: %w", nf.AppID, ErrFeedbackAlreadySubmitted)
	}
	user, ok := m.users[nf.UserID]
	if !ok {
		return nil, fmt.Errorf("submit feedback: %w", ErrUserNotFound)
	}

	f := models.Feedback{
		ID:          m.nextFeedbackID,
		UserID:      nf.UserID,
		AppID:       nf.AppID,
		Rating:      nf.Rating,
		Content:     nf.Content,
		Bugs:        nf.Bugs,
		Suggestions: nf.Suggestions,
		CreatedAt:   m.now(),
	}
	m.nextFeedbackID++
	m.feedback[f.ID] = f

	tester.Status = models.TesterStatusCompleted
	m.testers[testerID] = tester

	user.Points += app.RewardPoints
	m.users[user.ID] = user
	return &f, nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// Backend implements Storage.
func (m *MemStorage) Backend() string { return "memory" }

// Ping implements Storage.
func (m *MemStorage) Ping(ctx context.Context) error { return ctx.Err() }

// Close implements Storage.
func (m *MemStorage) Close() error { return nil }
