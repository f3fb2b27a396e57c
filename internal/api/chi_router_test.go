// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/betabuddy/internal/audit"
	"github.com/tomtom215/betabuddy/internal/auth"
	"github.com/tomtom215/betabuddy/internal/authz"
	"github.com/tomtom215/betabuddy/internal/config"
	"github.com/tomtom215/betabuddy/internal/marketplace"
	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
	"github.com/tomtom215/betabuddy/internal/upload"
)

const validDescription = "A calm gardening game about growing pixel plants over time."

type testEnv struct {
	handler   http.Handler
	svc       *marketplace.Service
	sessions  *auth.SessionManager
	audit     *audit.Logger
	uploadDir string
}

func newTestEnv(t *testing.T, sec config.SecurityConfig) *testEnv {
	t.Helper()

	svc := marketplace.New(storage.NewMemStorage())
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), auth.DefaultManagerConfig())

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	dir := t.TempDir()
	uploads, err := upload.New(config.UploadConfig{Dir: dir, MaxFileSize: 1 << 20, MaxFiles: 5})
	if err != nil {
		t.Fatalf("upload.New() error = %v", err)
	}

	auditLog := audit.NewLogger(audit.NewMemoryStore(0), audit.Config{Enabled: true})
	authzMw := authz.NewMiddleware(enforcer)
	authzMw.OnDenied(auditLog.AuthzDenied)

	h := NewHandler(svc, sessions, uploads, auditLog, "test")
	router := NewRouter(h, sessions, authzMw, NewChiMiddleware(ChiMiddlewareConfigFrom(sec)), uploads, RouterOptions{})

	return &testEnv{handler: router.SetupChi(), svc: svc, sessions: sessions, audit: auditLog, uploadDir: dir}
}

func noRateLimit() config.SecurityConfig {
	return config.SecurityConfig{RateLimitDisabled: true}
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req, cookie)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) *models.APIError {
	t.Helper()
	expectStatus(t, rec, status)
	env := decodeEnvelope(t, rec, nil)
	if env.Status != models.StatusError || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Fatalf("error code = %q, want %q", env.Error.Code, code)
	}
	return env.Error
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.DefaultManagerConfig().CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("response set no session cookie")
	return nil
}

func registerUser(t *testing.T, e *testEnv, username string) (*models.User, *http.Cookie) {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/register", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	}, nil)
	expectStatus(t, rec, http.StatusCreated)

	var user models.User
	decodeEnvelope(t, rec, &user)
	return &user, sessionCookie(t, rec)
}

type filePart struct {
	field, name, contentType string
	body                     []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	for _, f := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		hdr.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("CreatePart() error = %v", err)
		}
		if _, err := part.Write(f.body); err != nil {
			t.Fatalf("part.Write() error = %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func appFields(title, appType, reward string) map[string]string {
	return map[string]string{
		"title":        title,
		"description":  validDescription,
		"type":         appType,
		"downloadUrl":  "https://example.com/build.zip",
		"rewardPoints": reward,
	}
}

func screenshot() filePart {
	return filePart{field: "screenshots", name: "shot.png", contentType: "image/png", body: []byte("\x89PNG fake")}
}

func submitApp(t *testing.T, e *testEnv, cookie *http.Cookie, title, appType, reward string) *models.App {
	t.Helper()
	rec := e.do(t, multipartRequest(t, "/api/apps", appFields(title, appType, reward), screenshot()), cookie)
	expectStatus(t, rec, http.StatusCreated)
	var app models.App
	decodeEnvelope(t, rec, &app)
	return &app
}

func countUploads(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	return len(entries)
}

func TestRouter_TesterLifecycle(t *testing.T) {
	e := newTestEnv(t, noRateLimit())

	_, devCookie := registerUser(t, e, "devon")
	app := submitApp(t, e, devCookie, "Pixel Garden", "mobile", "150")
	if app.RewardPoints != 150 {
		t.Errorf("RewardPoints = %d, want 150", app.RewardPoints)
	}
	if len(app.Screenshots) != 1 || !strings.HasPrefix(app.Screenshots[0], upload.URLPrefix+"screenshots-") {
		t.Errorf("Screenshots = %v", app.Screenshots)
	}

	tester, testerCookie := registerUser(t, e, "tess")
	path := fmt.Sprintf("/api/apps/%d", app.ID)

	rec := e.doJSON(t, http.MethodPost, path+"/test", nil, testerCookie)
	expectStatus(t, rec, http.StatusCreated)
	var at models.AppTester
	decodeEnvelope(t, rec, &at)
	if at.Status != models.TesterStatusTesting || at.UserID != tester.ID {
		t.Errorf("AppTester = %+v", at)
	}

	rec = e.doJSON(t, http.MethodPost, path+"/test", nil, testerCookie)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeConflict)

	feedback := models.FeedbackRequest{Rating: 4, Content: "Smooth onboarding, but the shop screen stutters."}
	rec = e.doJSON(t, http.MethodPost, path+"/feedback", feedback, testerCookie)
	expectStatus(t, rec, http.StatusCreated)

	rec = e.doJSON(t, http.MethodPost, path+"/feedback", feedback, testerCookie)
	expectErrorCode(t, rec, http.StatusConflict, ErrCodeConflict)

	rec = e.doJSON(t, http.MethodGet, "/api/user", nil, testerCookie)
	expectStatus(t, rec, http.StatusOK)
	var me models.User
	decodeEnvelope(t, rec, &me)
	if me.Points != 150 {
		t.Errorf("Points = %d, want 150", me.Points)
	}

	rec = e.doJSON(t, http.MethodGet, "/api/my/testing", nil, testerCookie)
	expectStatus(t, rec, http.StatusOK)
	var entries []models.TestingEntry
	decodeEnvelope(t, rec, &entries)
	if len(entries) != 1 || entries[0].Status != models.TesterStatusCompleted {
		t.Fatalf("my testing = %+v", entries)
	}
	if entries[0].App == nil || entries[0].App.Developer == nil || entries[0].App.Developer.Username != "devon" {
		t.Errorf("entry app = %+v", entries[0].App)
	}

	rec = e.doJSON(t, http.MethodGet, path, nil, nil)
	expectStatus(t, rec, http.StatusOK)
	var detail models.AppDetail
	decodeEnvelope(t, rec, &detail)
	if detail.TesterCount != 1 || len(detail.Feedback) != 1 || detail.AverageRating != 4 {
		t.Errorf("detail = testers %d, feedback %d, avg %v", detail.TesterCount, len(detail.Feedback), detail.AverageRating)
	}
}

func TestRouter_FeedbackWithoutTesting(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	_, devCookie := registerUser(t, e, "devon")
	app := submitApp(t, e, devCookie, "Pixel Garden", "web", "")

	_, cookie := registerUser(t, e, "tess")
	rec := e.doJSON(t, http.MethodPost, fmt.Sprintf("/api/apps/%d/feedback", app.ID),
		models.FeedbackRequest{Rating: 5, Content: "I never started testing this app at all."}, cookie)
	apiErr := expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
	if apiErr.Message != "You must be testing this app to provide feedback" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestRouter_FeedbackValidation(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	_, devCookie := registerUser(t, e, "devon")
	app := submitApp(t, e, devCookie, "Pixel Garden", "web", "")
	_, cookie := registerUser(t, e, "tess")
	path := fmt.Sprintf("/api/apps/%d", app.ID)

	expectStatus(t, e.doJSON(t, http.MethodPost, path+"/test", nil, cookie), http.StatusCreated)

	for _, rating := range []int{6, 0, -1} {
		t.Run(fmt.Sprintf("rating %d", rating), func(t *testing.T) {
			rec := e.doJSON(t, http.MethodPost, path+"/feedback",
				models.FeedbackRequest{Rating: rating, Content: "Long enough content to pass the length rule."}, cookie)
			expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
		})
	}

	rec := e.doJSON(t, http.MethodGet, "/api/user", nil, cookie)
	var me models.User
	decodeEnvelope(t, rec, &me)
	if me.Points != 0 {
		t.Errorf("Points = %d, want 0 after rejected feedback", me.Points)
	}

	rec = e.doJSON(t, http.MethodGet, path, nil, nil)
	expectStatus(t, rec, http.StatusOK)
	var detail models.AppDetail
	decodeEnvelope(t, rec, &detail)
	if len(detail.Feedback) != 0 {
		t.Errorf("feedback stored for rejected ratings: %+v", detail.Feedback)
	}

	rec = e.doJSON(t, http.MethodGet, "/api/my/testing", nil, cookie)
	var entries []models.TestingEntry
	decodeEnvelope(t, rec, &entries)
	if len(entries) != 1 || entries[0].Status != models.TesterStatusTesting {
		t.Errorf("my testing = %+v, want one entry still testing", entries)
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	e := newTestEnv(t, noRateLimit())

	tests := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/apps"},
		{http.MethodGet, "/api/my/apps"},
		{http.MethodGet, "/api/my/testing"},
		{http.MethodPost, "/api/apps/1/test"},
		{http.MethodPost, "/api/apps/1/feedback"},
		{http.MethodGet, "/api/user"},
		{http.MethodPatch, "/api/user"},
		{http.MethodPost, "/api/user/avatar"},
		{http.MethodGet, "/api/admin/users"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := e.doJSON(t, tt.method, tt.path, nil, nil)
			expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
		})
	}
}

func TestRouter_AdminUsers(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	ctx := context.Background()

	err := e.svc.SeedAdmin(ctx, config.SeedConfig{
		AdminUsername: "admin",
		AdminEmail:    "admin@betabuddy.com",
		AdminPassword: "adminpass",
	})
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}

	_, userCookie := registerUser(t, e, "tess")
	rec := e.doJSON(t, http.MethodGet, "/api/admin/users", nil, userCookie)
	expectErrorCode(t, rec, http.StatusForbidden, ErrCodeForbidden)

	rec = e.doJSON(t, http.MethodPost, "/api/login", models.LoginRequest{Username: "admin", Password: "adminpass"}, nil)
	expectStatus(t, rec, http.StatusOK)
	adminCookie := sessionCookie(t, rec)

	rec = e.doJSON(t, http.MethodGet, "/api/admin/users", nil, adminCookie)
	expectStatus(t, rec, http.StatusOK)
	var users []models.AdminUserView
	decodeEnvelope(t, rec, &users)
	if len(users) != 2 || users[0].Username != "admin" || !users[0].IsAdmin {
		t.Errorf("admin users = %+v", users)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("admin listing leaks password field")
	}
}

func TestRouter_AdminAudit(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	ctx := context.Background()

	if err := e.svc.SeedAdmin(ctx, config.SeedConfig{
		AdminUsername: "admin",
		AdminEmail:    "admin@betabuddy.com",
		AdminPassword: "adminpass",
	}); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}

	tess, userCookie := registerUser(t, e, "tess")
	rec := e.doJSON(t, http.MethodPost, "/api/login", models.LoginRequest{Username: "tess", Password: "not-her-password"}, nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = e.doJSON(t, http.MethodGet, "/api/admin/audit", nil, userCookie)
	expectErrorCode(t, rec, http.StatusForbidden, ErrCodeForbidden)

	rec = e.doJSON(t, http.MethodPost, "/api/login", models.LoginRequest{Username: "admin", Password: "adminpass"}, nil)
	expectStatus(t, rec, http.StatusOK)
	adminCookie := sessionCookie(t, rec)

	rec = e.doJSON(t, http.MethodGet, "/api/admin/audit", nil, adminCookie)
	expectStatus(t, rec, http.StatusOK)
	var all AuditLogResponse
	decodeEnvelope(t, rec, &all)
	// register, failed login, denied audit read, admin login
	if all.Total != 4 || len(all.Events) != 4 {
		t.Fatalf("audit total = %d, events = %d; want 4", all.Total, len(all.Events))
	}
	if all.Events[0].Type != audit.EventTypeLoginSuccess {
		t.Errorf("newest event = %q, want %q", all.Events[0].Type, audit.EventTypeLoginSuccess)
	}
	if strings.Contains(rec.Body.String(), "not-her-password") {
		t.Error("audit trail leaks a submitted password")
	}

	rec = e.doJSON(t, http.MethodGet, "/api/admin/audit?outcome=failure", nil, adminCookie)
	expectStatus(t, rec, http.StatusOK)
	var failures AuditLogResponse
	decodeEnvelope(t, rec, &failures)
	if failures.Total != 2 {
		t.Errorf("failure events = %d, want 2", failures.Total)
	}

	rec = e.doJSON(t, http.MethodGet, fmt.Sprintf("/api/admin/audit?type=authz.denied&userId=%d", tess.ID), nil, adminCookie)
	expectStatus(t, rec, http.StatusOK)
	var denied AuditLogResponse
	decodeEnvelope(t, rec, &denied)
	if denied.Total != 1 || denied.Events[0].Target == nil || denied.Events[0].Target.Type != authz.ObjectAudit {
		t.Errorf("denied events = %+v", denied.Events)
	}

	for _, query := range []string{"type=bogus", "outcome=maybe", "limit=0", "limit=5000", "offset=-1", "userId=abc", "since=yesterday"} {
		rec = e.doJSON(t, http.MethodGet, "/api/admin/audit?"+query, nil, adminCookie)
		expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
	}
}

func TestRouter_LoginLogout(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	registerUser(t, e, "Alice")

	rec := e.doJSON(t, http.MethodPost, "/api/login", models.LoginRequest{Username: "alice", Password: "wrong-pass"}, nil)
	apiErr := expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
	if apiErr.Message != "Invalid username or password" {
		t.Errorf("message = %q", apiErr.Message)
	}

	rec = e.doJSON(t, http.MethodPost, "/api/login", models.LoginRequest{Username: "alice", Password: "secret123"}, nil)
	expectStatus(t, rec, http.StatusOK)
	cookie := sessionCookie(t, rec)

	expectStatus(t, e.doJSON(t, http.MethodGet, "/api/user", nil, cookie), http.StatusOK)
	expectStatus(t, e.doJSON(t, http.MethodPost, "/api/logout", nil, cookie), http.StatusOK)
	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/user", nil, cookie), http.StatusUnauthorized, ErrCodeUnauthorized)
}

func TestRouter_RegisterErrors(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	registerUser(t, e, "alice")

	tests := []struct {
		name    string
		req     models.RegisterRequest
		status  int
		code    string
		message string
	}{
		{
			name:    "duplicate username any case",
			req:     models.RegisterRequest{Username: "ALICE", Email: "other@example.com", Password: "secret123"},
			status:  http.StatusBadRequest,
			code:    ErrCodeConflict,
			message: "Username already exists",
		},
		{
			name:    "duplicate email",
			req:     models.RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "secret123"},
			status:  http.StatusBadRequest,
			code:    ErrCodeConflict,
			message: "Email already exists",
		},
		{
			name:   "short password",
			req:    models.RegisterRequest{Username: "carol", Email: "carol@example.com", Password: "123"},
			status: http.StatusBadRequest,
			code:   ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.doJSON(t, http.MethodPost, "/api/register", tt.req, nil)
			apiErr := expectErrorCode(t, rec, tt.status, tt.code)
			if tt.message != "" && apiErr.Message != tt.message {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.message)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader("{not json"))
	expectErrorCode(t, e.do(t, req, nil), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestRouter_ListApps(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	_, cookie := registerUser(t, e, "devon")
	web := submitApp(t, e, cookie, "Web Thing", "web", "100")
	mobile1 := submitApp(t, e, cookie, "Phone One", "mobile", "300")
	mobile2 := submitApp(t, e, cookie, "Phone Two", "mobile", "60")

	list := func(query string) []models.AppWithDeveloper {
		t.Helper()
		rec := e.doJSON(t, http.MethodGet, "/api/apps"+query, nil, nil)
		expectStatus(t, rec, http.StatusOK)
		var apps []models.AppWithDeveloper
		decodeEnvelope(t, rec, &apps)
		return apps
	}

	all := list("")
	if len(all) != 3 || all[0].ID != mobile2.ID {
		t.Fatalf("unfiltered list = %d apps, first %d", len(all), all[0].ID)
	}
	if all[0].Developer == nil || all[0].Developer.Username != "devon" {
		t.Errorf("developer = %+v", all[0].Developer)
	}

	mobile := list("?type=mobile")
	if len(mobile) != 2 || mobile[0].ID != mobile2.ID || mobile[1].ID != mobile1.ID {
		t.Errorf("mobile list = %+v", mobile)
	}

	rich := list("?minReward=200")
	if len(rich) != 1 || rich[0].ID != mobile1.ID {
		t.Errorf("minReward list = %+v", rich)
	}

	if got := list("?limit=1"); len(got) != 1 {
		t.Errorf("limit=1 returned %d apps", len(got))
	}
	if got := list("?search=web"); len(got) != 1 || got[0].ID != web.ID {
		t.Errorf("search list = %+v", got)
	}

	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/apps?type=console", nil, nil), http.StatusBadRequest, ErrCodeValidation)
	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/apps?minReward=abc", nil, nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/apps?minReward=300&maxReward=100", nil, nil), http.StatusBadRequest, ErrCodeValidation)
}

func TestRouter_SubmitAppUploads(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	_, cookie := registerUser(t, e, "devon")

	t.Run("invalid file type", func(t *testing.T) {
		bad := filePart{field: "screenshots", name: "notes.txt", contentType: "text/plain", body: []byte("hello")}
		rec := e.do(t, multipartRequest(t, "/api/apps", appFields("Pixel Garden", "web", "100"), bad), cookie)
		apiErr := expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
		if apiErr.Message != upload.InvalidFileTypeMessage {
			t.Errorf("message = %q", apiErr.Message)
		}
	})

	t.Run("missing screenshot", func(t *testing.T) {
		rec := e.do(t, multipartRequest(t, "/api/apps", appFields("Pixel Garden", "web", "100")), cookie)
		apiErr := expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
		if apiErr.Message != "At least one screenshot is required" {
			t.Errorf("message = %q", apiErr.Message)
		}
	})

	t.Run("rejected submission removes files", func(t *testing.T) {
		rec := e.do(t, multipartRequest(t, "/api/apps", appFields("Pixel Garden", "web", "900"), screenshot()), cookie)
		expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
	})

	t.Run("explicit zero reward", func(t *testing.T) {
		rec := e.do(t, multipartRequest(t, "/api/apps", appFields("Pixel Garden", "web", "0"), screenshot()), cookie)
		expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := e.doJSON(t, http.MethodPost, "/api/apps", map[string]string{"title": "x"}, cookie)
		expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
	})

	if n := countUploads(t, e.uploadDir); n != 0 {
		t.Errorf("upload dir holds %d files after rejected submissions", n)
	}

	app := submitApp(t, e, cookie, "Pixel Garden", "web", "100")
	rec := e.do(t, httptest.NewRequest(http.MethodGet, app.Screenshots[0], nil), nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "\x89PNG fake" {
		t.Errorf("served body = %q", rec.Body.String())
	}

	rec = e.do(t, httptest.NewRequest(http.MethodGet, upload.URLPrefix, nil), nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestRouter_Profile(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	_, cookie := registerUser(t, e, "tess")

	rec := e.doJSON(t, http.MethodPatch, "/api/user", map[string]string{"bio": "QA lead", "specialization": "Mobile"}, cookie)
	expectStatus(t, rec, http.StatusOK)
	var user models.User
	decodeEnvelope(t, rec, &user)
	if user.Bio == nil || *user.Bio != "QA lead" || user.Specialization == nil || *user.Specialization != "Mobile" {
		t.Errorf("profile = %+v", user)
	}

	rec = e.doJSON(t, http.MethodPatch, "/api/user", map[string]string{"name": "T"}, cookie)
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidation)

	bad := filePart{field: "avatar", name: "a.zip", contentType: "application/zip", body: []byte("PK")}
	rec = e.do(t, multipartRequest(t, "/api/user/avatar", nil, bad), cookie)
	apiErr := expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeBadRequest)
	if apiErr.Message != upload.InvalidImageMessage {
		t.Errorf("message = %q", apiErr.Message)
	}

	avatar := filePart{field: "avatar", name: "me.jpg", contentType: "image/jpeg", body: []byte("jpeg")}
	rec = e.do(t, multipartRequest(t, "/api/user/avatar", nil, avatar), cookie)
	expectStatus(t, rec, http.StatusOK)
	decodeEnvelope(t, rec, &user)
	if user.Avatar == nil || !strings.HasPrefix(*user.Avatar, upload.URLPrefix+"avatar-") || !strings.HasSuffix(*user.Avatar, ".jpg") {
		t.Errorf("avatar = %v", user.Avatar)
	}
}

func TestRouter_TopTesters(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	for _, name := range []string{"ann", "ben", "cat", "dan", "eve"} {
		registerUser(t, e, name)
	}

	rec := e.doJSON(t, http.MethodGet, "/api/testers/top", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	var top []map[string]interface{}
	decodeEnvelope(t, rec, &top)
	if len(top) != marketplace.DefaultTopTesters {
		t.Fatalf("default top testers = %d, want %d", len(top), marketplace.DefaultTopTesters)
	}
	if _, ok := top[0]["email"]; ok {
		t.Error("top testers expose email")
	}
	if top[0]["username"] != "ann" {
		t.Errorf("first tester = %v, want ann (earliest on equal points)", top[0]["username"])
	}

	rec = e.doJSON(t, http.MethodGet, "/api/testers/top?limit=2", nil, nil)
	decodeEnvelope(t, rec, &top)
	if len(top) != 2 {
		t.Errorf("limit=2 returned %d", len(top))
	}

	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/testers/top?limit=x", nil, nil), http.StatusBadRequest, ErrCodeBadRequest)
}

func TestRouter_BadRequests(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	_, cookie := registerUser(t, e, "tess")

	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/apps/abc", nil, nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/apps/0", nil, nil), http.StatusBadRequest, ErrCodeBadRequest)
	expectErrorCode(t, e.doJSON(t, http.MethodPost, "/api/apps/abc/test", nil, cookie), http.StatusBadRequest, ErrCodeBadRequest)
	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/apps/999", nil, nil), http.StatusNotFound, ErrCodeNotFound)
	expectErrorCode(t, e.doJSON(t, http.MethodPost, "/api/apps/999/test", nil, cookie), http.StatusNotFound, ErrCodeNotFound)
	expectErrorCode(t, e.doJSON(t, http.MethodGet, "/api/nope", nil, nil), http.StatusNotFound, ErrCodeNotFound)
	expectErrorCode(t, e.doJSON(t, http.MethodDelete, "/api/user", nil, cookie), http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed)
}

func TestRouter_AuthRateLimit(t *testing.T) {
	e := newTestEnv(t, config.SecurityConfig{RateLimitReqs: 1000, AuthRateLimitReqs: 2})

	login := models.LoginRequest{Username: "nobody", Password: "whatever"}
	for i := 0; i < 2; i++ {
		expectStatus(t, e.doJSON(t, http.MethodPost, "/api/login", login, nil), http.StatusUnauthorized)
	}
	rec := e.doJSON(t, http.MethodPost, "/api/login", login, nil)
	expectErrorCode(t, rec, http.StatusTooManyRequests, ErrCodeRateLimited)

	// Other endpoints keep the general budget.
	expectStatus(t, e.doJSON(t, http.MethodGet, "/api/apps", nil, nil), http.StatusOK)
}

func TestRouter_Health(t *testing.T) {
	e := newTestEnv(t, noRateLimit())
	registerUser(t, e, "tess")

	for _, path := range []string{"/api/health", "/api/health/live", "/api/health/ready"} {
		t.Run(path, func(t *testing.T) {
			expectStatus(t, e.doJSON(t, http.MethodGet, path, nil, nil), http.StatusOK)
		})
	}

	rec := e.doJSON(t, http.MethodGet, "/api/health", nil, nil)
	var status models.HealthStatus
	decodeEnvelope(t, rec, &status)
	if status.Status != "healthy" || status.Backend != "memory" || status.Sessions != 1 {
		t.Errorf("health = %+v", status)
	}
}

func TestRouter_MetricsAndHeaders(t *testing.T) {
	e := newTestEnv(t, noRateLimit())

	rec := e.doJSON(t, http.MethodGet, "/api/apps", nil, nil)
	if got := rec.Header().Get("X-Request-ID"); got == "" {
		t.Error("missing X-Request-ID header")
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}

	rec = e.doJSON(t, http.MethodGet, "/metrics", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("metrics output lacks api_requests_total")
	}
}
