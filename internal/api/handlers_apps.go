// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/betabuddy/internal/audit"
	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/marketplace"
	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
	"github.com/tomtom215/betabuddy/internal/upload"
)

// parseAppQuery reads the /api/apps query string. Range checks belong to
// the service; this only rejects values that are not numbers.
func parseAppQuery(r *http.Request) (storage.AppQuery, string) {
	q := r.URL.Query()
	query := storage.AppQuery{
		Type:    strings.ToLower(strings.TrimSpace(q.Get("type"))),
		Search:  strings.TrimSpace(q.Get("search")),
		Popular: queryBool(r, "popular"),
		Sort:    strings.ToLower(strings.TrimSpace(q.Get("sort"))),
	}

	limit, err := formInt(q.Get("limit"))
	if err != nil || limit < 0 {
		return query, "limit must be a non-negative integer"
	}
	query.Limit = limit

	if query.MinReward, err = queryIntPtr(r, "minReward"); err != nil {
		return query, "minReward must be an integer"
	}
	if query.MaxReward, err = queryIntPtr(r, "maxReward"); err != nil {
		return query, "maxReward must be an integer"
	}
	return query, ""
}

// ListApps handles GET /api/apps.
func (h *Handler) ListApps(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query, problem := parseAppQuery(r)
	if problem != "" {
		rw.BadRequest(problem)
		return
	}

	apps, err := h.svc.ListApps(r.Context(), query)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(apps)
}

// GetApp handles GET /api/apps/{id}.
func (h *Handler) GetApp(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := pathID(r, "id")
	if err != nil {
		rw.BadRequest("Invalid app ID")
		return
	}

	detail, err := h.svc.GetAppDetail(r.Context(), id)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(detail)
}

// MyApps handles GET /api/my/apps.
func (h *Handler) MyApps(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	apps, err := h.svc.MyApps(r.Context(), userID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(apps)
}

// SubmitApp handles the multipart POST /api/apps. Screenshots are stored
// first and removed again if the submission is rejected.
func (h *Handler) SubmitApp(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	if err := h.uploads.ParseForm(w, r); err != nil {
		rw.ServiceError(err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	reward, err := formIntPtr(r.FormValue("rewardPoints"))
	if err != nil {
		rw.Error(http.StatusBadRequest, ErrCodeValidation, "Reward points must be a number", nil)
		return
	}
	req := models.SubmitAppRequest{
		Title:            r.FormValue("title"),
		ShortDescription: r.FormValue("shortDescription"),
		Description:      r.FormValue("description"),
		Type:             strings.ToLower(strings.TrimSpace(r.FormValue("type"))),
		DownloadURL:      r.FormValue("downloadUrl"),
		RewardPoints:     reward,
	}

	saved, err := h.uploads.SaveAll("screenshots", r.MultipartForm.File["screenshots"], upload.KindAny)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	urls := make([]string, len(saved))
	for i, f := range saved {
		urls[i] = f.URL
	}

	app, err := h.svc.SubmitApp(r.Context(), userID, req, urls)
	if err != nil {
		h.uploads.Remove(saved)
		rw.ServiceError(err)
		return
	}
	h.recordAudit(r, audit.Event{
		Type:     audit.EventTypeAppSubmitted,
		Target:   audit.Ref("app", app.ID),
		Metadata: map[string]string{"rewardPoints": strconv.Itoa(app.RewardPoints)},
	})
	rw.Created(app)
}

// StartTesting handles POST /api/apps/{id}/test.
func (h *Handler) StartTesting(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	appID, err := pathID(r, "id")
	if err != nil {
		rw.BadRequest("Invalid app ID")
		return
	}

	tester, err := h.svc.StartTesting(r.Context(), userID, appID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	h.recordAudit(r, audit.Event{
		Type:   audit.EventTypeTestingStarted,
		Target: audit.Ref("app", appID),
	})
	rw.Created(tester)
}

// MyTesting handles GET /api/my/testing.
func (h *Handler) MyTesting(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	entries, err := h.svc.MyTesting(r.Context(), userID)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(entries)
}

// SubmitFeedback handles POST /api/apps/{id}/feedback.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	appID, err := pathID(r, "id")
	if err != nil {
		rw.BadRequest("Invalid app ID")
		return
	}

	var req models.FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.writeDecodeError(err)
		return
	}

	fb, err := h.svc.SubmitFeedback(r.Context(), userID, appID, req)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	h.recordAudit(r, audit.Event{
		Type:     audit.EventTypeFeedbackSubmitted,
		Target:   audit.Ref("app", appID),
		Metadata: map[string]string{"feedbackId": strconv.FormatInt(fb.ID, 10), "rating": strconv.Itoa(fb.Rating)},
	})
	rw.Created(fb)
}

// TopTesters handles GET /api/testers/top.
func (h *Handler) TopTesters(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := formInt(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		rw.BadRequest("limit must be a non-negative integer")
		return
	}
	if limit == 0 {
		limit = marketplace.DefaultTopTesters
	}

	testers, err := h.svc.TopTesters(r.Context(), limit)
	if err != nil {
		rw.ServiceError(err)
		return
	}
	rw.Success(testers)
}

// UploadAvatar handles the multipart POST /api/user/avatar.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	if err := h.uploads.ParseForm(w, r); err != nil {
		rw.ServiceError(err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	headers := r.MultipartForm.File["avatar"]
	switch {
	case len(headers) == 0:
		rw.Error(http.StatusBadRequest, ErrCodeValidation, "An avatar image is required", nil)
		return
	case len(headers) > 1:
		rw.BadRequest("Only one avatar image may be uploaded")
		return
	}

	saved, err := h.uploads.SaveAll("avatar", headers, upload.KindImage)
	if err != nil {
		rw.ServiceError(err)
		return
	}

	user, err := h.svc.SetAvatar(r.Context(), userID, saved[0].URL)
	if err != nil {
		h.uploads.Remove(saved)
		rw.ServiceError(err)
		return
	}
	logging.CtxInfo(r.Context()).Str("file", saved[0].Name).Msg("Avatar updated")
	h.recordAudit(r, audit.Event{
		Type:   audit.EventTypeAvatarUpdated,
		Target: audit.Ref("user", user.ID),
	})
	rw.Success(user)
}
