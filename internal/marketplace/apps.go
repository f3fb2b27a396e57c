// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package marketplace

import (
	"context"
	"strings"

	"github.com/tomtom215/betabuddy/internal/logging"
	"github.com/tomtom215/betabuddy/internal/metrics"
	"github.com/tomtom215/betabuddy/internal/models"
	"github.com/tomtom215/betabuddy/internal/storage"
)

// ListApps returns the apps matching q, each with its developer.
func (s *Service) ListApps(ctx context.Context, q storage.AppQuery) ([]models.AppWithDeveloper, error) {
	if err := validate(&q); err != nil {
		return nil, err
	}
	if q.MinReward != nil && q.MaxReward != nil && *q.MinReward > *q.MaxReward {
		return nil, invalid("minReward", "lte", "Minimum reward must not exceed maximum reward")
	}

	apps, err := s.store.ListApps(ctx, q.Type)
	if err != nil {
		return nil, err
	}
	return s.withDevelopers(ctx, storage.ApplyQuery(apps, q))
}

// MyApps returns the apps userID submitted, newest first.
func (s *Service) MyApps(ctx context.Context, userID int64) ([]models.App, error) {
	return s.store.ListAppsByUser(ctx, userID)
}

// GetAppDetail returns an app with its developer, feedback and mean rating.
func (s *Service) GetAppDetail(ctx context.Context, id int64) (*models.AppDetail, error) {
	app, err := s.store.GetApp(ctx, id)
	if err != nil {
		return nil, err
	}
	feedback, err := s.store.ListFeedbackByApp(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(feedback)+1)
	ids = append(ids, app.UserID)
	for _, f := range feedback {
		ids = append(ids, f.UserID)
	}
	users, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedbackWithUser, len(feedback))
	for i, f := range feedback {
		items[i] = models.FeedbackWithUser{Feedback: f, User: users[f.UserID]}
	}
	return &models.AppDetail{
		App:           *app,
		Developer:     users[app.UserID],
		Feedback:      items,
		AverageRating: models.AverageRating(feedback),
	}, nil
}

// SubmitApp validates req and stores a new app owned by userID. screenshots
// are the URLs of already-stored uploads; at least one is required.
func (s *Service) SubmitApp(ctx context.Context, userID int64, req models.SubmitAppRequest, screenshots []string) (*models.App, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.ShortDescription = strings.TrimSpace(req.ShortDescription)
	req.DownloadURL = strings.TrimSpace(req.DownloadURL)
	if req.RewardPoints == nil {
		reward := models.DefaultRewardPoints
		req.RewardPoints = &reward
	}

	if err := validate(&req); err != nil {
		return nil, err
	}
	if len(screenshots) == 0 {
		return nil, invalid("screenshots", "required", "At least one screenshot is required")
	}

	app, err := s.store.CreateApp(ctx, models.NewApp{
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: models.StringPtr(req.ShortDescription),
		Type:             req.Type,
		DownloadURL:      req.DownloadURL,
		Screenshots:      screenshots,
		RewardPoints:     *req.RewardPoints,
		UserID:           userID,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordAppSubmitted(app.Type)
	logging.CtxInfo(ctx).Int64("app_id", app.ID).Str("type", app.Type).Msg("App submitted")
	return app, nil
}

// StartTesting enrolls userID as a tester of appID.
func (s *Service) StartTesting(ctx context.Context, userID, appID int64) (*models.AppTester, error) {
	t, err := s.store.StartTesting(ctx, userID, appID)
	if err != nil {
		return nil, err
	}
	metrics.RecordTesterStarted()
	logging.CtxInfo(ctx).Int64("app_id", appID).Msg("Tester enrolled")
	return t, nil
}

// MyTesting returns the user's tester records, newest first, with the app
// and its developer.
func (s *Service) MyTesting(ctx context.Context, userID int64) ([]models.TestingEntry, error) {
	testers, err := s.store.ListAppTestersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	apps := make([]models.App, 0, len(testers))
	for _, t := range testers {
		app, err := s.store.GetApp(ctx, t.AppID)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	withDev, err := s.withDevelopers(ctx, apps)
	if err != nil {
		return nil, err
	}

	out := make([]models.TestingEntry, len(testers))
	for i, t := range testers {
		app := withDev[i]
		out[i] = models.TestingEntry{AppTester: t, App: &app}
	}
	return out, nil
}

// SubmitFeedback records a rating for an app the user is testing and
// credits its reward points.
func (s *Service) SubmitFeedback(ctx context.Context, userID, appID int64, req models.FeedbackRequest) (*models.Feedback, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	fb, err := s.store.SubmitFeedback(ctx, models.NewFeedback{
		UserID:      userID,
		AppID:       appID,
		Rating:      req.Rating,
		Content:     req.Content,
		Bugs:        models.StringPtr(strings.TrimSpace(req.Bugs)),
		Suggestions: models.StringPtr(strings.TrimSpace(req.Suggestions)),
	})
	if err != nil {
		return nil, err
	}

	points := 0
	if app, err := s.store.GetApp(ctx, appID); err == nil {
		points = app.RewardPoints
	}
	metrics.RecordFeedback(points)
	logging.CtxInfo(ctx).Int64("app_id", appID).Int("rating", fb.Rating).Int("points", points).Msg("Feedback submitted")
	return fb, nil
}

func (s *Service) withDevelopers(ctx context.Context, apps []models.App) ([]models.AppWithDeveloper, error) {
	ids := make([]int64, len(apps))
	for i := range apps {
		ids[i] = apps[i].UserID
	}
	users, err := s.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.AppWithDeveloper, len(apps))
	for i := range apps {
		out[i] = models.AppWithDeveloper{App: apps[i], Developer: users[apps[i].UserID]}
	}
	return out, nil
}
