// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package logging provides the zerolog-based structured logger used across BetaBuddy.
//
// A single global logger is configured from main via Init. Handlers and services log
// through Ctx(ctx), which adds the request_id, correlation_id and user_id placed in the
// request context by the API middleware:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("Starting BetaBuddy")
//	logging.Ctx(ctx).Warn().Int64("app_id", id).Msg("App not found")
//
// Always finish an event chain with Msg or Send, otherwise nothing is written.
//
// SecurityLogger records account events (register, login, logout) with usernames,
// emails and session IDs masked. SlogHandler bridges zerolog to log/slog for the
// suture supervisor's event hook.
package logging
