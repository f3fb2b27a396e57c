// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package marketplace implements the BetaBuddy use cases on top of
// storage.Storage: account registration and login, app submission and
// discovery, the tester lifecycle (start testing, submit feedback, award
// points), profiles, the leaderboard and the admin listing.
//
// Requests are validated before any write. Lifecycle atomicity is the
// storage layer's job; the service only orchestrates and enriches results
// with user summaries.
package marketplace
