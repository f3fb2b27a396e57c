// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

/*
Package models defines the data structures shared by storage, services and the API.

Key Components:

  - User: accounts; developers and testers are the same type
  - App: submissions open for testing, with StringList screenshots
  - AppTester: the per-(user, app) testing record (testing -> completed)
  - Feedback: a tester's rating and review
  - APIResponse: the standard JSON envelope
  - Request types carrying validator tags

Struct tags:
  - json: camelCase wire names
  - db: snake_case column names used by sqlx
  - validate: go-playground/validator rules (see internal/validation)
*/
package models
