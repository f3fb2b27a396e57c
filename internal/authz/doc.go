// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package authz maps session roles to route permissions with a casbin RBAC
// model. Roles form a chain: admin inherits user, which inherits anonymous.
// The model and default policy are embedded; a CSV file may replace the
// policy at startup.
package authz
