// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

/*
Package auth provides password hashing and cookie sessions.

Passwords are stored as scrypt keys in the form hex(key).hex(salt) and
verified in constant time.

Sessions are opaque 256-bit random IDs carried in an HttpOnly cookie
(betabuddy.sid by default). Three SessionStore backends exist:

  - memory: process-local map, lost on restart
  - badger: embedded BadgerDB, survives restarts of a single instance
  - redis: shared between instances; every command passes through a
    gobreaker circuit breaker named "redis-sessions"

SessionManager.Authenticate resolves the cookie on every request and
places the *Session in the request context. Route access is decided
later by internal/authz, which answers anonymous callers on protected
routes with the 401 envelope from WriteUnauthorized. Login always issues a fresh session ID and
deletes any session the request arrived with.
*/
package auth
