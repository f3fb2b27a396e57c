// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

package models

// Role constants. They match the casbin policy in internal/authz.
const (
	// RoleAnonymous is assigned to requests without a session.
	RoleAnonymous = "anonymous"

	// RoleUser is held by every signed-in account.
	RoleUser = "user"

	// RoleAdmin is held by accounts with IsAdmin set and inherits user.
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role names.
var ValidRoles = []string{RoleAnonymous, RoleUser, RoleAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFor derives the role set of an account. A nil user is anonymous.
func RolesFor(u *User) []string {
	if u == nil {
		return []string{RoleAnonymous}
	}
	if u.IsAdmin {
		return []string{RoleUser, RoleAdmin}
	}
	return []string{RoleUser}
}
