// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package discourse

// User is the full profile of one Discourse user as returned by
// /u/{username}.json. Owned by Discourse; Aulasync only reads it and
// proposes field writes.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Location string `json:"location"`
	BioRaw   string `json:"bio_raw"`
	Email    string `json:"email"`
	Active   bool   `json:"active"`
}

// userResponse wraps the user object in /u/{username}.json.
type userResponse struct {
	User User `json:"user"`
}

// UserSummary is one row of the admin active-users listing. The listing
// omits location and biography; those require a per-user detail fetch.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Active   bool   `json:"active"`
}

// NewUser is the minimal record needed to create a Discourse account.
// Created accounts start inactive and unconfirmed; activation happens
// out of band.
type NewUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Active   bool   `json:"active"`
}

// createResponse is Discourse's answer to POST /users.json. Success is
// reported in-band, not only via HTTP status.
type createResponse struct {
	Success bool   `json:"success"`
	Active  bool   `json:"active"`
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}
