// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package moodle

// User is one user record as returned by core_user_get_users. It is an
// immutable snapshot for the duration of one synchronization pass.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Description string `json:"description"`
}

// usersResponse is the wrapper object of core_user_get_users.
type usersResponse struct {
	Users    []User    `json:"users"`
	Warnings []warning `json:"warnings"`
}

// warning is a non-fatal notice attached to a Moodle web service response.
type warning struct {
	Item        string `json:"item"`
	WarningCode string `json:"warningcode"`
	Message     string `json:"message"`
}

// apiError is the error object Moodle returns with HTTP 200 when a web
// service call fails (invalid token, unknown function, ...).
type apiError struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}
