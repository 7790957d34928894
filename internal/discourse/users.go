// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package discourse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// listPageSize is Discourse's admin listing page size.
const listPageSize = 100

// FetchUser retrieves one user's full profile. Returns (nil, nil) when the
// user does not exist: absence is a regular outcome, not an error.
func (c *Client) FetchUser(ctx context.Context, username string) (*User, error) {
	var wrapper userResponse
	err := c.call(ctx, "get_user", http.MethodGet,
		fmt.Sprintf("/u/%s.json", url.PathEscape(username)), nil, &wrapper)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wrapper.User, nil
}

// ListActiveUsers retrieves the admin listing of active users, following
// pagination until a short page. show_emails exposes addresses to the
// admin API key so the cache can evaluate the email field.
func (c *Client) ListActiveUsers(ctx context.Context) ([]UserSummary, error) {
	var all []UserSummary
	for page := 1; ; page++ {
		var users []UserSummary
		path := fmt.Sprintf("/admin/users/list/active.json?show_emails=true&page=%d", page)
		if err := c.call(ctx, "list_active_users", http.MethodGet, path, nil, &users); err != nil {
			return nil, err
		}
		all = append(all, users...)
		if len(users) < listPageSize {
			return all, nil
		}
	}
}

// CreateUser creates a minimal Discourse account. The account starts
// inactive and unconfirmed; activation happens out of band and is never
// awaited here.
func (c *Client) CreateUser(ctx context.Context, user NewUser) error {
	var result createResponse
	if err := c.call(ctx, "create_user", http.MethodPost, "/users.json", user, &result); err != nil {
		return err
	}
	// Discourse reports creation failures in-band with HTTP 200.
	if !result.Success {
		return fmt.Errorf("create_user: rejected: %s", result.Message)
	}
	return nil
}

// UpdateProfile writes profile fields (name, location) for one user.
// Fields are sent directly in the body, not wrapped in a "user" object;
// Discourse applies them field by field.
func (c *Client) UpdateProfile(ctx context.Context, username string, fields map[string]string) error {
	return c.call(ctx, "update_profile", http.MethodPut,
		fmt.Sprintf("/u/%s.json", url.PathEscape(username)), fields, nil)
}

// UpdateBio writes the biography through its dedicated preferences
// endpoint; the generic profile update does not reliably persist bio_raw.
func (c *Client) UpdateBio(ctx context.Context, username, bio string) error {
	return c.call(ctx, "update_bio", http.MethodPut,
		fmt.Sprintf("/u/%s/preferences/about", url.PathEscape(username)),
		map[string]string{"bio_raw": bio}, nil)
}

// UpdateEmail writes the email address through its confirmation-aware
// endpoint. Discourse sends the user a confirmation mail; the new address
// is not live until confirmed, which this client never waits for.
func (c *Client) UpdateEmail(ctx context.Context, username, email string) error {
	return c.call(ctx, "update_email", http.MethodPut,
		fmt.Sprintf("/u/%s/preferences/email", url.PathEscape(username)),
		map[string]string{"email": email}, nil)
}

// Verify re-reads the user and compares each expected field against the
// live profile. The report maps field name to match/mismatch; a missing
// user yields an error.
func (c *Client) Verify(ctx context.Context, username string, expected map[string]string) (map[string]bool, error) {
	user, err := c.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("verify: user %s not found", username)
	}

	actual := map[string]string{
		"name":     user.Name,
		"location": user.Location,
		"bio_raw":  user.BioRaw,
		"email":    user.Email,
	}

	report := make(map[string]bool, len(expected))
	for field, want := range expected {
		report[field] = actual[field] == want
	}
	return report, nil
}
