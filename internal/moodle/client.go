// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package moodle implements the read-only client for the Moodle web service
// REST API, the source directory of the synchronization. A failed listing is
// a hard failure for the whole run, so errors here always propagate.
package moodle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/aulasync/aulasync/internal/config"
	"github.com/aulasync/aulasync/internal/metrics"
)

// maxErrorBodySize bounds how much of an error response body is captured
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// Client talks to the Moodle web service REST endpoint.
type Client struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewClient creates a Moodle client from configuration.
func NewClient(cfg *config.MoodleConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchUsers retrieves users via core_user_get_users. When filterUsername is
// non-empty, only the matching user is returned (exact match on the raw
// Moodle username). When limit is positive, at most limit users are
// returned; zero means no bound.
//
// Any transport, HTTP, or Moodle-level failure is returned as an error:
// the caller treats a failed source listing as fatal for the run.
func (c *Client) FetchUsers(ctx context.Context, filterUsername string, limit int) ([]User, error) {
	params := url.Values{}
	params.Set("wstoken", c.token)
	params.Set("wsfunction", "core_user_get_users")
	params.Set("moodlewsrestformat", "json")
	// Match every user with an email address; Moodle has no "list all"
	// criterion, and every account carries an email.
	params.Set("criteria[0][key]", "email")
	params.Set("criteria[0][value]", "%")

	reqURL := fmt.Sprintf("%s?%s", c.endpoint, params.Encode())

	start := time.Now()
	users, err := c.fetchUserList(ctx, reqURL)
	metrics.APIRequestDuration.WithLabelValues("moodle", "core_user_get_users").
		Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestErrors.WithLabelValues("moodle", "core_user_get_users").Inc()
		return nil, err
	}

	if filterUsername != "" {
		filtered := users[:0]
		for _, u := range users {
			if u.Username == filterUsername {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}

	return users, nil
}

// fetchUserList performs the HTTP round trip and decodes the user listing.
func (c *Client) fetchUserList(ctx context.Context, reqURL string) ([]User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moodle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("moodle request failed with status %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read moodle response: %w", err)
	}

	// Moodle reports web service failures with HTTP 200 and an exception
	// object in place of the regular payload.
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Exception != "" {
		return nil, fmt.Errorf("moodle web service error %s: %s", apiErr.ErrorCode, apiErr.Message)
	}

	var wrapper usersResponse
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode moodle response: %w", err)
	}

	return wrapper.Users, nil
}

// readBodyForError reads a bounded amount of the response body for error
// reporting. Truncation is flagged so operators know detail was dropped.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
