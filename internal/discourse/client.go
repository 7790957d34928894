// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package discourse implements the client for the Discourse API, the
// synchronization target. All requests authenticate with an admin API key,
// are paced by a client-side rate limiter, and retry HTTP 429 responses
// with exponential backoff honoring Retry-After.
package discourse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/aulasync/aulasync/internal/config"
	"github.com/aulasync/aulasync/internal/metrics"
)

// maxErrorBodySize bounds how much of an error response body is captured
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// ErrForbidden marks an HTTP 403 response. The driver logs these
// distinctly from generic write failures but handles them identically.
var ErrForbidden = errors.New("discourse: forbidden")

// ErrNotFound marks an HTTP 404 response. For user lookups this means
// "absent", not an error.
var ErrNotFound = errors.New("discourse: not found")

// Client talks to the Discourse API.
type Client struct {
	baseURL        string
	apiKey         string
	apiUsername    string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a Discourse client from configuration.
func NewClient(cfg *config.DiscourseConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:        cfg.URL,
		apiKey:         cfg.APIKey,
		apiUsername:    cfg.APIUsername,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        limiter,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// doRequest performs one authenticated request with rate limiting and 429
// backoff. The returned response body is open; callers must close it.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	reqURL := c.baseURL + path

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var reader io.Reader = http.NoBody
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Api-Key", c.apiKey)
		req.Header.Set("Api-Username", c.apiUsername)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Rate limited: close body and retry with backoff.
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// call performs a request, validates the status code, and decodes the JSON
// response into result when result is non-nil. The operation name feeds
// metrics and error messages.
func (c *Client) call(ctx context.Context, operation, method, path string, payload, result any) error {
	start := time.Now()
	err := c.doCall(ctx, method, path, payload, result)
	metrics.APIRequestDuration.WithLabelValues("discourse", operation).
		Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestErrors.WithLabelValues("discourse", operation).Inc()
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func (c *Client) doCall(ctx context.Context, method, path string, payload, result any) error {
	resp, err := c.doRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusForbidden:
		body := readBodyForError(resp.Body)
		return fmt.Errorf("%w: %s", ErrForbidden, string(body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body := readBodyForError(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readBodyForError reads a bounded amount of the response body for error
// reporting, so a failing write never floods the log output.
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
