// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package config holds all application configuration, loaded via Koanf v2
// from three layered sources (highest priority wins):
//
//  1. Environment variables (MOODLE_TOKEN, DISCOURSE_API_KEY, ...)
//  2. Optional YAML config file (config.yaml)
//  3. Built-in defaults
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds everything the aulasync binary needs to run.
type Config struct {
	Moodle    MoodleConfig    `koanf:"moodle"`
	Discourse DiscourseConfig `koanf:"discourse"`
	Sync      SyncConfig      `koanf:"sync"`
	Status    StatusConfig    `koanf:"status"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// MoodleConfig holds the connection settings for the Moodle web service API,
// the source of record for user profile data.
type MoodleConfig struct {
	// Endpoint is the full URL of the Moodle REST endpoint
	// (e.g. https://campus.example.org/webservice/rest/server.php).
	Endpoint string `koanf:"endpoint"`

	// Token is the Moodle web service token.
	Token string `koanf:"token"`

	// Timeout bounds a single HTTP request to Moodle.
	Timeout time.Duration `koanf:"timeout"`
}

// DiscourseConfig holds the connection settings for the Discourse API,
// the synchronization target.
type DiscourseConfig struct {
	// URL is the base URL of the Discourse instance.
	URL string `koanf:"url"`

	// APIKey is an admin-scoped Discourse API key.
	APIKey string `koanf:"api_key"`

	// APIUsername is the admin username the API key was generated for.
	APIUsername string `koanf:"api_username"`

	// Timeout bounds a single HTTP request to Discourse.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries is the number of retries on HTTP 429 responses.
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseDelay is the base delay for exponential backoff on 429s.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RequestsPerSecond paces outgoing requests to respect Discourse
	// rate limits. Zero disables client-side pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// Burst is the rate limiter burst size.
	Burst int `koanf:"burst"`
}

// SyncConfig holds the batch driver settings.
type SyncConfig struct {
	// BatchSize bounds how many source users one invocation processes
	// when no single-user filter is given.
	BatchSize int `koanf:"batch_size"`

	// ExclusionPath is the line-oriented exclusion list file. Created
	// with defaults if missing.
	ExclusionPath string `koanf:"exclusion_path"`

	// ProgressPath is the directory for the BadgerDB cursor store that
	// makes batch runs resumable. Empty means in-memory only (no resume
	// across invocations).
	ProgressPath string `koanf:"progress_path"`

	// SnapshotEvery emits a progress snapshot after this many users.
	SnapshotEvery int `koanf:"snapshot_every"`

	// SnapshotInterval emits a progress snapshot after this much wall
	// clock time, whichever of the two triggers first.
	SnapshotInterval time.Duration `koanf:"snapshot_interval"`

	// Verify re-reads a user after applying profile writes and reports
	// per-field mismatches.
	Verify bool `koanf:"verify"`

	// CreateMissing creates Discourse accounts for source users absent
	// from the target.
	CreateMissing bool `koanf:"create_missing"`
}

// StatusConfig holds the optional status HTTP server settings. When enabled,
// the server exposes live sync progress and Prometheus metrics during a run.
type StatusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that required fields are present and well-formed.
// Called by Load(); commands that only talk to one side (e.g. report)
// use the side-specific validators instead.
func (c *Config) Validate() error {
	if err := c.Moodle.Validate(); err != nil {
		return err
	}
	if err := c.Discourse.Validate(); err != nil {
		return err
	}
	if c.Sync.BatchSize < 0 {
		return fmt.Errorf("sync.batch_size must not be negative, got %d", c.Sync.BatchSize)
	}
	if c.Sync.SnapshotEvery <= 0 {
		return fmt.Errorf("sync.snapshot_every must be positive, got %d", c.Sync.SnapshotEvery)
	}
	if c.Status.Enabled && c.Status.Addr == "" {
		return fmt.Errorf("status.addr is required when status.enabled is true")
	}
	return nil
}

// Validate checks the Moodle connection settings.
func (m *MoodleConfig) Validate() error {
	if m.Endpoint == "" {
		return fmt.Errorf("moodle.endpoint is required (MOODLE_ENDPOINT)")
	}
	if _, err := url.ParseRequestURI(m.Endpoint); err != nil {
		return fmt.Errorf("moodle.endpoint is not a valid URL: %w", err)
	}
	if m.Token == "" {
		return fmt.Errorf("moodle.token is required (MOODLE_TOKEN)")
	}
	return nil
}

// Validate checks the Discourse connection settings.
func (d *DiscourseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("discourse.url is required (DISCOURSE_URL)")
	}
	if _, err := url.ParseRequestURI(d.URL); err != nil {
		return fmt.Errorf("discourse.url is not a valid URL: %w", err)
	}
	if d.APIKey == "" {
		return fmt.Errorf("discourse.api_key is required (DISCOURSE_API_KEY)")
	}
	if d.APIUsername == "" {
		return fmt.Errorf("discourse.api_username is required (DISCOURSE_API_USERNAME)")
	}
	if d.MaxRetries < 0 {
		return fmt.Errorf("discourse.max_retries must not be negative, got %d", d.MaxRetries)
	}
	return nil
}
