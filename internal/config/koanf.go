// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aulasync/config.yaml",
	"/etc/aulasync/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all sensible default values.
// These are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Moodle: MoodleConfig{
			Endpoint: "",
			Token:    "",
			Timeout:  30 * time.Second,
		},
		Discourse: DiscourseConfig{
			URL:               "",
			APIKey:            "",
			APIUsername:       "system",
			Timeout:           30 * time.Second,
			MaxRetries:        5,
			RetryBaseDelay:    time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Sync: SyncConfig{
			BatchSize:        10,
			ExclusionPath:    "excluded_users.txt",
			ProgressPath:     "",
			SnapshotEvery:    50,
			SnapshotInterval: 30 * time.Second,
			Verify:           true,
			CreateMissing:    false,
		},
		Status: StatusConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9190",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
func Load(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadUnvalidated builds the configuration without full validation, for
// commands that only talk to one of the two systems and validate that
// side themselves.
func LoadUnvalidated(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exist.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names to koanf config paths.
// Only mapped variables are consumed; unrelated environment noise is
// ignored rather than unmarshaled into the config tree.
var envMappings = map[string]string{
	"moodle_endpoint": "moodle.endpoint",
	"moodle_token":    "moodle.token",
	"moodle_timeout":  "moodle.timeout",

	"discourse_url":                 "discourse.url",
	"discourse_api_key":             "discourse.api_key",
	"discourse_api_username":        "discourse.api_username",
	"discourse_timeout":             "discourse.timeout",
	"discourse_max_retries":         "discourse.max_retries",
	"discourse_retry_base_delay":    "discourse.retry_base_delay",
	"discourse_requests_per_second": "discourse.requests_per_second",
	"discourse_burst":               "discourse.burst",

	"sync_batch_size":        "sync.batch_size",
	"sync_exclusion_path":    "sync.exclusion_path",
	"sync_progress_path":     "sync.progress_path",
	"sync_snapshot_every":    "sync.snapshot_every",
	"sync_snapshot_interval": "sync.snapshot_interval",
	"sync_verify":            "sync.verify",
	"sync_create_missing":    "sync.create_missing",

	"status_enabled": "status.enabled",
	"status_addr":    "status.addr",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - MOODLE_TOKEN -> moodle.token
//   - DISCOURSE_API_KEY -> discourse.api_key
//   - SYNC_BATCH_SIZE -> sync.batch_size
//
// Returning an empty string drops the variable.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
