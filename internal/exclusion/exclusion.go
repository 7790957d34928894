// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package exclusion loads the list of usernames that must never be created
// or modified on Discourse. The list lives in a line-oriented text file:
// one username per line, blank lines and #-comments ignored, matching is
// case-insensitive against the raw Moodle username.
package exclusion

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/aulasync/aulasync/internal/logging"
)

// defaultEntries are written to a freshly created exclusion file.
// These are Discourse's reserved system accounts.
var defaultEntries = []string{"admin", "system", "discobot"}

const fileHeader = `# Aulasync exclusion list
# One username per line. Listed users are never created or modified
# on Discourse. Lines starting with # and blank lines are ignored.
# Matching is case-insensitive.
`

// Set holds the case-folded excluded usernames, immutable during a run.
type Set struct {
	entries map[string]struct{}
}

// Load reads the exclusion list from path. A missing file is created with a
// documented default set before loading. Read errors never abort the run:
// they are logged and an empty set is returned.
func Load(path string) *Set {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path); err != nil {
			logging.Warn().Err(err).Str("path", path).
				Msg("Could not create default exclusion file, continuing with empty set")
			return newSet(nil)
		}
		logging.Info().Str("path", path).Int("entries", len(defaultEntries)).
			Msg("Created default exclusion file")
	}

	f, err := os.Open(path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).
			Msg("Could not read exclusion file, continuing with empty set")
		return newSet(nil)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		logging.Warn().Err(err).Str("path", path).
			Msg("Error while reading exclusion file, continuing with entries read so far")
	}

	return newSet(entries)
}

// writeDefault persists the default exclusion file to path.
func writeDefault(path string) error {
	var sb strings.Builder
	sb.WriteString(fileHeader)
	for _, entry := range defaultEntries {
		sb.WriteString(entry)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write default exclusion file: %w", err)
	}
	return nil
}

// NewSet builds a Set directly from entries, bypassing the file.
func NewSet(entries ...string) *Set {
	return newSet(entries)
}

// newSet builds a Set from raw entries, case-folding each.
func newSet(entries []string) *Set {
	s := &Set{entries: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		s.entries[strings.ToLower(e)] = struct{}{}
	}
	return s
}

// Contains reports whether the raw username case-folds into the set.
func (s *Set) Contains(username string) bool {
	_, ok := s.entries[strings.ToLower(strings.TrimSpace(username))]
	return ok
}

// Len returns the number of excluded usernames.
func (s *Set) Len() int {
	return len(s.entries)
}
