// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package username maps Moodle usernames onto Discourse's restricted
// username character set. The transformation is pure and deterministic, so
// a normalized name can be recomputed anywhere instead of being stored.
package username

import "strings"

// placeholder is substituted when normalization leaves nothing usable.
const placeholder = "user"

// digitPrefix is prepended when the normalized name starts with a digit.
const digitPrefix = "u"

// Normalize converts a raw Moodle username into a Discourse-legal one:
// lower-cases, collapses every run of characters outside [a-z0-9-._] into a
// single underscore, collapses consecutive underscores, and trims leading
// and trailing underscores plus leading dashes and periods. An empty result
// becomes "user"; a result starting with a digit is prefixed with "u".
func Normalize(raw string) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	pendingUnderscore := false
	for _, r := range lower {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.':
			if pendingUnderscore {
				b.WriteByte('_')
				pendingUnderscore = false
			}
			b.WriteRune(r)
		default:
			// Underscores and illegal runs both collapse to one '_',
			// emitted lazily so leading/trailing runs vanish.
			if b.Len() > 0 {
				pendingUnderscore = true
			}
		}
	}

	// Discourse requires the first character to be alphanumeric; a leading
	// dash or period is legal only in the interior.
	normalized := strings.TrimLeft(b.String(), "-.")
	if normalized == "" {
		return placeholder
	}
	if normalized[0] >= '0' && normalized[0] <= '9' {
		normalized = digitPrefix + normalized
	}
	return normalized
}
