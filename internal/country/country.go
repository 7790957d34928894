// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package country converts ISO 3166-1 alpha-2 territory codes to display
// names and back. Both lookups are total, best-effort functions over
// arbitrary strings: unknown input passes through unchanged rather than
// producing an error. Moodle stores territory codes without validation,
// so the resolver must never reject what Moodle accepted.
package country

import "strings"

// Name resolves a territory code to its display name.
// The input is trimmed and upper-cased before lookup; an empty or unknown
// code is returned unchanged.
func Name(code string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return code
	}
	if name, ok := countryNames[trimmed]; ok {
		return name
	}
	return code
}

// Code resolves a display name back to its territory code.
// Matching is case-insensitive over the table's values; an unknown name is
// returned unchanged. Names are unique in the table, so first match wins.
func Code(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return name
	}
	for code, n := range countryNames {
		if strings.EqualFold(n, trimmed) {
			return code
		}
	}
	return name
}

// Known reports whether the given code is present in the table.
// Used by the sync driver to log unrecognized territory codes.
func Known(code string) bool {
	_, ok := countryNames[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// All returns a copy of the full code-to-name table.
func All() map[string]string {
	out := make(map[string]string, len(countryNames))
	for code, name := range countryNames {
		out[code] = name
	}
	return out
}
