// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package sync

import "strings"

// IsBlank reports whether a value is absent for reconciliation purposes:
// empty or whitespace-only.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// ShouldOverwrite decides whether a candidate value from Moodle may be
// written over the current Discourse value. It returns true only when the
// current value is blank and the candidate is not.
//
// Content a Discourse user entered themselves is never overwritten, even
// when it differs from Moodle. This never-clobber rule is the central
// correctness property of the whole synchronization and is deliberately
// conservative.
func ShouldOverwrite(candidate, current string) bool {
	return IsBlank(current) && !IsBlank(candidate)
}
