// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package sync

import "testing"

func TestIsBlank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"empty", "", true},
		{"spaces", "   ", true},
		{"tabs and newlines", "\t\n ", true},
		{"content", "Rome", false},
		{"content with spaces", "  Rome  ", false},
		{"single char", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsBlank(tt.input); got != tt.expected {
				t.Errorf("IsBlank(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestShouldOverwrite covers all four candidate/current combinations:
// only blank current plus non-blank candidate permits a write.
func TestShouldOverwrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		current   string
		expected  bool
	}{
		{"fill empty field", "Rome, Italy", "", true},
		{"fill whitespace field", "Rome, Italy", "   ", true},
		{"never clobber existing content", "Rome, Italy", "Paris, France", false},
		{"identical content still no write", "Rome, Italy", "Rome, Italy", false},
		{"both blank", "", "", false},
		{"blank candidate over content", "", "Paris, France", false},
		{"whitespace candidate over empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ShouldOverwrite(tt.candidate, tt.current); got != tt.expected {
				t.Errorf("ShouldOverwrite(%q, %q) = %v, want %v",
					tt.candidate, tt.current, got, tt.expected)
			}
		})
	}
}
