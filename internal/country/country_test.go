// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package country

import "testing"

func TestName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"known code", "IT", "Italia"},
		{"known code lowercase", "es", "España"},
		{"known code with whitespace", " FR ", "Francia"},
		{"unknown code passes through", "XX", "XX"},
		{"empty string passes through", "", ""},
		{"whitespace only passes through", "   ", "   "},
		{"not a code passes through", "Atlantis", "Atlantis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Name(tt.input); got != tt.expected {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"known name", "Italia", "IT"},
		{"case insensitive", "españa", "ES"},
		{"with whitespace", "  Francia  ", "FR"},
		{"unknown name passes through", "Atlantis", "Atlantis"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Code(tt.input); got != tt.expected {
				t.Errorf("Code(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestRoundTrip verifies Code(Name(code)) == code for every table entry.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for code := range countryNames {
		if got := Code(Name(code)); got != code {
			t.Errorf("round trip for %q: got %q", code, got)
		}
	}
}

func TestKnown(t *testing.T) {
	t.Parallel()

	if !Known("it") {
		t.Error("Known(it) = false, want true")
	}
	if Known("XX") {
		t.Error("Known(XX) = true, want false")
	}
	if Known("") {
		t.Error("Known(\"\") = true, want false")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()

	all := All()
	if len(all) != len(countryNames) {
		t.Fatalf("All() len = %d, want %d", len(all), len(countryNames))
	}

	all["IT"] = "mutated"
	if countryNames["IT"] != "Italia" {
		t.Error("mutating All() result leaked into the table")
	}
}
