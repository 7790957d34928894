// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package username

import (
	"regexp"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already legal", "alice", "alice"},
		{"uppercase folded", "Alice", "alice"},
		{"digits and separators kept", "a1-b2.c3", "a1-b2.c3"},
		{"accented run collapses", "Jöhn Doe!!", "j_hn_doe"},
		{"consecutive underscores collapse", "a__b", "a_b"},
		{"mixed illegal run collapses once", "a!@#b", "a_b"},
		{"leading digit prefixed", "123abc", "u123abc"},
		{"empty becomes placeholder", "", "user"},
		{"only illegal chars becomes placeholder", "!!!", "user"},
		{"only underscores becomes placeholder", "___", "user"},
		{"leading and trailing trimmed", "_alice_", "alice"},
		{"space separated", "maria lopez", "maria_lopez"},
		{"email-like input", "user@example.org", "user_example.org"},
		{"underscore adjacent to illegal", "a_!b", "a_b"},
		{"leading dash trimmed", "-dash", "dash"},
		{"leading period trimmed", ".hidden", "hidden"},
		{"only dashes becomes placeholder", "--", "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestNormalizeDeterministic verifies identical input always yields
// identical output.
func TestNormalizeDeterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{"Jöhn Doe!!", "123abc", "", "alice", "MARÍA José"}
	for _, in := range inputs {
		first := Normalize(in)
		for i := 0; i < 10; i++ {
			if got := Normalize(in); got != first {
				t.Fatalf("Normalize(%q) unstable: %q vs %q", in, first, got)
			}
		}
	}
}

// TestNormalizeLegality verifies the output character set for a spread of
// adversarial inputs.
func TestNormalizeLegality(t *testing.T) {
	t.Parallel()

	legal := regexp.MustCompile(`^[a-z0-9][a-z0-9\-._]*$`)
	inputs := []string{
		"alice", "ALICE", "Jöhn Doe!!", "123abc", "user@example.org",
		"__x__", "ñandú", "тест", "日本語", "!leading", "trailing!",
		"a b c", "9", "-dash", "a..b",
	}

	for _, in := range inputs {
		got := Normalize(in)
		if got == placeholder {
			continue
		}
		if !legal.MatchString(got) {
			t.Errorf("Normalize(%q) = %q, not a legal Discourse username", in, got)
		}
	}
}
