// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package sync

import (
	"testing"

	"github.com/aulasync/aulasync/internal/discourse"
	"github.com/aulasync/aulasync/internal/moodle"
)

func TestBuildLocation(t *testing.T) {
	tests := []struct {
		name     string
		city     string
		country  string
		expected string
	}{
		{"city and known country", "Roma", "IT", "Roma, Italia"},
		{"country only", "", "ES", "España"},
		{"city only", "Madrid", "", "Madrid"},
		{"both blank", "", "", ""},
		{"whitespace city", "   ", "FR", "Francia"},
		{"unknown code passes through", "Springfield", "XX", "Springfield, XX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildLocation(tt.city, tt.country); got != tt.expected {
				t.Errorf("BuildLocation(%q, %q) = %q, want %q",
					tt.city, tt.country, got, tt.expected)
			}
		})
	}
}

func TestEvaluateFieldsAgainstExistingUser(t *testing.T) {
	src := moodle.User{
		Username:    "alice",
		FullName:    "Alice Adams",
		City:        "Roma",
		Country:     "IT",
		Description: "Teacher",
		Email:       "alice@example.org",
	}
	target := &discourse.User{
		Name:     "",              // blank: candidate wins
		Location: "Paris, France", // present: preserved
		BioRaw:   "  ",            // whitespace counts as blank
		Email:    "old@example.org",
	}

	decisions := EvaluateFields(src, target)
	if len(decisions) != 4 {
		t.Fatalf("got %d decisions, want 4", len(decisions))
	}

	byField := map[string]FieldDecision{}
	for _, d := range decisions {
		byField[d.Field] = d
	}

	if !byField[FieldName].Overwrite {
		t.Error("blank target name should be overwritten")
	}
	if byField[FieldLocation].Overwrite {
		t.Error("existing target location must never be overwritten")
	}
	if !byField[FieldBio].Overwrite {
		t.Error("whitespace-only target bio should be overwritten")
	}
	if byField[FieldEmail].Overwrite {
		t.Error("existing target email must never be overwritten")
	}
}

// A nil target is the empty baseline of a just-created account: every
// non-blank candidate is approved.
func TestEvaluateFieldsAgainstEmptyBaseline(t *testing.T) {
	src := moodle.User{
		FullName:    "Alice Adams",
		City:        "Roma",
		Country:     "IT",
		Description: "",
		Email:       "alice@example.org",
	}

	decisions := EvaluateFields(src, nil)
	byField := map[string]FieldDecision{}
	for _, d := range decisions {
		byField[d.Field] = d
	}

	if !byField[FieldName].Overwrite || !byField[FieldLocation].Overwrite || !byField[FieldEmail].Overwrite {
		t.Error("non-blank candidates should be approved against the empty baseline")
	}
	if byField[FieldBio].Overwrite {
		t.Error("blank candidate must never be approved")
	}
}

func TestEvaluateFieldsWriteOrder(t *testing.T) {
	decisions := EvaluateFields(moodle.User{}, nil)
	want := []string{FieldName, FieldLocation, FieldBio, FieldEmail}
	for i, d := range decisions {
		if d.Field != want[i] {
			t.Errorf("decision %d field = %q, want %q", i, d.Field, want[i])
		}
	}
}
