// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package sync

import (
	"fmt"

	"github.com/aulasync/aulasync/internal/country"
	"github.com/aulasync/aulasync/internal/discourse"
	"github.com/aulasync/aulasync/internal/logging"
	"github.com/aulasync/aulasync/internal/moodle"
)

// Field names as Discourse knows them.
const (
	FieldName     = "name"
	FieldLocation = "location"
	FieldBio      = "bio_raw"
	FieldEmail    = "email"
)

// FieldDecision records the reconciliation verdict for one profile field.
type FieldDecision struct {
	Field     string
	Candidate string
	Current   string
	Overwrite bool
}

// BuildLocation derives the location candidate from a Moodle city and
// territory code. The code is resolved to a display name; city and country
// join with a comma, and either stands alone when the other is missing.
// A blank pair produces no candidate.
func BuildLocation(city, countryCode string) string {
	name := ""
	if !IsBlank(countryCode) {
		name = country.Name(countryCode)
		if !country.Known(countryCode) {
			// Pass-through is deliberate; the source never validated codes.
			logging.Info().Str("country", countryCode).
				Msg("Unrecognized territory code, using it as-is")
		}
	}

	switch {
	case !IsBlank(city) && !IsBlank(name):
		return fmt.Sprintf("%s, %s", city, name)
	case !IsBlank(name):
		return name
	case !IsBlank(city):
		return city
	default:
		return ""
	}
}

// EvaluateFields runs the reconciliation policy over every syncable field.
// A nil target represents the empty baseline of a just-created account, so
// every non-blank candidate is approved. Decisions come back in write
// order: name, location, biography, email.
func EvaluateFields(src moodle.User, target *discourse.User) []FieldDecision {
	baseline := discourse.User{}
	if target != nil {
		baseline = *target
	}

	candidates := []struct {
		field     string
		candidate string
		current   string
	}{
		{FieldName, src.FullName, baseline.Name},
		{FieldLocation, BuildLocation(src.City, src.Country), baseline.Location},
		{FieldBio, src.Description, baseline.BioRaw},
		{FieldEmail, src.Email, baseline.Email},
	}

	decisions := make([]FieldDecision, 0, len(candidates))
	for _, c := range candidates {
		decisions = append(decisions, FieldDecision{
			Field:     c.field,
			Candidate: c.candidate,
			Current:   c.current,
			Overwrite: ShouldOverwrite(c.candidate, c.current),
		})
	}
	return decisions
}
