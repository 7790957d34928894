// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/aulasync/aulasync/internal/discourse"
)

func TestExtractCountry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		location string
		want     string
	}{
		{"Madrid, España", "España"},
		{"San Cristóbal, Táchira, Venezuela", "Venezuela"},
		{"España", "España"},
		{"  Francia  ", "Francia"},
		{"", NoLocation},
		{"   ", NoLocation},
		{"Madrid,", NoLocation},
	}
	for _, tc := range cases {
		if got := ExtractCountry(tc.location); got != tc.want {
			t.Errorf("ExtractCountry(%q) = %q, want %q", tc.location, got, tc.want)
		}
	}
}

func testUsers() []*discourse.User {
	return []*discourse.User{
		{Username: "carla", Name: "Carla", Location: "Madrid, España", Active: true},
		{Username: "ana", Name: "Ana", Location: "Sevilla, España", Active: true},
		{Username: "bruno", Name: "Bruno", Location: "Caracas, Venezuela", Active: true},
		{Username: "diego", Name: "Diego", Location: "", Active: false},
	}
}

func TestBuildGroupsAndOrders(t *testing.T) {
	t.Parallel()

	r := Build(testUsers())

	if r.TotalUsers != 4 || r.Countries != 3 {
		t.Fatalf("totals = %d users %d countries, want 4/3", r.TotalUsers, r.Countries)
	}

	// Largest bucket first, then alphabetical among the singletons.
	if r.Groups[0].Country != "España" || r.Groups[0].Count != 2 {
		t.Errorf("first group = %+v, want España with 2", r.Groups[0])
	}
	if r.Groups[1].Country != NoLocation || r.Groups[2].Country != "Venezuela" {
		t.Errorf("tie order = %q, %q, want alphabetical", r.Groups[1].Country, r.Groups[2].Country)
	}

	if got := r.Groups[0].Percent; got != 50 {
		t.Errorf("España percent = %v, want 50", got)
	}

	// Users inside a bucket sort by username.
	if r.Groups[0].Users[0].Username != "ana" || r.Groups[0].Users[1].Username != "carla" {
		t.Errorf("bucket order = %v", r.Groups[0].Users)
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	r := Build(nil)
	if r.TotalUsers != 0 || len(r.Groups) != 0 {
		t.Errorf("empty report = %+v", r)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Build(testUsers()).WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.TotalUsers != 4 || len(decoded.Groups) != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Build(testUsers()).WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("%d lines, want header plus one per user", len(lines))
	}
	if lines[0] != "username,name,email,location,country,active" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(buf.String(), `ana,Ana,,"Sevilla, España",España,true`) {
		t.Errorf("missing quoted location row in:\n%s", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Build(testUsers()).WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "España") || !strings.Contains(out, "50.0%") {
		t.Errorf("text output:\n%s", out)
	}
}
