// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package report groups the Discourse community by country of residence
// and renders the distribution as text, JSON, or CSV. The grouping reads
// the location field the synchronization itself maintains, so the report
// doubles as a sanity check of the sync output.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/aulasync/aulasync/internal/discourse"
)

// NoLocation is the bucket for users without a location. The Spanish label
// matches the deployments this tool serves.
const NoLocation = "Sin ubicación"

// UserInfo is one user row inside a country bucket.
type UserInfo struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Country  string `json:"country"`
	Active   bool   `json:"active"`
}

// CountryGroup is one country bucket with its users and share of the total.
type CountryGroup struct {
	Country string     `json:"country"`
	Count   int        `json:"count"`
	Percent float64    `json:"percent"`
	Users   []UserInfo `json:"users"`
}

// Report is the full country distribution of a community.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	TotalUsers  int            `json:"total_users"`
	Countries   int            `json:"countries"`
	Groups      []CountryGroup `json:"groups"`
}

// ExtractCountry derives the country from a location value. Locations are
// written as "city, country" by the synchronization; the segment after the
// last comma is the country. A comma-free location is taken to be a bare
// country. Blank locations land in the NoLocation bucket.
func ExtractCountry(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return NoLocation
	}
	if idx := strings.LastIndex(location, ","); idx >= 0 {
		if country := strings.TrimSpace(location[idx+1:]); country != "" {
			return country
		}
		return NoLocation
	}
	return location
}

// Build groups users into country buckets. Buckets come back ordered by
// size descending, ties broken alphabetically; users inside a bucket are
// ordered by username.
func Build(users []*discourse.User) *Report {
	buckets := make(map[string][]UserInfo)
	for _, u := range users {
		country := ExtractCountry(u.Location)
		buckets[country] = append(buckets[country], UserInfo{
			Username: u.Username,
			Name:     u.Name,
			Email:    u.Email,
			Location: u.Location,
			Country:  country,
			Active:   u.Active,
		})
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		TotalUsers:  len(users),
		Countries:   len(buckets),
	}

	for country, members := range buckets {
		sort.Slice(members, func(i, j int) bool {
			return members[i].Username < members[j].Username
		})
		percent := 0.0
		if report.TotalUsers > 0 {
			percent = float64(len(members)) / float64(report.TotalUsers) * 100
		}
		report.Groups = append(report.Groups, CountryGroup{
			Country: country,
			Count:   len(members),
			Percent: percent,
			Users:   members,
		})
	}

	sort.Slice(report.Groups, func(i, j int) bool {
		if report.Groups[i].Count != report.Groups[j].Count {
			return report.Groups[i].Count > report.Groups[j].Count
		}
		return report.Groups[i].Country < report.Groups[j].Country
	})
	return report
}

// WriteText renders the human-readable distribution.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Users by country (%d users, %d countries)\n\n",
		r.TotalUsers, r.Countries); err != nil {
		return err
	}
	for _, g := range r.Groups {
		if _, err := fmt.Fprintf(w, "%-30s %5d  (%.1f%%)\n", g.Country, g.Count, g.Percent); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders the full report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV renders one row per user with their country bucket.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"username", "name", "email", "location", "country", "active"}); err != nil {
		return err
	}
	for _, g := range r.Groups {
		for _, u := range g.Users {
			row := []string{u.Username, u.Name, u.Email, u.Location, u.Country, strconv.FormatBool(u.Active)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
