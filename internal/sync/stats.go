// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package sync

import "time"

// Stats holds counters for one synchronization run. Counters commit at each
// user's terminal state, so at any point
//
//	Total == Processed + Excluded + Errors + (users not yet reached)
//
// and after a run completes the remainder is zero. Created and Updated are
// a further breakdown of Processed.
type Stats struct {
	// Total is the number of source users selected for this run.
	Total int64

	// Processed counts users fully synchronized without errors.
	Processed int64

	// Created counts processed users whose Discourse account was created
	// (or would be, in a dry run) during this pass.
	Created int64

	// Updated counts processed users that already had an account.
	Updated int64

	// Excluded counts users skipped because of the exclusion list.
	Excluded int64

	// Errors counts users whose creation failed or who hit at least one
	// field-write failure.
	Errors int64

	// StartTime is when the run started.
	StartTime time.Time

	// EndTime is when the run completed (zero while running).
	EndTime time.Time

	// DryRun reports whether this run simulated writes.
	DryRun bool
}

// Duration returns how long the run has been going, or took.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Done returns how many users reached a terminal state.
func (s *Stats) Done() int64 {
	return s.Processed + s.Excluded + s.Errors
}

// AveragePerUser returns the mean wall-clock cost of one user. Zero when
// nothing was processed yet, so an empty run never divides by zero.
func (s *Stats) AveragePerUser() time.Duration {
	done := s.Done()
	if done == 0 {
		return 0
	}
	return s.Duration() / time.Duration(done)
}

// EstimatedRemaining projects the time left from the average per-user cost.
func (s *Stats) EstimatedRemaining() time.Duration {
	avg := s.AveragePerUser()
	if avg == 0 {
		return 0
	}
	remaining := s.Total - s.Done()
	if remaining <= 0 {
		return 0
	}
	return avg * time.Duration(remaining)
}

// Summary is the JSON shape served by the status endpoint and logged at
// snapshot cadence.
type Summary struct {
	Status           string    `json:"status"`
	Total            int64     `json:"total"`
	Processed        int64     `json:"processed"`
	Created          int64     `json:"created"`
	Updated          int64     `json:"updated"`
	Excluded         int64     `json:"excluded"`
	Errors           int64     `json:"errors"`
	ElapsedSeconds   float64   `json:"elapsed_seconds"`
	AvgPerUserMillis float64   `json:"avg_per_user_ms"`
	RemainingSeconds float64   `json:"estimated_remaining_seconds"`
	StartTime        time.Time `json:"start_time"`
	DryRun           bool      `json:"dry_run"`
}

// ToSummary converts Stats into a Summary with derived fields.
func (s *Stats) ToSummary(running bool) *Summary {
	status := "completed"
	if running {
		status = "running"
	} else if s.StartTime.IsZero() {
		status = "pending"
	}

	return &Summary{
		Status:           status,
		Total:            s.Total,
		Processed:        s.Processed,
		Created:          s.Created,
		Updated:          s.Updated,
		Excluded:         s.Excluded,
		Errors:           s.Errors,
		ElapsedSeconds:   s.Duration().Seconds(),
		AvgPerUserMillis: float64(s.AveragePerUser().Microseconds()) / 1000,
		RemainingSeconds: s.EstimatedRemaining().Seconds(),
		StartTime:        s.StartTime,
		DryRun:           s.DryRun,
	}
}
