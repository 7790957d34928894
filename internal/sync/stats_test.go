// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package sync

import (
	"testing"
	"time"
)

func TestStatsDerivedValues(t *testing.T) {
	t.Parallel()

	start := time.Now().Add(-10 * time.Second)
	s := &Stats{
		Total:     100,
		Processed: 18,
		Excluded:  1,
		Errors:    1,
		StartTime: start,
		EndTime:   start.Add(10 * time.Second),
	}

	if got := s.Done(); got != 20 {
		t.Errorf("Done = %d, want 20", got)
	}
	if got := s.Duration(); got != 10*time.Second {
		t.Errorf("Duration = %v, want 10s", got)
	}
	if got := s.AveragePerUser(); got != 500*time.Millisecond {
		t.Errorf("AveragePerUser = %v, want 500ms", got)
	}
	if got := s.EstimatedRemaining(); got != 40*time.Second {
		t.Errorf("EstimatedRemaining = %v, want 40s", got)
	}
}

func TestStatsZeroDone(t *testing.T) {
	t.Parallel()

	s := &Stats{Total: 50, StartTime: time.Now()}
	if got := s.AveragePerUser(); got != 0 {
		t.Errorf("AveragePerUser = %v with nothing done, want 0", got)
	}
	if got := s.EstimatedRemaining(); got != 0 {
		t.Errorf("EstimatedRemaining = %v with nothing done, want 0", got)
	}
}

func TestToSummaryStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		stats   Stats
		running bool
		want    string
	}{
		{"pending before first run", Stats{}, false, "pending"},
		{"running", Stats{StartTime: time.Now()}, true, "running"},
		{"completed", Stats{StartTime: time.Now(), EndTime: time.Now()}, false, "completed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.stats.ToSummary(tc.running).Status; got != tc.want {
				t.Errorf("Status = %q, want %q", got, tc.want)
			}
		})
	}
}
