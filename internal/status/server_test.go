// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package status

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	syncengine "github.com/aulasync/aulasync/internal/sync"
)

type fakeSummarySource struct {
	summary *syncengine.Summary
}

func (f *fakeSummarySource) Summary() *syncengine.Summary {
	return f.summary
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := New("127.0.0.1:0", &fakeSummarySource{summary: &syncengine.Summary{Status: "pending"}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	source := &fakeSummarySource{summary: &syncengine.Summary{
		Status:    "running",
		Total:     100,
		Processed: 40,
		Created:   10,
		Updated:   30,
		Excluded:  2,
		Errors:    1,
		StartTime: time.Now().UTC(),
		DryRun:    true,
	}}
	srv := New("127.0.0.1:0", source)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var got syncengine.Summary
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "running" || got.Total != 100 || got.Processed != 40 {
		t.Errorf("summary = %+v", got)
	}
	if !got.DryRun {
		t.Error("DryRun not carried through")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := New("127.0.0.1:0", &fakeSummarySource{summary: &syncengine.Summary{}})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
