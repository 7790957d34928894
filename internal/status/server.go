// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package status serves the optional observability surface of a running
// synchronization: liveness, live run counters as JSON, and Prometheus
// metrics. It never mutates anything and carries no authentication; bind
// it to a loopback or otherwise trusted address.
package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aulasync/aulasync/internal/logging"
	syncengine "github.com/aulasync/aulasync/internal/sync"
)

// SummarySource exposes the live counters of the current run.
type SummarySource interface {
	Summary() *syncengine.Summary
}

// Server is the embedded status HTTP server.
type Server struct {
	source SummarySource
	http   *http.Server
}

// New builds the status server bound to addr.
func New(addr string, source SummarySource) *Server {
	s := &Server{source: source}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	return s
}

// Start serves in the background. Any listen failure is logged, not fatal:
// a sync run must not die because its status port is taken.
func (s *Server) Start() {
	go func() {
		logging.Info().Str("addr", s.http.Addr).Msg("Status server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn().Err(err).Msg("Status server stopped")
		}
	}()
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	summary := s.source.Summary()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logging.Warn().Err(err).Msg("Failed to encode status response")
	}
}
