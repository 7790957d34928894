// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package sync implements the field-reconciliation and batch-synchronization
// engine: per-user, per-field decisions about what may be written to
// Discourse, and the sequential driver loop that applies them across a
// population of Moodle users while tolerating partial failures.
//
// Processing is strictly sequential: one user is fully handled before the
// next begins. The per-user HTTP round trips dominate the cost, and the
// sequential model respects Discourse rate limits without coordination.
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aulasync/aulasync/internal/discourse"
	"github.com/aulasync/aulasync/internal/exclusion"
	"github.com/aulasync/aulasync/internal/logging"
	"github.com/aulasync/aulasync/internal/metrics"
	"github.com/aulasync/aulasync/internal/moodle"
	"github.com/aulasync/aulasync/internal/username"
)

// SourceDirectory is the read side against Moodle.
type SourceDirectory interface {
	FetchUsers(ctx context.Context, filterUsername string, limit int) ([]moodle.User, error)
}

// TargetCommunity is the read/write side against Discourse.
type TargetCommunity interface {
	ListActiveUsers(ctx context.Context) ([]discourse.UserSummary, error)
	FetchUser(ctx context.Context, username string) (*discourse.User, error)
	CreateUser(ctx context.Context, user discourse.NewUser) error
	UpdateProfile(ctx context.Context, username string, fields map[string]string) error
	UpdateBio(ctx context.Context, username string, bio string) error
	UpdateEmail(ctx context.Context, username string, email string) error
	Verify(ctx context.Context, username string, expected map[string]string) (map[string]bool, error)
}

// Options controls one synchronization run.
type Options struct {
	// Apply performs real writes. False simulates: every decision is
	// reported and nothing on Discourse is touched.
	Apply bool

	// FilterUsername restricts the run to one Moodle username. Disables
	// batching and the cursor.
	FilterUsername string

	// BatchSize bounds how many users this invocation processes. Zero or
	// negative means the whole remaining listing.
	BatchSize int

	// ForceRecreate attempts account creation even when the cache shows
	// the account exists, to repair half-created accounts.
	ForceRecreate bool

	// CreateMissing creates Discourse accounts for source users with no
	// target account. When false such users are reported and counted as
	// errors.
	CreateMissing bool

	// Verify re-reads the profile after applied writes and logs
	// per-field mismatches.
	Verify bool

	// SnapshotEvery emits a progress snapshot after this many users
	// (default 50).
	SnapshotEvery int

	// SnapshotInterval emits a progress snapshot after this much wall
	// clock time, whichever comes first (default 30s).
	SnapshotInterval time.Duration
}

// outcome is a user's terminal state in the per-user state machine.
type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeExcluded
	outcomeError
)

// Syncer drives one batch synchronization run.
type Syncer struct {
	source   SourceDirectory
	target   TargetCommunity
	excluded *exclusion.Set
	progress ProgressTracker
	opts     Options

	mu      stdsync.RWMutex
	running bool
	stats   *Stats
}

// New creates a Syncer. Snapshot cadence options are defaulted here so the
// zero Options value behaves sensibly.
func New(source SourceDirectory, target TargetCommunity, excluded *exclusion.Set, progress ProgressTracker, opts Options) *Syncer {
	if opts.SnapshotEvery <= 0 {
		opts.SnapshotEvery = 50
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = 30 * time.Second
	}
	if progress == nil {
		progress = NewInMemoryProgress()
	}
	return &Syncer{
		source:   source,
		target:   target,
		excluded: excluded,
		progress: progress,
		opts:     opts,
		stats:    &Stats{},
	}
}

// Run executes the batch loop. Only a failed source listing or cache build
// aborts the run (both happen before any mutation); every per-user error is
// converted into counters and log lines so the batch continues.
func (s *Syncer) Run(ctx context.Context) (*Stats, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, fmt.Errorf("sync already in progress")
	}
	s.running = true
	s.stats = &Stats{StartTime: time.Now(), DryRun: !s.opts.Apply}
	s.mu.Unlock()

	metrics.SyncRunning.Set(1)
	defer func() {
		s.mu.Lock()
		s.running = false
		s.stats.EndTime = time.Now()
		s.mu.Unlock()
		metrics.SyncRunning.Set(0)
	}()

	users, err := s.source.FetchUsers(ctx, s.opts.FilterUsername, 0)
	if err != nil {
		return s.GetStats(), fmt.Errorf("fetch source users: %w", err)
	}

	if s.opts.FilterUsername != "" && len(users) == 0 {
		logging.Ctx(ctx).Warn().Str("user", s.opts.FilterUsername).
			Msg("User not found in Moodle, nothing to do")
		return s.GetStats(), nil
	}

	start := s.resumeIndex(ctx, len(users))
	window := users[start:]
	if s.opts.FilterUsername == "" && s.opts.BatchSize > 0 && len(window) > s.opts.BatchSize {
		window = window[:s.opts.BatchSize]
	}

	cache, err := s.buildCache(ctx)
	if err != nil {
		return s.GetStats(), err
	}

	s.mu.Lock()
	s.stats.Total = int64(len(window))
	s.mu.Unlock()

	logging.Ctx(ctx).Info().
		Int("selected", len(window)).
		Int("source_total", len(users)).
		Int("cursor", start).
		Bool("dry_run", !s.opts.Apply).
		Msg("Starting synchronization")

	lastSnapshotDone := int64(0)
	lastSnapshotTime := time.Now()

	for i, user := range window {
		if ctx.Err() != nil {
			return s.GetStats(), ctx.Err()
		}

		created, out := s.processUser(ctx, user, cache)
		s.commit(created, out)

		s.saveCursor(ctx, start+i+1, user.Username)

		done := s.GetStats().Done()
		if done-lastSnapshotDone >= int64(s.opts.SnapshotEvery) ||
			time.Since(lastSnapshotTime) >= s.opts.SnapshotInterval {
			s.logSnapshot(ctx)
			lastSnapshotDone = done
			lastSnapshotTime = time.Now()
		}
	}

	s.finishCursor(ctx, start+len(window), len(users))
	s.logFinal(ctx)

	return s.GetStats(), nil
}

// resumeIndex loads the persisted cursor for batch runs. A cursor at or
// past the end of the listing means the previous pass completed (or the
// listing shrank); the new pass starts over.
func (s *Syncer) resumeIndex(ctx context.Context, sourceLen int) int {
	if s.opts.FilterUsername != "" {
		return 0
	}
	cursor, err := s.progress.Load(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Could not load sync cursor, starting from the beginning")
		return 0
	}
	if cursor == nil {
		return 0
	}
	if cursor.NextIndex >= sourceLen {
		logging.Ctx(ctx).Info().Msg("Previous pass completed, starting a new one")
		return 0
	}
	logging.Ctx(ctx).Info().Int("index", cursor.NextIndex).Str("after", cursor.LastUsername).
		Msg("Resuming from saved cursor")
	return cursor.NextIndex
}

// saveCursor persists progress after each fully handled user. Dry runs and
// single-user runs never move the cursor.
func (s *Syncer) saveCursor(ctx context.Context, nextIndex int, lastUsername string) {
	if !s.opts.Apply || s.opts.FilterUsername != "" {
		return
	}
	cursor := &Cursor{NextIndex: nextIndex, LastUsername: lastUsername, SavedAt: time.Now()}
	if err := s.progress.Save(ctx, cursor); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to save sync cursor")
	}
}

// finishCursor clears the cursor once a pass has reached the end of the
// source listing, so the next invocation starts a fresh pass.
func (s *Syncer) finishCursor(ctx context.Context, reached, sourceLen int) {
	if !s.opts.Apply || s.opts.FilterUsername != "" || reached < sourceLen {
		return
	}
	if err := s.progress.Clear(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to clear sync cursor")
		return
	}
	logging.Ctx(ctx).Info().Msg("Full pass over the source listing complete, cursor cleared")
}

// buildCache performs the one-time bulk pre-fetch of target users. The
// cache is never refreshed afterwards, not even after this run's own
// writes; see the Cache type for the staleness trade-off.
func (s *Syncer) buildCache(ctx context.Context) (*Cache, error) {
	if s.opts.FilterUsername != "" {
		return BuildCacheForUser(ctx, s.target, username.Normalize(s.opts.FilterUsername))
	}
	return BuildCache(ctx, s.target)
}

// processUser walks one user through the state machine:
//
//	excluded -> terminal
//	absent   -> create -> created | create-failed (terminal)
//	present  -> exists
//	created/exists -> evaluate fields -> applied | partial failure
//
// Any failure is confined to this user; the caller continues the batch.
func (s *Syncer) processUser(ctx context.Context, user moodle.User, cache *Cache) (created bool, out outcome) {
	log := logging.Ctx(ctx).With().Str("user", user.Username).Logger()

	if s.excluded.Contains(user.Username) {
		log.Info().Msg("User is on the exclusion list, skipping")
		return false, outcomeExcluded
	}

	normalized := username.Normalize(user.Username)
	cached, exists := cache.Lookup(normalized)

	var baseline *discourse.User
	if !exists || s.opts.ForceRecreate {
		if !s.opts.CreateMissing && !s.opts.ForceRecreate {
			log.Warn().Str("username", normalized).
				Msg("No Discourse account and creation is disabled, cannot sync")
			return false, outcomeError
		}
		if !s.createAccount(ctx, log, normalized, user) {
			return false, outcomeError
		}
		created = true
		// A just-created account is evaluated against the empty
		// baseline: every non-blank Moodle field gets populated.
		baseline = nil
	} else {
		baseline = cached
	}

	decisions := EvaluateFields(user, baseline)
	if s.applyDecisions(ctx, log, normalized, decisions) {
		return created, outcomeError
	}
	return created, outcomeProcessed
}

// createAccount creates the minimal Discourse account for a source user.
// Returns false on failure; the user is then skipped entirely.
func (s *Syncer) createAccount(ctx context.Context, log zerolog.Logger, normalized string, user moodle.User) bool {
	if !s.opts.Apply {
		log.Info().Str("username", normalized).Msg("[dry-run] Would create Discourse account")
		return true
	}

	newUser := discourse.NewUser{
		Username: normalized,
		Name:     user.FullName,
		Email:    user.Email,
		Password: uuid.New().String(),
		Active:   false,
	}
	if err := s.target.CreateUser(ctx, newUser); err != nil {
		log.Error().Err(err).Str("username", normalized).Msg("Account creation failed")
		return false
	}
	log.Info().Str("username", normalized).
		Msg("Created Discourse account (inactive, activation pending)")
	return true
}

// applyDecisions executes the approved field writes in fixed order: the
// name/location profile update, then biography, then email. There is no
// transactionality across fields; a failure is logged and sibling fields
// are still attempted. Returns true when any write failed.
func (s *Syncer) applyDecisions(ctx context.Context, log zerolog.Logger, normalized string, decisions []FieldDecision) (failed bool) {
	approved := make(map[string]string, len(decisions))
	for _, d := range decisions {
		if d.Overwrite {
			approved[d.Field] = d.Candidate
			if !s.opts.Apply {
				log.Info().Str("field", d.Field).Str("new", d.Candidate).
					Msg("[dry-run] Would fill empty field")
				metrics.FieldWrites.WithLabelValues(d.Field, "simulated").Inc()
			}
			continue
		}
		metrics.FieldWrites.WithLabelValues(d.Field, "skipped").Inc()
		if !s.opts.Apply && !IsBlank(d.Candidate) && d.Candidate != d.Current {
			log.Info().Str("field", d.Field).Str("current", d.Current).Str("candidate", d.Candidate).
				Msg("[dry-run] Keeping existing value")
		}
	}

	if !s.opts.Apply || len(approved) == 0 {
		return false
	}

	applied := make(map[string]string, len(approved))

	// Name and location go in one profile update; Discourse accepts them
	// together and it halves the write count for brand-new accounts.
	profile := make(map[string]string, 2)
	for _, field := range []string{FieldName, FieldLocation} {
		if value, ok := approved[field]; ok {
			profile[field] = value
		}
	}
	if len(profile) > 0 {
		if err := s.target.UpdateProfile(ctx, normalized, profile); err != nil {
			failed = true
			s.logWriteFailure(log, "profile", err)
			for field := range profile {
				metrics.FieldWrites.WithLabelValues(field, writeResult(err)).Inc()
			}
		} else {
			for field, value := range profile {
				applied[field] = value
				metrics.FieldWrites.WithLabelValues(field, "applied").Inc()
			}
			log.Info().Int("fields", len(profile)).Msg("Profile updated")
		}
	}

	if bio, ok := approved[FieldBio]; ok {
		if err := s.target.UpdateBio(ctx, normalized, bio); err != nil {
			failed = true
			s.logWriteFailure(log, FieldBio, err)
			metrics.FieldWrites.WithLabelValues(FieldBio, writeResult(err)).Inc()
		} else {
			applied[FieldBio] = bio
			metrics.FieldWrites.WithLabelValues(FieldBio, "applied").Inc()
			log.Info().Msg("Biography updated")
		}
	}

	if email, ok := approved[FieldEmail]; ok {
		if err := s.target.UpdateEmail(ctx, normalized, email); err != nil {
			failed = true
			s.logWriteFailure(log, FieldEmail, err)
			metrics.FieldWrites.WithLabelValues(FieldEmail, writeResult(err)).Inc()
		} else {
			metrics.FieldWrites.WithLabelValues(FieldEmail, "applied").Inc()
			log.Info().Str("email", email).
				Msg("Email change requested, user confirmation pending")
		}
	}

	s.verifyApplied(ctx, log, normalized, applied)
	return failed
}

// verifyApplied re-reads the profile and reports per-field mismatches.
// Email is left out: the new address stays invisible until the user
// confirms it, so it would always read as a mismatch. Mismatches are
// logged, never retried within the run.
func (s *Syncer) verifyApplied(ctx context.Context, log zerolog.Logger, normalized string, applied map[string]string) {
	if !s.opts.Verify || len(applied) == 0 {
		return
	}
	report, err := s.target.Verify(ctx, normalized, applied)
	if err != nil {
		log.Warn().Err(err).Msg("Post-write verification failed")
		return
	}
	for field, ok := range report {
		if ok {
			log.Debug().Str("field", field).Msg("Verified")
		} else {
			log.Warn().Str("field", field).Str("expected", applied[field]).
				Msg("Verification mismatch, field did not stick")
		}
	}
}

// logWriteFailure logs one failed field write. Forbidden responses are
// called out separately; the handling is identical either way.
func (s *Syncer) logWriteFailure(log zerolog.Logger, field string, err error) {
	if errors.Is(err, discourse.ErrForbidden) {
		log.Warn().Str("field", field).Msg("Write forbidden by Discourse, skipping field")
		return
	}
	log.Error().Err(err).Str("field", field).Msg("Field write failed")
}

// writeResult maps a write error onto the metrics result label.
func writeResult(err error) string {
	if errors.Is(err, discourse.ErrForbidden) {
		return "forbidden"
	}
	return "failed"
}

// commit records a user's terminal state in the run counters.
func (s *Syncer) commit(created bool, out outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch out {
	case outcomeExcluded:
		s.stats.Excluded++
		metrics.UsersProcessed.WithLabelValues("excluded").Inc()
	case outcomeError:
		s.stats.Errors++
		metrics.UsersProcessed.WithLabelValues("error").Inc()
	case outcomeProcessed:
		s.stats.Processed++
		if created {
			s.stats.Created++
			metrics.UsersProcessed.WithLabelValues("created").Inc()
		} else {
			s.stats.Updated++
			metrics.UsersProcessed.WithLabelValues("updated").Inc()
		}
	}
}

// GetStats returns a copy of the current run counters.
func (s *Syncer) GetStats() *Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := *s.stats
	return &stats
}

// Running reports whether a run is in progress.
func (s *Syncer) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Summary returns the live progress summary for the status endpoint.
func (s *Syncer) Summary() *Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.ToSummary(s.running)
}

// logSnapshot emits the periodic progress line.
func (s *Syncer) logSnapshot(ctx context.Context) {
	stats := s.GetStats()
	logging.Ctx(ctx).Info().
		Int64("done", stats.Done()).
		Int64("total", stats.Total).
		Int64("created", stats.Created).
		Int64("updated", stats.Updated).
		Int64("excluded", stats.Excluded).
		Int64("errors", stats.Errors).
		Dur("elapsed", stats.Duration()).
		Dur("eta", stats.EstimatedRemaining()).
		Msg("Sync progress")
}

// logFinal emits the end-of-run summary.
func (s *Syncer) logFinal(ctx context.Context) {
	stats := s.GetStats()
	logging.Ctx(ctx).Info().
		Int64("total", stats.Total).
		Int64("processed", stats.Processed).
		Int64("created", stats.Created).
		Int64("updated", stats.Updated).
		Int64("excluded", stats.Excluded).
		Int64("errors", stats.Errors).
		Dur("duration", stats.Duration()).
		Dur("avg_per_user", stats.AveragePerUser()).
		Bool("dry_run", stats.DryRun).
		Msg("Synchronization finished")
}
