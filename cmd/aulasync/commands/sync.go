// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aulasync/aulasync/internal/discourse"
	"github.com/aulasync/aulasync/internal/exclusion"
	"github.com/aulasync/aulasync/internal/logging"
	"github.com/aulasync/aulasync/internal/moodle"
	"github.com/aulasync/aulasync/internal/status"
	syncengine "github.com/aulasync/aulasync/internal/sync"
)

var (
	syncApply         bool
	syncUser          string
	syncBatchSize     int
	syncForceRecreate bool
	syncFresh         bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization pass",
	Long: `Run one synchronization pass from Moodle to Discourse.

Without --apply the pass is a simulation: every decision is logged and
nothing on Discourse changes. Batch runs persist a cursor so successive
invocations walk the whole user listing; --fresh discards it.

Examples:
  # Simulate the next batch
  aulasync sync

  # Apply the next batch of 50 users
  aulasync sync --apply --batch-size 50

  # Synchronize a single user, ignoring the batch cursor
  aulasync sync --apply --user jdoe

  # Repair a half-created account
  aulasync sync --apply --user jdoe --force-recreate`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncApply, "apply", false, "perform real writes (default: simulate)")
	syncCmd.Flags().StringVar(&syncUser, "user", "", "synchronize only this Moodle username")
	syncCmd.Flags().IntVar(&syncBatchSize, "batch-size", 0, "users to process this invocation (default: from config)")
	syncCmd.Flags().BoolVar(&syncForceRecreate, "force-recreate", false, "attempt account creation even for existing accounts")
	syncCmd.Flags().BoolVar(&syncFresh, "fresh", false, "discard the saved batch cursor and start from the beginning")
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())

	progress, closeProgress, err := openProgress(cfg.Sync.ProgressPath)
	if err != nil {
		return err
	}
	defer closeProgress()

	if syncFresh {
		if err := progress.Clear(ctx); err != nil {
			return fmt.Errorf("clear batch cursor: %w", err)
		}
		logging.Ctx(ctx).Info().Msg("Batch cursor discarded")
	}

	batchSize := cfg.Sync.BatchSize
	if syncBatchSize > 0 {
		batchSize = syncBatchSize
	}

	source := moodle.NewClient(&cfg.Moodle)
	target := discourse.NewBreakerClient(&cfg.Discourse)
	excluded := exclusion.Load(cfg.Sync.ExclusionPath)

	syncer := syncengine.New(source, target, excluded, progress, syncengine.Options{
		Apply:            syncApply,
		FilterUsername:   syncUser,
		BatchSize:        batchSize,
		ForceRecreate:    syncForceRecreate,
		CreateMissing:    cfg.Sync.CreateMissing,
		Verify:           cfg.Sync.Verify,
		SnapshotEvery:    cfg.Sync.SnapshotEvery,
		SnapshotInterval: cfg.Sync.SnapshotInterval,
	})

	if cfg.Status.Enabled {
		srv := status.New(cfg.Status.Addr, syncer)
		srv.Start()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("Status server shutdown failed")
			}
		}()
	}

	stats, err := syncer.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(stats)
	if stats.Errors > 0 {
		return ErrCompletedWithErrors
	}
	return nil
}

// openProgress returns the cursor store: BadgerDB when a path is
// configured, in-memory (no resume across invocations) otherwise.
func openProgress(path string) (syncengine.ProgressTracker, func(), error) {
	if path == "" {
		return syncengine.NewInMemoryProgress(), func() {}, nil
	}
	store, err := syncengine.OpenBadgerProgress(path)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close progress store")
		}
	}
	return store, closer, nil
}

// printSummary writes the human-readable end-of-run summary to stdout.
// Operators read this; the structured log carries the same numbers.
func printSummary(stats *syncengine.Stats) {
	mode := "applied"
	if stats.DryRun {
		mode = "simulated"
	}
	fmt.Printf("\nSynchronization %s in %s\n", mode, stats.Duration().Round(time.Millisecond))
	fmt.Printf("  Total:     %d\n", stats.Total)
	fmt.Printf("  Processed: %d (created %d, updated %d)\n", stats.Processed, stats.Created, stats.Updated)
	fmt.Printf("  Excluded:  %d\n", stats.Excluded)
	fmt.Printf("  Errors:    %d\n", stats.Errors)
	if stats.Done() > 0 {
		fmt.Printf("  Avg/user:  %s\n", stats.AveragePerUser().Round(time.Millisecond))
	}
}
