// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

// Package commands implements the aulasync CLI.
package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aulasync/aulasync/internal/config"
	"github.com/aulasync/aulasync/internal/logging"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// ErrCompletedWithErrors marks a run that finished but could not
// synchronize every user. main() maps it to a distinct exit code so batch
// schedulers can tell "nothing to retry" from "rerun later".
var ErrCompletedWithErrors = errors.New("completed with errors")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "aulasync",
	Short: "Synchronize Moodle user profiles into Discourse",
	Long: `Aulasync keeps a Discourse community aligned with its Moodle campus.
It reads user profiles from the Moodle web service API and fills the
matching Discourse profiles, creating missing accounts along the way.

Existing non-blank Discourse fields are never overwritten: users own
what they wrote themselves. Runs are simulations unless --apply is set.

Use "aulasync [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./aulasync.yaml, then /etc/aulasync/aulasync.yaml)")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the layered configuration with full validation and
// initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	initLogging(cfg)
	return cfg, nil
}

// loadDiscourseConfig loads the configuration for commands that only talk
// to Discourse, so a missing Moodle token does not block a report.
func loadDiscourseConfig() (*config.Config, error) {
	cfg, err := config.LoadUnvalidated(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Discourse.Validate(); err != nil {
		return nil, err
	}
	initLogging(cfg)
	return cfg, nil
}

func initLogging(cfg *config.Config) {
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
}
