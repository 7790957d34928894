// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("aulasync %s (commit: %s, built: %s, %s)\n",
			Version, Commit, Date, runtime.Version())
	},
}
