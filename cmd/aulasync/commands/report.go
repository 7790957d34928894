// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aulasync/aulasync/internal/discourse"
	"github.com/aulasync/aulasync/internal/report"
	syncengine "github.com/aulasync/aulasync/internal/sync"
)

var (
	reportFormat string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Group the Discourse community by country",
	Long: `Group the Discourse community by the country in each user's location
field and print the distribution. The location field is the one the sync
maintains, so the report doubles as a check of its output.

Examples:
  aulasync report
  aulasync report --format json --output users_by_country.json
  aulasync report --format csv --output users_by_country.csv`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "output format: text, json or csv")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "write to file instead of stdout")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadDiscourseConfig()
	if err != nil {
		return err
	}

	target := discourse.NewBreakerClient(&cfg.Discourse)
	cache, err := syncengine.BuildCache(cmd.Context(), target)
	if err != nil {
		return err
	}

	r := report.Build(cache.Users())

	var out io.Writer = os.Stdout
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch reportFormat {
	case "text":
		return r.WriteText(out)
	case "json":
		return r.WriteJSON(out)
	case "csv":
		return r.WriteCSV(out)
	default:
		return fmt.Errorf("unknown format %q (want text, json or csv)", reportFormat)
	}
}
