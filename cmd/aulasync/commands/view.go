// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aulasync/aulasync/internal/discourse"
	"github.com/aulasync/aulasync/internal/moodle"
	syncengine "github.com/aulasync/aulasync/internal/sync"
	"github.com/aulasync/aulasync/internal/username"
)

var viewCmd = &cobra.Command{
	Use:   "view <username>",
	Short: "Show one user on both sides",
	Long: `Show a user's Moodle record, their Discourse profile, and what a
sync pass would do for each field. Nothing is written.

Example:
  aulasync view jdoe`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	requested := args[0]

	source := moodle.NewClient(&cfg.Moodle)
	sourceUsers, err := source.FetchUsers(ctx, requested, 1)
	if err != nil {
		return err
	}
	if len(sourceUsers) == 0 {
		return fmt.Errorf("user %q not found in Moodle", requested)
	}
	src := sourceUsers[0]
	normalized := username.Normalize(src.Username)

	target := discourse.NewBreakerClient(&cfg.Discourse)
	dst, err := target.FetchUser(ctx, normalized)
	if err != nil {
		return err
	}

	fmt.Printf("Moodle user %q\n", src.Username)
	fmt.Printf("  Name:     %s\n", src.FullName)
	fmt.Printf("  Email:    %s\n", src.Email)
	fmt.Printf("  City:     %s\n", src.City)
	fmt.Printf("  Country:  %s\n", src.Country)

	if dst == nil {
		fmt.Printf("\nNo Discourse account for %q; a sync pass would create one.\n", normalized)
	} else {
		fmt.Printf("\nDiscourse user %q\n", dst.Username)
		fmt.Printf("  Name:     %s\n", dst.Name)
		fmt.Printf("  Email:    %s\n", dst.Email)
		fmt.Printf("  Location: %s\n", dst.Location)
	}

	fmt.Println("\nField decisions:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  FIELD\tCURRENT\tCANDIDATE\tACTION")
	for _, d := range syncengine.EvaluateFields(src, dst) {
		action := "keep current"
		switch {
		case d.Overwrite:
			action = "fill"
		case syncengine.IsBlank(d.Candidate) && syncengine.IsBlank(d.Current):
			action = "nothing to do"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", d.Field, orDash(d.Current), orDash(d.Candidate), action)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
