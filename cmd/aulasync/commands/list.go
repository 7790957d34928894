// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aulasync/aulasync/internal/discourse"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active Discourse users",
	Long: `List the active Discourse users as the synchronization sees them,
one row per account with username, display name and email.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadDiscourseConfig()
	if err != nil {
		return err
	}

	target := discourse.NewBreakerClient(&cfg.Discourse)
	users, err := target.ListActiveUsers(cmd.Context())
	if err != nil {
		return err
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Name, u.Email)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d active users\n", len(users))
	return nil
}
