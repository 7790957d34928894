// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/aulasync/aulasync/internal/discourse"
	"github.com/aulasync/aulasync/internal/logging"
)

// Cache is the one-shot bulk pre-fetch of Discourse user records, keyed by
// lower-cased username. It is immutable after construction and is NOT
// refreshed when the driver writes: a profile written during this run reads
// stale from the cache until the next run. There is no concurrent writer
// inside the process, so no locking.
type Cache struct {
	users map[string]*discourse.User
}

// BuildCache seeds the cache from the admin active-users listing and one
// detail fetch per listed user. The listing alone lacks location and
// biography, which the reconciliation policy needs. A failed listing is
// fatal (it happens before any mutation); a failed detail fetch degrades
// that user to the listing's fields.
func BuildCache(ctx context.Context, target TargetCommunity) (*Cache, error) {
	summaries, err := target.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list target users: %w", err)
	}

	cache := &Cache{users: make(map[string]*discourse.User, len(summaries))}
	for _, s := range summaries {
		user, err := target.FetchUser(ctx, s.Username)
		if err != nil || user == nil {
			if err != nil {
				logging.Warn().Err(err).Str("user", s.Username).
					Msg("Could not fetch user details for cache, keeping listing fields")
			}
			user = &discourse.User{
				ID:       s.ID,
				Username: s.Username,
				Name:     s.Name,
				Email:    s.Email,
				Active:   s.Active,
			}
		}
		cache.users[strings.ToLower(s.Username)] = user
	}

	logging.Info().Int("users", len(cache.users)).Msg("Built target user cache")
	return cache, nil
}

// BuildCacheForUser seeds a single-entry cache for single-user runs, where
// fetching the whole community would be wasteful.
func BuildCacheForUser(ctx context.Context, target TargetCommunity, username string) (*Cache, error) {
	cache := &Cache{users: make(map[string]*discourse.User, 1)}
	user, err := target.FetchUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("fetch target user %s: %w", username, err)
	}
	if user != nil {
		cache.users[strings.ToLower(username)] = user
	}
	return cache, nil
}

// Lookup returns the cached record for a normalized username.
func (c *Cache) Lookup(normalized string) (*discourse.User, bool) {
	user, ok := c.users[strings.ToLower(normalized)]
	return user, ok
}

// Len returns the number of cached users.
func (c *Cache) Len() int {
	return len(c.users)
}

// Users returns the cached records in no particular order.
func (c *Cache) Users() []*discourse.User {
	out := make([]*discourse.User, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, u)
	}
	return out
}
