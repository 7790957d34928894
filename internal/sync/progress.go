// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// cursorKey is the BadgerDB key for the persisted batch cursor.
const cursorKey = "aulasync:sync:cursor"

// Cursor marks how far through the source listing previous invocations got.
// Successive batch runs resume here until a full pass completes.
type Cursor struct {
	// NextIndex is the position in the source listing where the next run
	// should start.
	NextIndex int `json:"next_index"`

	// LastUsername is the last fully processed source username, kept for
	// operator diagnostics.
	LastUsername string `json:"last_username"`

	// SavedAt is when this cursor was persisted.
	SavedAt time.Time `json:"saved_at"`
}

// ProgressTracker persists the batch cursor between invocations.
type ProgressTracker interface {
	// Save persists the cursor.
	Save(ctx context.Context, cursor *Cursor) error

	// Load retrieves the last saved cursor, or nil when none exists.
	Load(ctx context.Context) (*Cursor, error)

	// Clear removes the saved cursor (fresh start, or full pass done).
	Clear(ctx context.Context) error
}

// BadgerProgress implements ProgressTracker on BadgerDB, surviving process
// restarts so an interrupted batch resumes where it stopped.
type BadgerProgress struct {
	db *badger.DB
}

// OpenBadgerProgress opens (or creates) the cursor store at dir.
func OpenBadgerProgress(dir string) (*BadgerProgress, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}
	return &BadgerProgress{db: db}, nil
}

// Close releases the underlying store.
func (p *BadgerProgress) Close() error {
	return p.db.Close()
}

// Save persists the cursor.
func (p *BadgerProgress) Save(_ context.Context, cursor *Cursor) error {
	data, err := json.Marshal(cursor)
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cursorKey), data)
	})
}

// Load retrieves the saved cursor. Returns nil, nil when none was saved.
func (p *BadgerProgress) Load(_ context.Context) (*Cursor, error) {
	var cursor Cursor
	found := false

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cursorKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cursor)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &cursor, nil
}

// Clear removes the saved cursor.
func (p *BadgerProgress) Clear(_ context.Context) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(cursorKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// InMemoryProgress implements ProgressTracker in memory, for tests and for
// runs without a configured progress path (no resume across invocations).
type InMemoryProgress struct {
	cursor *Cursor
}

// NewInMemoryProgress creates an empty in-memory tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{}
}

// Save stores a copy of the cursor.
func (p *InMemoryProgress) Save(_ context.Context, cursor *Cursor) error {
	c := *cursor
	p.cursor = &c
	return nil
}

// Load returns a copy of the stored cursor, or nil.
func (p *InMemoryProgress) Load(_ context.Context) (*Cursor, error) {
	if p.cursor == nil {
		return nil, nil
	}
	c := *p.cursor
	return &c, nil
}

// Clear drops the stored cursor.
func (p *InMemoryProgress) Clear(_ context.Context) error {
	p.cursor = nil
	return nil
}
