// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package exclusion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.txt")

	set := Load(path)

	if set.Len() != len(defaultEntries) {
		t.Errorf("default set size = %d, want %d", set.Len(), len(defaultEntries))
	}
	for _, entry := range defaultEntries {
		if !set.Contains(entry) {
			t.Errorf("default set missing %q", entry)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default file was not created: %v", err)
	}
	if !strings.HasPrefix(string(data), "#") {
		t.Error("default file should start with a comment header")
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.txt")
	content := "# header\n\nAlice\n  bob  \n# commented_out\nCAROL\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	set := Load(path)

	if set.Len() != 3 {
		t.Fatalf("set size = %d, want 3", set.Len())
	}
	for _, name := range []string{"alice", "bob", "carol"} {
		if !set.Contains(name) {
			t.Errorf("set should contain %q", name)
		}
	}
	if set.Contains("commented_out") {
		t.Error("comment line must not produce an entry")
	}
}

func TestContainsCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.txt")
	if err := os.WriteFile(path, []byte("Alice\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	set := Load(path)

	for _, variant := range []string{"alice", "ALICE", "Alice", "aLiCe", " alice "} {
		if !set.Contains(variant) {
			t.Errorf("Contains(%q) = false, want true", variant)
		}
	}
	if set.Contains("bob") {
		t.Error("Contains(bob) = true, want false")
	}
}

// TestLoadIdempotent verifies loading twice without modification yields
// identical sets.
func TestLoadIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.txt")
	if err := os.WriteFile(path, []byte("alice\nbob\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	first := Load(path)
	second := Load(path)

	if first.Len() != second.Len() {
		t.Fatalf("set sizes differ: %d vs %d", first.Len(), second.Len())
	}
	for name := range first.entries {
		if !second.Contains(name) {
			t.Errorf("second load missing %q", name)
		}
	}
}

func TestLoadUnreadablePathYieldsEmptySet(t *testing.T) {
	// A directory cannot be opened for line reading; Stat succeeds so no
	// default file is written, and the read error degrades to empty set.
	dir := t.TempDir()

	set := Load(dir)

	if set.Len() != 0 {
		t.Errorf("set size = %d, want 0", set.Len())
	}
	if set.Contains("anything") {
		t.Error("empty set should contain nothing")
	}
}
