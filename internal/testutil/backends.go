// Package testutil provides shared fixtures for tests that must hold on every
// edge store backend.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/roach88/bomgraph/internal/kvstore"
	"github.com/roach88/bomgraph/internal/model"
	"github.com/roach88/bomgraph/internal/store"
)

// Backend opens a fresh, empty edge store that is closed on test cleanup.
type Backend struct {
	Name string
	Open func(t *testing.T) model.EdgeStore
}

// Backends returns every edge store implementation.
//
//	for _, b := range testutil.Backends() {
//		t.Run(b.Name, func(t *testing.T) {
//			s := b.Open(t)
//			...
//		})
//	}
func Backends() []Backend {
	return []Backend{
		{Name: "sqlite", Open: OpenSQLite},
		{Name: "badger", Open: OpenBadger},
	}
}

// OpenSQLite opens a file-backed SQLite store in t.TempDir().
func OpenSQLite(t *testing.T) model.EdgeStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "edges.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// OpenBadger opens an in-memory Badger store.
func OpenBadger(t *testing.T) model.EdgeStore {
	t.Helper()
	s, err := kvstore.Open(kvstore.InMemoryConfig())
	if err != nil {
		t.Fatalf("open badger store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ForEachBackend runs fn as a subtest against every backend.
func ForEachBackend(t *testing.T, fn func(t *testing.T, s model.EdgeStore)) {
	t.Helper()
	for _, b := range Backends() {
		t.Run(b.Name, func(t *testing.T) {
			fn(t, b.Open(t))
		})
	}
}
