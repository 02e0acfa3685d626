package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/bomgraph/internal/model"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEdge creates a test edge with minimal required fields.
func createTestEdge(id, parent, component string, order int) model.ComponentEdge {
	return model.ComponentEdge{
		ID:                 id,
		ParentProductID:    parent,
		ComponentProductID: component,
		Quantity:           1,
		SortOrder:          order,
	}
}

// insertEdges writes edges for a tenant in one unit of work.
func insertEdges(t *testing.T, s *Store, tenant string, edges ...model.ComponentEdge) {
	t.Helper()
	err := s.Update(context.Background(), tenant, func(tx model.EdgeTx) error {
		for _, e := range edges {
			if err := tx.Insert(context.Background(), e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert edges: %v", err)
	}
}

// view runs fn in a read unit of work and fails the test on error.
func view(t *testing.T, s *Store, tenant string, fn func(model.EdgeReader) error) {
	t.Helper()
	if err := s.View(context.Background(), tenant, fn); err != nil {
		t.Fatalf("view: %v", err)
	}
}
