package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/bomgraph/internal/model"
)

// Insert writes a new edge into the tenant.
//
// The tenant always comes from the unit of work, never from e.TenantID.
// A violation of UNIQUE(tenant_id, parent_product_id, component_product_id)
// is reported as model.ErrDuplicateEdge; the driver error stays in the chain.
func (t *edgeTx) Insert(ctx context.Context, e model.ComponentEdge) error {
	e = model.Normalize(e)

	_, err := t.q.ExecContext(ctx, `
		INSERT INTO component_edges
		(id, tenant_id, parent_product_id, component_product_id, quantity, sort_order, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		t.tenantID,
		e.ParentProductID,
		e.ComponentProductID,
		e.Quantity,
		e.SortOrder,
		nullableText(e.Notes),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert edge: %w: %w", model.ErrDuplicateEdge, err)
		}
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing edge.
// Endpoints are never updated.
func (t *edgeTx) Update(ctx context.Context, e model.ComponentEdge) error {
	e = model.Normalize(e)

	result, err := t.q.ExecContext(ctx, `
		UPDATE component_edges
		SET quantity = ?, sort_order = ?, notes = ?
		WHERE tenant_id = ? AND id = ?
	`, e.Quantity, e.SortOrder, nullableText(e.Notes), t.tenantID, e.ID)
	if err != nil {
		return fmt.Errorf("update edge %s: %w", e.ID, err)
	}
	return expectOneRow(result, "update edge", e.ID)
}

// SetSortOrder rewrites a single edge's position.
func (t *edgeTx) SetSortOrder(ctx context.Context, id string, order int) error {
	id = model.NormalizeID(id)
	result, err := t.q.ExecContext(ctx, `
		UPDATE component_edges SET sort_order = ?
		WHERE tenant_id = ? AND id = ?
	`, order, t.tenantID, id)
	if err != nil {
		return fmt.Errorf("set sort order %s: %w", id, err)
	}
	return expectOneRow(result, "set sort order", id)
}

// Delete removes an edge.
func (t *edgeTx) Delete(ctx context.Context, id string) error {
	id = model.NormalizeID(id)
	result, err := t.q.ExecContext(ctx, `
		DELETE FROM component_edges WHERE tenant_id = ? AND id = ?
	`, t.tenantID, id)
	if err != nil {
		return fmt.Errorf("delete edge %s: %w", id, err)
	}
	return expectOneRow(result, "delete edge", id)
}

// expectOneRow turns "no rows affected" into model.ErrEdgeNotFound.
func expectOneRow(result sql.Result, op, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", op, id, model.ErrEdgeNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
// PRIMARY KEY collisions (same edge id) are a different extended code and
// deliberately not matched.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
