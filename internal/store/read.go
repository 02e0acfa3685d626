package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bomgraph/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// edgeTx implements model.EdgeTx for one tenant on top of a querier.
type edgeTx struct {
	q        querier
	tenantID string
}

const edgeColumns = `id, tenant_id, parent_product_id, component_product_id, quantity, sort_order, notes`

// Outgoing returns a page of edges whose parent is productID, ordered by id.
func (t *edgeTx) Outgoing(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error) {
	return t.queryEdges(ctx, "outgoing edges", `
		SELECT `+edgeColumns+`
		FROM component_edges
		WHERE tenant_id = ? AND parent_product_id = ? AND id > ?
		ORDER BY id COLLATE BINARY ASC
		LIMIT ?
	`, t.tenantID, model.NormalizeID(productID), afterID, sqlLimit(limit))
}

// Incoming returns a page of edges whose component is productID, ordered by id.
func (t *edgeTx) Incoming(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error) {
	return t.queryEdges(ctx, "incoming edges", `
		SELECT `+edgeColumns+`
		FROM component_edges
		WHERE tenant_id = ? AND component_product_id = ? AND id > ?
		ORDER BY id COLLATE BINARY ASC
		LIMIT ?
	`, t.tenantID, model.NormalizeID(productID), afterID, sqlLimit(limit))
}

// Edges returns a page of all edges of the tenant, ordered by id.
func (t *edgeTx) Edges(ctx context.Context, afterID string, limit int) ([]model.ComponentEdge, error) {
	return t.queryEdges(ctx, "tenant edges", `
		SELECT `+edgeColumns+`
		FROM component_edges
		WHERE tenant_id = ? AND id > ?
		ORDER BY id COLLATE BINARY ASC
		LIMIT ?
	`, t.tenantID, afterID, sqlLimit(limit))
}

// Children returns all edges under parentID in display order.
// Ties on sort_order (only possible in damaged data) are broken by id.
func (t *edgeTx) Children(ctx context.Context, parentID string) ([]model.ComponentEdge, error) {
	return t.queryEdges(ctx, "children", `
		SELECT `+edgeColumns+`
		FROM component_edges
		WHERE tenant_id = ? AND parent_product_id = ?
		ORDER BY sort_order ASC, id COLLATE BINARY ASC
	`, t.tenantID, model.NormalizeID(parentID))
}

// Edge retrieves a single edge by id.
// Returns model.ErrEdgeNotFound if the id does not exist in this tenant.
func (t *edgeTx) Edge(ctx context.Context, id string) (model.ComponentEdge, error) {
	row := t.q.QueryRowContext(ctx, `
		SELECT `+edgeColumns+`
		FROM component_edges
		WHERE tenant_id = ? AND id = ?
	`, t.tenantID, model.NormalizeID(id))

	e, err := scanEdge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ComponentEdge{}, fmt.Errorf("read edge %s: %w", id, model.ErrEdgeNotFound)
	}
	if err != nil {
		return model.ComponentEdge{}, fmt.Errorf("read edge %s: %w", id, err)
	}
	return e, nil
}

// CountChildren returns the number of edges under parentID.
func (t *edgeTx) CountChildren(ctx context.Context, parentID string) (int, error) {
	var count int
	err := t.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM component_edges
		WHERE tenant_id = ? AND parent_product_id = ?
	`, t.tenantID, model.NormalizeID(parentID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}

// Parents returns the distinct parents that directly contain componentID.
func (t *edgeTx) Parents(ctx context.Context, componentID string) ([]string, error) {
	rows, err := t.q.QueryContext(ctx, `
		SELECT DISTINCT parent_product_id
		FROM component_edges
		WHERE tenant_id = ? AND component_product_id = ?
		ORDER BY parent_product_id COLLATE BINARY ASC
	`, t.tenantID, model.NormalizeID(componentID))
	if err != nil {
		return nil, fmt.Errorf("query parents: %w", err)
	}
	defer rows.Close()

	parents := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan parent: %w", err)
		}
		parents = append(parents, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parents: %w", err)
	}
	return parents, nil
}

// queryEdges runs a SELECT of edgeColumns and scans every row.
// Returns an empty slice (not nil) when nothing matches.
func (t *edgeTx) queryEdges(ctx context.Context, what, query string, args ...any) ([]model.ComponentEdge, error) {
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	edges := []model.ComponentEdge{}
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return edges, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEdge maps one row to a typed edge.
func scanEdge(row rowScanner) (model.ComponentEdge, error) {
	var (
		e     model.ComponentEdge
		notes sql.NullString
	)
	if err := row.Scan(
		&e.ID, &e.TenantID, &e.ParentProductID, &e.ComponentProductID,
		&e.Quantity, &e.SortOrder, &notes,
	); err != nil {
		return model.ComponentEdge{}, err
	}
	e.Notes = notes.String
	return e, nil
}

// sqlLimit maps a non-positive page size to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
