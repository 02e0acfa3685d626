package model

import (
	"context"
	"errors"
)

var (
	// ErrEdgeNotFound is returned when an edge ID does not exist in the tenant.
	ErrEdgeNotFound = errors.New("component edge not found")

	// ErrDuplicateEdge is returned when (tenant, parent, component) already exists.
	ErrDuplicateEdge = errors.New("component edge already exists")
)

// EdgeReader is the read side of a unit of work. The tenant is fixed when the
// unit of work begins; no method takes a tenant.
//
// Paged reads use keyset pagination on edge ID: pass the last ID of the
// previous page as afterID ("" for the first page). A page shorter than limit
// is the last one.
type EdgeReader interface {
	// Outgoing returns edges whose parent is productID, ordered by ID.
	Outgoing(ctx context.Context, productID, afterID string, limit int) ([]ComponentEdge, error)

	// Incoming returns edges whose component is productID, ordered by ID.
	Incoming(ctx context.Context, productID, afterID string, limit int) ([]ComponentEdge, error)

	// Edges returns every edge of the tenant, ordered by ID.
	Edges(ctx context.Context, afterID string, limit int) ([]ComponentEdge, error)

	// Edge returns a single edge or ErrEdgeNotFound.
	Edge(ctx context.Context, id string) (ComponentEdge, error)

	// Children returns all edges under parentID ordered by sort order, then ID.
	Children(ctx context.Context, parentID string) ([]ComponentEdge, error)

	// CountChildren returns the number of edges under parentID.
	CountChildren(ctx context.Context, parentID string) (int, error)

	// Parents returns the distinct, sorted parent IDs of edges whose component
	// is componentID.
	Parents(ctx context.Context, componentID string) ([]string, error)
}

// EdgeTx is a writable unit of work.
type EdgeTx interface {
	EdgeReader

	// Insert stores a new edge. Returns ErrDuplicateEdge on a uniqueness violation.
	Insert(ctx context.Context, e ComponentEdge) error

	// Update rewrites quantity, notes and sort order of an existing edge.
	Update(ctx context.Context, e ComponentEdge) error

	// SetSortOrder rewrites the sort order of a single edge.
	SetSortOrder(ctx context.Context, id string, order int) error

	// Delete removes an edge. Returns ErrEdgeNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// EdgeStore opens tenant-scoped units of work.
//
// Update must serialize writers of the same tenant for the whole duration of
// fn, so a check performed through the EdgeTx still holds when fn writes.
// If fn returns an error the unit of work is rolled back and the error is
// returned unchanged.
type EdgeStore interface {
	Update(ctx context.Context, tenantID string, fn func(EdgeTx) error) error
	View(ctx context.Context, tenantID string, fn func(EdgeReader) error) error

	// Tenants lists tenants that currently have at least one edge.
	Tenants(ctx context.Context) ([]string, error)

	Close() error
}
