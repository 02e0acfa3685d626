package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/bomgraph/internal/model"
)

// DefaultPageSize is the number of edges fetched per traversal step.
const DefaultPageSize = 256

// EdgeSource provides paged adjacency reads for one tenant.
// model.EdgeReader satisfies it.
type EdgeSource interface {
	Outgoing(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error)
	Incoming(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error)
}

// Direction names the check that proved a cycle.
type Direction string

const (
	DirectionNone     Direction = ""
	DirectionSelf     Direction = "self"
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// Result is the outcome of a cycle check for a candidate edge.
type Result struct {
	Cycle     bool      `json:"cycle"`
	Direction Direction `json:"direction,omitempty"`

	// Path is the loop the candidate edge would close, starting and ending at
	// the parent: [parent, component, ..., parent].
	Path []string `json:"path,omitempty"`

	// Visited counts distinct nodes reached by both traversals.
	Visited int `json:"visited"`
}

// Detector checks candidate edges for cycles. It holds no graph state and is
// safe for concurrent use.
type Detector struct {
	pageSize int
}

// Option configures a Detector.
type Option func(*Detector)

// WithPageSize sets the traversal page size. Non-positive values keep the
// default.
func WithPageSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.pageSize = n
		}
	}
}

// NewDetector creates a Detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// PageSize returns the configured page size.
func (d *Detector) PageSize() int {
	return d.pageSize
}

// WouldCreateCycle reports whether adding parentID -> componentID would make
// the graph cyclic. A self-reference counts as a cycle.
//
// An error means the answer is unknown and the edge must not be added.
func (d *Detector) WouldCreateCycle(ctx context.Context, src EdgeSource, parentID, componentID string) (bool, error) {
	r, err := d.FindCycle(ctx, src, parentID, componentID)
	if err != nil {
		return false, err
	}
	return r.Cycle, nil
}

// FindCycle runs the forward check (from componentID along outgoing edges,
// looking for parentID) and, if that finds nothing, the backward check (from
// parentID along incoming edges, looking for componentID).
func (d *Detector) FindCycle(ctx context.Context, src EdgeSource, parentID, componentID string) (Result, error) {
	parentID = model.NormalizeID(parentID)
	componentID = model.NormalizeID(componentID)

	if parentID == componentID {
		return Result{
			Cycle:     true,
			Direction: DirectionSelf,
			Path:      []string{parentID, parentID},
		}, nil
	}

	forward := walk{
		fetch: src.Outgoing,
		next:  func(e model.ComponentEdge) string { return e.ComponentProductID },
	}
	chain, visited, err := d.search(ctx, forward, componentID, parentID)
	if err != nil {
		return Result{}, fmt.Errorf("forward cycle check: %w", err)
	}
	if chain != nil {
		// chain is component -> ... -> parent.
		return Result{
			Cycle:     true,
			Direction: DirectionForward,
			Path:      append([]string{parentID}, chain...),
			Visited:   visited,
		}, nil
	}

	backward := walk{
		fetch: src.Incoming,
		next:  func(e model.ComponentEdge) string { return e.ParentProductID },
	}
	chain, back, err := d.search(ctx, backward, parentID, componentID)
	visited += back
	if err != nil {
		return Result{}, fmt.Errorf("backward cycle check: %w", err)
	}
	if chain != nil {
		// chain is parent <- ... <- component; flip it into edge direction.
		slices.Reverse(chain)
		return Result{
			Cycle:     true,
			Direction: DirectionBackward,
			Path:      append([]string{parentID}, chain...),
			Visited:   visited,
		}, nil
	}

	return Result{Visited: visited}, nil
}

// walk is one traversal direction.
type walk struct {
	fetch func(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error)
	next  func(model.ComponentEdge) string
}

// search runs a breadth-first traversal from start until target is reached.
// It returns the node chain start..target (nil if unreachable) and the number
// of distinct nodes visited.
func (d *Detector) search(ctx context.Context, w walk, start, target string) ([]string, int, error) {
	visited := map[string]bool{start: true}
	pred := make(map[string]string)
	queue := []string{start}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, len(visited), err
		}
		node := queue[0]
		queue = queue[1:]

		after := ""
		for {
			page, err := w.fetch(ctx, node, after, d.pageSize)
			if err != nil {
				return nil, len(visited), err
			}
			for _, e := range page {
				n := w.next(e)
				if visited[n] {
					continue
				}
				visited[n] = true
				pred[n] = node
				if n == target {
					return chainTo(pred, start, target), len(visited), nil
				}
				queue = append(queue, n)
			}
			if len(page) < d.pageSize {
				break
			}
			after = page[len(page)-1].ID
		}
	}
	return nil, len(visited), nil
}

// chainTo rebuilds start..target from predecessor links.
func chainTo(pred map[string]string, start, target string) []string {
	chain := []string{target}
	for n := target; n != start; {
		n = pred[n]
		chain = append(chain, n)
	}
	slices.Reverse(chain)
	return chain
}
