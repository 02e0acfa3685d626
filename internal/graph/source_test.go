package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/bomgraph/internal/model"
)

// memSource is an in-memory EdgeSource that pages by edge id and counts
// fetches.
type memSource struct {
	edges   []model.ComponentEdge
	fetches int
	failOn  string
}

// newMemSource builds a source from "parent>component" pairs.
func newMemSource(pairs ...string) *memSource {
	s := &memSource{}
	for i, p := range pairs {
		var parent, component string
		for j := 0; j < len(p); j++ {
			if p[j] == '>' {
				parent, component = p[:j], p[j+1:]
				break
			}
		}
		s.edges = append(s.edges, model.ComponentEdge{
			ID:                 fmt.Sprintf("e%04d", i),
			ParentProductID:    parent,
			ComponentProductID: component,
			Quantity:           1,
		})
	}
	return s
}

func (s *memSource) Outgoing(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error) {
	return s.page(productID, afterID, limit, func(e model.ComponentEdge) string { return e.ParentProductID })
}

func (s *memSource) Incoming(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error) {
	return s.page(productID, afterID, limit, func(e model.ComponentEdge) string { return e.ComponentProductID })
}

func (s *memSource) page(productID, afterID string, limit int, key func(model.ComponentEdge) string) ([]model.ComponentEdge, error) {
	s.fetches++
	if s.failOn != "" && productID == s.failOn {
		return nil, fmt.Errorf("page fetch for %s failed", productID)
	}
	var out []model.ComponentEdge
	for _, e := range s.edges {
		if key(e) == productID && e.ID > afterID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// incomingOnly hides outgoing edges, like a store whose parent index lost
// its entries while the component index kept them.
type incomingOnly struct {
	*memSource
}

func (s incomingOnly) Outgoing(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error) {
	s.fetches++
	return nil, nil
}
