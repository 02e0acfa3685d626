package composition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/bomgraph/internal/graph"
	"github.com/roach88/bomgraph/internal/metrics"
	"github.com/roach88/bomgraph/internal/model"
)

// Service is the only writer of composition edges.
//
// Every mutation is one unit of work on the EdgeStore. AddComponent runs the
// cycle check inside the same unit of work that inserts, so concurrent adds
// cannot both pass the check and together close a loop.
type Service struct {
	store    model.EdgeStore
	detector *graph.Detector
	ids      model.IDGenerator
	logger   *slog.Logger
	metrics  *metrics.Recorder
	lookup   *ContainerLookup
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator sets the edge ID source. Defaults to UUIDv7.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDetector replaces the cycle detector.
func WithDetector(d *graph.Detector) Option {
	return func(s *Service) { s.detector = d }
}

// New creates a Service over store.
func New(store model.EdgeStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		detector: graph.NewDetector(),
		ids:      model.UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lookup = NewContainerLookup(store, s.logger, s.metrics)
	return s
}

// AddRequest describes a component to place under a parent.
type AddRequest struct {
	ParentID    string `json:"parent_id"`
	ComponentID string `json:"component_id"`

	// Quantity defaults to 1 when zero. Negative values are rejected.
	Quantity int `json:"quantity"`

	Notes string `json:"notes,omitempty"`
}

// AddComponent places req.ComponentID directly under req.ParentID and
// returns the new edge ID. The new edge is appended after existing siblings.
//
// Rejections: SELF_REFERENCE, CYCLE_DETECTED (with the loop in Error.Path),
// DUPLICATE_EDGE and INVALID_ARGUMENT. Storage or traversal failures are
// STORAGE and leave the graph unchanged.
func (s *Service) AddComponent(ctx context.Context, tenantID string, req AddRequest) (edgeID string, err error) {
	start := time.Now()
	defer func() { s.finish("add_component", start, err) }()

	tenantID = model.NormalizeID(tenantID)
	parentID := model.NormalizeID(req.ParentID)
	componentID := model.NormalizeID(req.ComponentID)

	if parentID != "" && parentID == componentID {
		return "", newSelfReferenceError(tenantID, parentID)
	}
	if req.Quantity < 0 {
		return "", newInvalidArgumentError(tenantID,
			&model.ValidationError{Fields: []model.FieldError{{Field: "quantity", Rule: "min", Param: "1"}}})
	}
	qty := req.Quantity
	if qty == 0 {
		qty = model.DefaultQuantity
	}

	edge := model.ComponentEdge{
		ID:                 s.ids.Generate(),
		TenantID:           tenantID,
		ParentProductID:    parentID,
		ComponentProductID: componentID,
		Quantity:           qty,
		Notes:              model.NormalizeText(req.Notes),
	}
	if err := model.ValidateEdge(edge); err != nil {
		return "", newInvalidArgumentError(tenantID, err)
	}

	err = s.store.Update(ctx, tenantID, func(tx model.EdgeTx) error {
		r, err := s.detector.FindCycle(ctx, tx, parentID, componentID)
		s.metrics.CycleCheck(r.Cycle, r.Visited, err)
		if err != nil {
			return fmt.Errorf("cycle check: %w", err)
		}
		s.logger.Debug("cycle check finished",
			"tenant", tenantID,
			"parent", parentID,
			"component", componentID,
			"cycle", r.Cycle,
			"visited", r.Visited,
		)
		if r.Cycle {
			return newCycleError(tenantID, parentID, componentID, r.Path)
		}

		n, err := tx.CountChildren(ctx, parentID)
		if err != nil {
			return err
		}
		edge.SortOrder = n

		if err := tx.Insert(ctx, edge); err != nil {
			if errors.Is(err, model.ErrDuplicateEdge) {
				return newDuplicateError(tenantID, parentID, componentID, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		err = classify(tenantID, "add component", err)
		s.logger.Info("component rejected",
			"tenant", tenantID,
			"parent", parentID,
			"component", componentID,
			"code", Code(err),
		)
		return "", err
	}

	s.logger.Info("component added",
		"tenant", tenantID,
		"parent", parentID,
		"component", componentID,
		"edge_id", edge.ID,
		"sort_order", edge.SortOrder,
	)
	return edge.ID, nil
}

// UpdateComponent changes quantity, notes and/or position of an edge.
//
// Endpoints are immutable, so no cycle check runs. A new SortOrder moves the
// edge within its siblings (clamped to the sibling range) and renumbers the
// others so positions stay contiguous.
func (s *Service) UpdateComponent(ctx context.Context, tenantID, edgeID string, patch model.EdgePatch) (err error) {
	start := time.Now()
	defer func() { s.finish("update_component", start, err) }()

	tenantID = model.NormalizeID(tenantID)
	edgeID = model.NormalizeID(edgeID)
	if err := requireTenant(tenantID); err != nil {
		return err
	}
	if err := model.ValidatePatch(patch); err != nil {
		return newInvalidArgumentError(tenantID, err)
	}

	err = s.store.Update(ctx, tenantID, func(tx model.EdgeTx) error {
		cur, err := tx.Edge(ctx, edgeID)
		if err != nil {
			return s.edgeErr(tenantID, edgeID, err)
		}

		next := patch.Apply(cur)
		if next != cur {
			if err := tx.Update(ctx, next); err != nil {
				return s.edgeErr(tenantID, edgeID, err)
			}
		}

		if patch.SortOrder != nil {
			siblings, err := tx.Children(ctx, cur.ParentProductID)
			if err != nil {
				return err
			}
			if _, err := renumber(ctx, tx, moveTo(siblings, edgeID, *patch.SortOrder)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return classify(tenantID, "update component", err)
	}

	s.logger.Info("component updated", "tenant", tenantID, "edge_id", edgeID)
	return nil
}

// RemoveComponent deletes an edge and closes the gap in its siblings'
// positions. Removal never creates a cycle, so none is checked.
func (s *Service) RemoveComponent(ctx context.Context, tenantID, edgeID string) (err error) {
	start := time.Now()
	defer func() { s.finish("remove_component", start, err) }()

	tenantID = model.NormalizeID(tenantID)
	edgeID = model.NormalizeID(edgeID)
	if err := requireTenant(tenantID); err != nil {
		return err
	}

	var parentID string
	err = s.store.Update(ctx, tenantID, func(tx model.EdgeTx) error {
		cur, err := tx.Edge(ctx, edgeID)
		if err != nil {
			return s.edgeErr(tenantID, edgeID, err)
		}
		parentID = cur.ParentProductID

		if err := tx.Delete(ctx, edgeID); err != nil {
			return s.edgeErr(tenantID, edgeID, err)
		}

		siblings, err := tx.Children(ctx, parentID)
		if err != nil {
			return err
		}
		_, err = renumber(ctx, tx, siblings)
		return err
	})
	if err != nil {
		return classify(tenantID, "remove component", err)
	}

	s.logger.Info("component removed", "tenant", tenantID, "parent", parentID, "edge_id", edgeID)
	return nil
}

// ReorderComponents sets the display order of parentID's components.
//
// Listed edges take positions 0..k-1 in list order; unlisted siblings follow
// in their previous relative order. IDs that are unknown or belong to another
// parent are ignored, and a repeated ID keeps its first position. Only edges
// whose position changes are written.
func (s *Service) ReorderComponents(ctx context.Context, tenantID, parentID string, orderedEdgeIDs []string) (err error) {
	start := time.Now()
	defer func() { s.finish("reorder_components", start, err) }()

	tenantID = model.NormalizeID(tenantID)
	parentID = model.NormalizeID(parentID)
	if err := requireTenant(tenantID); err != nil {
		return err
	}

	var changed int
	err = s.store.Update(ctx, tenantID, func(tx model.EdgeTx) error {
		siblings, err := tx.Children(ctx, parentID)
		if err != nil {
			return err
		}
		changed, err = renumber(ctx, tx, applyOrder(siblings, orderedEdgeIDs))
		return err
	})
	if err != nil {
		return classify(tenantID, "reorder components", err)
	}

	s.logger.Info("components reordered", "tenant", tenantID, "parent", parentID, "changed", changed)
	return nil
}

// GetComponents returns parentID's direct components in display order.
func (s *Service) GetComponents(ctx context.Context, tenantID, parentID string) (edges []model.ComponentEdge, err error) {
	start := time.Now()
	defer func() { s.finish("get_components", start, err) }()

	tenantID = model.NormalizeID(tenantID)
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}

	err = s.store.View(ctx, tenantID, func(r model.EdgeReader) error {
		var err error
		edges, err = r.Children(ctx, parentID)
		return err
	})
	if err != nil {
		return nil, classify(tenantID, "get components", err)
	}
	return edges, nil
}

// PreviewComponent reports whether AddComponent would reject the edge for a
// cycle, without writing anything. A self-reference is reported as a cycle
// with DirectionSelf.
func (s *Service) PreviewComponent(ctx context.Context, tenantID, parentID, componentID string) (r graph.Result, err error) {
	start := time.Now()
	defer func() { s.finish("preview_component", start, err) }()

	tenantID = model.NormalizeID(tenantID)
	if err := requireTenant(tenantID); err != nil {
		return graph.Result{}, err
	}

	err = s.store.View(ctx, tenantID, func(rd model.EdgeReader) error {
		var err error
		r, err = s.detector.FindCycle(ctx, rd, parentID, componentID)
		s.metrics.CycleCheck(r.Cycle, r.Visited, err)
		return err
	})
	if err != nil {
		return graph.Result{}, classify(tenantID, "preview component", err)
	}
	return r, nil
}

// Containers returns the sorted, distinct parents that directly contain
// componentID. See ContainerLookup.
func (s *Service) Containers(ctx context.Context, tenantID, componentID string) ([]string, error) {
	return s.lookup.Containers(ctx, tenantID, componentID)
}

// Lookup returns the service's ContainerLookup.
func (s *Service) Lookup() *ContainerLookup {
	return s.lookup
}

// edgeErr maps a missing edge to NOT_FOUND and leaves other errors alone.
func (s *Service) edgeErr(tenantID, edgeID string, err error) error {
	if errors.Is(err, model.ErrEdgeNotFound) {
		return newNotFoundError(tenantID, edgeID, err)
	}
	return err
}

func (s *Service) finish(op string, start time.Time, err error) {
	s.metrics.Observe(op, resultLabel(err), time.Since(start))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case IsStorage(err):
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}

func requireTenant(tenantID string) error {
	if tenantID == "" {
		return newInvalidArgumentError(tenantID,
			&model.ValidationError{Fields: []model.FieldError{{Field: "tenant_id", Rule: "required"}}})
	}
	return nil
}
