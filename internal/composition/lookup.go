package composition

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/bomgraph/internal/metrics"
	"github.com/roach88/bomgraph/internal/model"
)

// ContainerLookup answers "which sets directly contain this product?".
//
// The lookup is single-hop: it returns direct parents only, not every
// ancestor.
type ContainerLookup struct {
	store   model.EdgeStore
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewContainerLookup creates a read-only lookup over store.
func NewContainerLookup(store model.EdgeStore, logger *slog.Logger, m *metrics.Recorder) *ContainerLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContainerLookup{store: store, logger: logger, metrics: m}
}

// Containers returns the sorted, distinct ParentProductIDs of edges whose
// component is componentID. An unknown product yields an empty slice.
func (l *ContainerLookup) Containers(ctx context.Context, tenantID, componentID string) (parents []string, err error) {
	start := time.Now()
	defer func() { l.metrics.Observe("containers", resultLabel(err), time.Since(start)) }()

	tenantID = model.NormalizeID(tenantID)
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}

	err = l.store.View(ctx, tenantID, func(r model.EdgeReader) error {
		var err error
		parents, err = r.Parents(ctx, componentID)
		return err
	})
	if err != nil {
		return nil, classify(tenantID, "containers", err)
	}
	l.logger.Debug("containers looked up", "tenant", tenantID, "component", componentID, "count", len(parents))
	return parents, nil
}
