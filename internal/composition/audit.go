package composition

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/bomgraph/internal/graph"
	"github.com/roach88/bomgraph/internal/model"
)

// auditConcurrency bounds how many tenants AuditAll scans at once.
const auditConcurrency = 4

// OrderGap is a parent whose sibling positions are not exactly 0..n-1.
type OrderGap struct {
	ParentID string `json:"parent_id"`
	Orders   []int  `json:"orders"`
}

// AuditReport summarizes the health of one tenant's graph.
type AuditReport struct {
	TenantID  string        `json:"tenant_id"`
	Edges     int           `json:"edges"`
	Products  int           `json:"products"`
	Cycles    []graph.Cycle `json:"cycles"`
	OrderGaps []OrderGap    `json:"order_gaps"`
}

// Healthy reports whether the audit found nothing to fix.
func (r AuditReport) Healthy() bool {
	return len(r.Cycles) == 0 && len(r.OrderGaps) == 0
}

// Audit scans every edge of a tenant and reports loops already present in
// stored data and parents whose positions are not contiguous. It never
// writes.
func (s *Service) Audit(ctx context.Context, tenantID string) (report AuditReport, err error) {
	start := time.Now()
	defer func() { s.finish("audit", start, err) }()

	tenantID = model.NormalizeID(tenantID)
	if err := requireTenant(tenantID); err != nil {
		return AuditReport{}, err
	}

	report = AuditReport{TenantID: tenantID, OrderGaps: []OrderGap{}}
	adj := graph.NewAdjacency()
	orders := make(map[string][]int)
	pageSize := s.detector.PageSize()

	err = s.store.View(ctx, tenantID, func(r model.EdgeReader) error {
		after := ""
		for {
			page, err := r.Edges(ctx, after, pageSize)
			if err != nil {
				return err
			}
			adj.Add(page...)
			for _, e := range page {
				orders[e.ParentProductID] = append(orders[e.ParentProductID], e.SortOrder)
			}
			report.Edges += len(page)
			if len(page) < pageSize {
				return nil
			}
			after = page[len(page)-1].ID
		}
	})
	if err != nil {
		return AuditReport{}, classify(tenantID, "audit", err)
	}

	report.Products = adj.Nodes()
	report.Cycles = adj.FindCycles()

	parents := make([]string, 0, len(orders))
	for p := range orders {
		parents = append(parents, p)
	}
	slices.Sort(parents)
	for _, p := range parents {
		o := orders[p]
		slices.Sort(o)
		if !contiguous(o) {
			report.OrderGaps = append(report.OrderGaps, OrderGap{ParentID: p, Orders: o})
		}
	}

	if report.Healthy() {
		s.logger.Info("audit clean", "tenant", tenantID, "edges", report.Edges)
	} else {
		s.logger.Warn("audit found problems",
			"tenant", tenantID,
			"cycles", len(report.Cycles),
			"order_gaps", len(report.OrderGaps),
		)
	}
	return report, nil
}

// AuditAll audits every tenant known to the store, a few at a time.
// Reports are returned in tenant order. The first failure cancels the rest.
func (s *Service) AuditAll(ctx context.Context) ([]AuditReport, error) {
	tenants, err := s.store.Tenants(ctx)
	if err != nil {
		return nil, classify("", "list tenants", err)
	}

	reports := make([]AuditReport, len(tenants))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(auditConcurrency)
	for i, tenant := range tenants {
		g.Go(func() error {
			r, err := s.Audit(ctx, tenant)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// RepairOrder rewrites parentID's positions to 0..n-1, keeping their
// relative order. Returns the number of edges rewritten.
func (s *Service) RepairOrder(ctx context.Context, tenantID, parentID string) (changed int, err error) {
	start := time.Now()
	defer func() { s.finish("repair_order", start, err) }()

	tenantID = model.NormalizeID(tenantID)
	if err := requireTenant(tenantID); err != nil {
		return 0, err
	}

	err = s.store.Update(ctx, tenantID, func(tx model.EdgeTx) error {
		siblings, err := tx.Children(ctx, parentID)
		if err != nil {
			return err
		}
		changed, err = renumber(ctx, tx, siblings)
		return err
	})
	if err != nil {
		return 0, classify(tenantID, "repair order", err)
	}

	if changed > 0 {
		s.logger.Info("sibling order repaired", "tenant", tenantID, "parent", parentID, "changed", changed)
	}
	return changed, nil
}

// contiguous reports whether sorted orders are exactly 0..n-1.
func contiguous(sorted []int) bool {
	for i, o := range sorted {
		if o != i {
			return false
		}
	}
	return true
}
