package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/bomgraph/internal/model"
)

// edgeTxn implements model.EdgeTx for one tenant on top of a Badger txn.
//
// Badger allows a single open iterator per read-write transaction, so every
// method closes its iterator before issuing point reads.
type edgeTxn struct {
	txn      *badger.Txn
	tenantID string
}

// Outgoing returns a page of edges whose parent is productID, ordered by id.
func (t *edgeTxn) Outgoing(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error) {
	ids, err := t.scanIDs(ctx, outPrefix(t.tenantID, model.NormalizeID(productID)), afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("outgoing edges: %w", err)
	}
	return t.load(ids, "outgoing edges")
}

// Incoming returns a page of edges whose component is productID, ordered by id.
func (t *edgeTxn) Incoming(ctx context.Context, productID, afterID string, limit int) ([]model.ComponentEdge, error) {
	ids, err := t.scanIDs(ctx, inPrefix(t.tenantID, model.NormalizeID(productID)), afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("incoming edges: %w", err)
	}
	return t.load(ids, "incoming edges")
}

// Edges returns a page of all edges of the tenant, ordered by id.
func (t *edgeTxn) Edges(ctx context.Context, afterID string, limit int) ([]model.ComponentEdge, error) {
	prefix := edgePrefix(t.tenantID)
	edges := []model.ComponentEdge{}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	start := append(bytes.Clone(prefix), afterID...)
	for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("tenant edges: %w", err)
		}
		item := it.Item()
		if afterID != "" && bytes.Equal(item.Key(), start) {
			continue
		}
		var e model.ComponentEdge
		if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &e) }); err != nil {
			return nil, fmt.Errorf("tenant edges: decode %s: %w", lastPart(item.Key()), err)
		}
		edges = append(edges, e)
		if limit > 0 && len(edges) == limit {
			break
		}
	}
	return edges, nil
}

// Children returns all edges under parentID ordered by sort order, then id.
func (t *edgeTxn) Children(ctx context.Context, parentID string) ([]model.ComponentEdge, error) {
	edges, err := t.Outgoing(ctx, parentID, "", 0)
	if err != nil {
		return nil, fmt.Errorf("children: %w", err)
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].SortOrder != edges[j].SortOrder {
			return edges[i].SortOrder < edges[j].SortOrder
		}
		return edges[i].ID < edges[j].ID
	})
	return edges, nil
}

// Edge retrieves a single edge by id.
// Returns model.ErrEdgeNotFound if the id does not exist in this tenant.
func (t *edgeTxn) Edge(ctx context.Context, id string) (model.ComponentEdge, error) {
	e, err := t.get(model.NormalizeID(id))
	if err != nil {
		return model.ComponentEdge{}, fmt.Errorf("read edge %s: %w", id, err)
	}
	return e, nil
}

// CountChildren returns the number of edges under parentID.
func (t *edgeTxn) CountChildren(ctx context.Context, parentID string) (int, error) {
	ids, err := t.scanIDs(ctx, outPrefix(t.tenantID, model.NormalizeID(parentID)), "", 0)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return len(ids), nil
}

// Parents returns the distinct parents that directly contain componentID.
func (t *edgeTxn) Parents(ctx context.Context, componentID string) ([]string, error) {
	edges, err := t.Incoming(ctx, componentID, "", 0)
	if err != nil {
		return nil, fmt.Errorf("query parents: %w", err)
	}
	seen := make(map[string]bool, len(edges))
	parents := []string{}
	for _, e := range edges {
		if !seen[e.ParentProductID] {
			seen[e.ParentProductID] = true
			parents = append(parents, e.ParentProductID)
		}
	}
	sort.Strings(parents)
	return parents, nil
}

// Insert writes a new edge and its index entries.
//
// The tenant always comes from the unit of work. An existing
// (parent, component) pair is reported as model.ErrDuplicateEdge.
func (t *edgeTxn) Insert(ctx context.Context, e model.ComponentEdge) error {
	e = model.Normalize(e)
	e.TenantID = t.tenantID

	if _, err := t.get(e.ID); err == nil {
		return fmt.Errorf("insert edge: id %s already exists", e.ID)
	} else if !errors.Is(err, model.ErrEdgeNotFound) {
		return fmt.Errorf("insert edge: %w", err)
	}

	pk := pairKey(t.tenantID, e.ParentProductID, e.ComponentProductID)
	switch _, err := t.txn.Get(pk); {
	case err == nil:
		return fmt.Errorf("insert edge: %s -> %s: %w", e.ParentProductID, e.ComponentProductID, model.ErrDuplicateEdge)
	case !errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("insert edge: %w", err)
	}

	if err := t.put(e); err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}
	for _, kv := range [][2][]byte{
		{outKey(t.tenantID, e.ParentProductID, e.ID), nil},
		{inKey(t.tenantID, e.ComponentProductID, e.ID), nil},
		{pk, []byte(e.ID)},
		{tenantKey(t.tenantID), nil},
	} {
		if err := t.txn.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("insert edge: %w", err)
		}
	}
	return nil
}

// Update rewrites quantity, sort order and notes of an existing edge.
// Endpoints are never updated.
func (t *edgeTxn) Update(ctx context.Context, e model.ComponentEdge) error {
	e = model.Normalize(e)
	cur, err := t.get(e.ID)
	if err != nil {
		return fmt.Errorf("update edge %s: %w", e.ID, err)
	}
	cur.Quantity = e.Quantity
	cur.SortOrder = e.SortOrder
	cur.Notes = e.Notes
	if err := t.put(cur); err != nil {
		return fmt.Errorf("update edge %s: %w", e.ID, err)
	}
	return nil
}

// SetSortOrder rewrites a single edge's position.
func (t *edgeTxn) SetSortOrder(ctx context.Context, id string, order int) error {
	id = model.NormalizeID(id)
	cur, err := t.get(id)
	if err != nil {
		return fmt.Errorf("set sort order %s: %w", id, err)
	}
	cur.SortOrder = order
	if err := t.put(cur); err != nil {
		return fmt.Errorf("set sort order %s: %w", id, err)
	}
	return nil
}

// Delete removes an edge and its index entries, and drops the tenant from
// Tenants once its last edge is gone.
func (t *edgeTxn) Delete(ctx context.Context, id string) error {
	id = model.NormalizeID(id)
	cur, err := t.get(id)
	if err != nil {
		return fmt.Errorf("delete edge %s: %w", id, err)
	}
	for _, k := range [][]byte{
		edgeKey(t.tenantID, id),
		outKey(t.tenantID, cur.ParentProductID, id),
		inKey(t.tenantID, cur.ComponentProductID, id),
		pairKey(t.tenantID, cur.ParentProductID, cur.ComponentProductID),
	} {
		if err := t.txn.Delete(k); err != nil {
			return fmt.Errorf("delete edge %s: %w", id, err)
		}
	}

	// The tenant marker lives only as long as the tenant has edges.
	rest, err := t.scanIDs(ctx, edgePrefix(t.tenantID), "", 1)
	if err != nil {
		return fmt.Errorf("delete edge %s: %w", id, err)
	}
	if len(rest) == 0 {
		if err := t.txn.Delete(tenantKey(t.tenantID)); err != nil {
			return fmt.Errorf("delete edge %s: %w", id, err)
		}
	}
	return nil
}

// scanIDs walks an index prefix in key order starting after afterID and
// returns at most limit edge ids (all of them when limit <= 0).
func (t *edgeTxn) scanIDs(ctx context.Context, prefix []byte, afterID string, limit int) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	start := append(bytes.Clone(prefix), afterID...)
	var ids []string
	for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		key := it.Item().Key()
		if afterID != "" && bytes.Equal(key, start) {
			continue
		}
		ids = append(ids, string(key[len(prefix):]))
		if limit > 0 && len(ids) == limit {
			break
		}
	}
	return ids, nil
}

// load fetches edge records for ids, preserving order.
func (t *edgeTxn) load(ids []string, what string) ([]model.ComponentEdge, error) {
	edges := make([]model.ComponentEdge, 0, len(ids))
	for _, id := range ids {
		e, err := t.get(id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func (t *edgeTxn) get(id string) (model.ComponentEdge, error) {
	item, err := t.txn.Get(edgeKey(t.tenantID, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.ComponentEdge{}, model.ErrEdgeNotFound
	}
	if err != nil {
		return model.ComponentEdge{}, err
	}
	var e model.ComponentEdge
	if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &e) }); err != nil {
		return model.ComponentEdge{}, fmt.Errorf("decode edge %s: %w", id, err)
	}
	return e, nil
}

func (t *edgeTxn) put(e model.ComponentEdge) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode edge %s: %w", e.ID, err)
	}
	return t.txn.Set(edgeKey(t.tenantID, e.ID), data)
}
