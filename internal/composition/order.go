package composition

import (
	"context"

	"github.com/roach88/bomgraph/internal/model"
)

// renumber assigns positions 0..n-1 to edges in slice order and writes only
// the edges whose stored position differs. Returns the number written.
func renumber(ctx context.Context, tx model.EdgeTx, ordered []model.ComponentEdge) (int, error) {
	changed := 0
	for i, e := range ordered {
		if e.SortOrder == i {
			continue
		}
		if err := tx.SetSortOrder(ctx, e.ID, i); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// moveTo returns siblings with edgeID moved to position target, clamped to
// [0, len-1]. The input must be in display order and is not modified.
func moveTo(siblings []model.ComponentEdge, edgeID string, target int) []model.ComponentEdge {
	from := -1
	for i, e := range siblings {
		if e.ID == edgeID {
			from = i
			break
		}
	}
	out := make([]model.ComponentEdge, 0, len(siblings))
	if from < 0 {
		return append(out, siblings...)
	}

	target = max(0, min(target, len(siblings)-1))
	moved := siblings[from]
	for i, e := range siblings {
		if i != from {
			out = append(out, e)
		}
	}
	out = append(out[:target], append([]model.ComponentEdge{moved}, out[target:]...)...)
	return out
}

// applyOrder returns siblings with the listed IDs first, in list order,
// followed by the rest in their current order. Unknown IDs and repeats are
// ignored.
func applyOrder(siblings []model.ComponentEdge, ids []string) []model.ComponentEdge {
	byID := make(map[string]model.ComponentEdge, len(siblings))
	for _, e := range siblings {
		byID[e.ID] = e
	}

	out := make([]model.ComponentEdge, 0, len(siblings))
	placed := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = model.NormalizeID(id)
		e, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		out = append(out, e)
	}
	for _, e := range siblings {
		if !placed[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
