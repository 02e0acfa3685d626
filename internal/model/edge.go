package model

// DefaultQuantity is used when a caller adds a component without a quantity.
const DefaultQuantity = 1

// ComponentEdge is a single "parent contains component" record.
type ComponentEdge struct {
	ID                 string `json:"id"`
	TenantID           string `json:"tenant_id" validate:"required,max=255"`
	ParentProductID    string `json:"parent_product_id" validate:"required,max=255"`
	ComponentProductID string `json:"component_product_id" validate:"required,max=255,nefield=ParentProductID"`
	Quantity           int    `json:"quantity" validate:"min=1"`
	SortOrder          int    `json:"sort_order" validate:"min=0"`
	Notes              string `json:"notes,omitempty" validate:"max=4096"`
}

// EdgePatch holds the mutable fields of an edge. Nil fields are left unchanged.
// Endpoints are immutable after creation and deliberately absent here.
type EdgePatch struct {
	Quantity  *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	SortOrder *int    `json:"sort_order,omitempty" validate:"omitempty,min=0"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=4096"`
}

// Empty reports whether the patch changes nothing.
func (p EdgePatch) Empty() bool {
	return p.Quantity == nil && p.SortOrder == nil && p.Notes == nil
}

// Apply returns a copy of e with the patch's quantity and notes applied.
// SortOrder is not applied: moving an edge renumbers its siblings too, which
// only the service can do.
func (p EdgePatch) Apply(e ComponentEdge) ComponentEdge {
	if p.Quantity != nil {
		e.Quantity = *p.Quantity
	}
	if p.Notes != nil {
		e.Notes = NormalizeText(*p.Notes)
	}
	return e
}
