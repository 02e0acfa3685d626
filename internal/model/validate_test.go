package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEdge() ComponentEdge {
	return ComponentEdge{
		ID:                 "e1",
		TenantID:           "acme",
		ParentProductID:    "kit",
		ComponentProductID: "widget",
		Quantity:           1,
	}
}

func TestValidateEdge_Valid(t *testing.T) {
	assert.NoError(t, ValidateEdge(validEdge()))
}

func TestValidateEdge_Rules(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*ComponentEdge)
		field string
		rule  string
	}{
		{"missing tenant", func(e *ComponentEdge) { e.TenantID = "" }, "tenant_id", "required"},
		{"missing parent", func(e *ComponentEdge) { e.ParentProductID = "" }, "parent_product_id", "required"},
		{"self reference", func(e *ComponentEdge) { e.ComponentProductID = e.ParentProductID }, "component_product_id", "nefield"},
		{"zero quantity", func(e *ComponentEdge) { e.Quantity = 0 }, "quantity", "min"},
		{"negative order", func(e *ComponentEdge) { e.SortOrder = -1 }, "sort_order", "min"},
		{"long notes", func(e *ComponentEdge) { e.Notes = strings.Repeat("x", 4097) }, "notes", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEdge()
			tt.edit(&e)

			err := ValidateEdge(e)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.rule, verr.Fields[0].Rule)
		})
	}
}

func TestValidatePatch(t *testing.T) {
	zero, two, neg := 0, 2, -1
	notes := "fragile"

	assert.NoError(t, ValidatePatch(EdgePatch{}))
	assert.NoError(t, ValidatePatch(EdgePatch{Quantity: &two, SortOrder: &zero, Notes: &notes}))
	assert.Error(t, ValidatePatch(EdgePatch{Quantity: &zero}))
	assert.Error(t, ValidatePatch(EdgePatch{SortOrder: &neg}))
}

func TestValidationError_Message(t *testing.T) {
	e := validEdge()
	e.Quantity = 0
	err := ValidateEdge(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must satisfy min=1")
}

func TestEdgePatch_Apply(t *testing.T) {
	qty := 5
	notes := "cafe\u0301"
	order := 3
	p := EdgePatch{Quantity: &qty, Notes: &notes, SortOrder: &order}

	got := p.Apply(validEdge())
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, "caf\u00e9", got.Notes)
	assert.Equal(t, 0, got.SortOrder, "sort order is applied by the service, not by Apply")
	assert.False(t, p.Empty())
	assert.True(t, EdgePatch{}.Empty())
}
