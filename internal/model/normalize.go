package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeID canonicalizes a product, tenant or edge identifier.
//
// Stores compare identifiers bytewise, so two IDs that render identically but
// differ in Unicode composition would otherwise be distinct graph nodes and
// defeat cycle detection. IDs are NFC-normalized and trimmed.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// NormalizeText NFC-normalizes free text such as notes.
// Surrounding whitespace is kept; notes are displayed as entered.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// Normalize returns e with all identifiers and notes normalized.
func Normalize(e ComponentEdge) ComponentEdge {
	e.ID = NormalizeID(e.ID)
	e.TenantID = NormalizeID(e.TenantID)
	e.ParentProductID = NormalizeID(e.ParentProductID)
	e.ComponentProductID = NormalizeID(e.ComponentProductID)
	e.Notes = NormalizeText(e.Notes)
	return e
}
