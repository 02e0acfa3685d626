// Package model defines the composition graph's record types and the storage
// contract every edge store implements.
//
// A ComponentEdge states that a parent ("set") product contains a component
// product. Edges are the only persistent entity; products are opaque foreign
// keys owned by the host platform.
//
// # Boundary rules
//
//   - Stores map rows to ComponentEdge before anything else sees them.
//   - IDs and notes are NFC-normalized on the way in (see Normalize).
//   - Stores report ErrEdgeNotFound and ErrDuplicateEdge; every other failure
//     is an infrastructure error.
//
// Two implementations exist: internal/store (SQLite) and internal/kvstore
// (Badger).
package model
