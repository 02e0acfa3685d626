// Package store provides the SQLite-backed edge store for the composition graph.
//
// The store keeps one table, component_edges, with:
//   - UNIQUE(tenant_id, parent_product_id, component_product_id): a component
//     appears at most once directly under a parent
//   - CHECK constraints mirroring "no self-loop" and "quantity >= 1"
//   - indexes for outgoing (parent) and incoming (component) traversal, both
//     scoped by tenant_id
//
// # Units of work
//
// Update runs fn inside a transaction started with BEGIN IMMEDIATE. The write
// lock is taken before fn reads anything, so a cycle check performed inside fn
// cannot be invalidated by a concurrent writer before fn inserts. This holds
// across processes sharing the database file, not only across goroutines.
//
// View runs fn against the connection pool without a transaction.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity for host-schema FKs
//
// Rows are scanned into model.ComponentEdge at this boundary; nothing untyped
// leaves the package.
package store
