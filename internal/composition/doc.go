// Package composition maintains the product composition graph: which
// products ("sets") directly contain which other products, in what quantity
// and display order.
//
// Service is the mutating surface. It guarantees, per tenant, that no product
// contains itself directly or transitively, that a component appears at most
// once directly under a parent, and that sibling positions stay 0..n-1.
// ContainerLookup answers single-hop reverse queries.
//
// Every failure is an *Error carrying an ErrorCode; use the Is* predicates to
// branch on it.
package composition
