// Package graph answers reachability questions over a tenant's composition
// graph.
//
// Detector decides whether a candidate edge parent -> component would close a
// loop. It walks the stored edges on demand through an EdgeSource in pages,
// never loading the whole graph, and keeps a visited set so it terminates even
// on data that is already cyclic.
//
// FindCycles runs Tarjan's strongly connected components algorithm over a
// materialized edge list. It is used by audits to report loops that exist in
// stored data.
package graph
