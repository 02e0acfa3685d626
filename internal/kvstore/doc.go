// Package kvstore provides the Badger-backed edge store for the composition
// graph.
//
// # Key layout
//
// Every key is a sequence of parts joined by a zero byte:
//
//	t/<tenant>/e/<edge id>                 -> JSON edge record
//	t/<tenant>/o/<parent>/<edge id>        -> (empty) outgoing index
//	t/<tenant>/i/<component>/<edge id>     -> (empty) incoming index
//	t/<tenant>/u/<parent>/<component>      -> edge id (uniqueness)
//	n/<tenant>                             -> (empty) tenant marker
//
// Badger keeps keys sorted bytewise, so the outgoing and incoming indexes give
// keyset pagination by edge id with a single seek.
//
// # Units of work
//
// Update holds a per-tenant mutex for the whole Badger read-write
// transaction. Two writers of the same tenant never interleave their reads and
// writes, so a cycle check done inside fn still holds at commit. Badger's own
// conflict detection stays active and surfaces as badger.ErrConflict.
//
// The lock is in-process: two processes opening the same directory are
// already excluded by Badger's directory lock.
package kvstore
