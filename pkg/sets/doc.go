// Package sets provides a generic set data structure implementing
// mathematical set operations with type safety through generics.
//
// HashSet is the hash-map-backed implementation with O(1) average-case
// operations and no ordering guarantees; it satisfies the Set[T]
// interface for callers that want to stay implementation-agnostic.
package sets
