// Package storage defines the uniform row-storage capability that every
// backend implements, plus the Row type and the shared error taxonomy.
//
// An Adapter stores rows for exactly one logical table. Two implementations
// exist:
//   - Memory (this package): volatile, process-local, creation-ordered.
//   - store.Adapter (internal/store): SQLite-backed, every call is an
//     independent remote round trip taking a context.
//
// ID ALLOCATION:
//
// ID allocation is a policy of the adapter instance, not of the caller:
//   - IDSequential: the adapter allocates 1 + max existing id, backed by a
//     monotonic counter so deleted ids are never reused.
//   - IDClient: the caller supplies the id; inserting an id that is already
//     present fails with a duplicate-key error.
//
// BATCH SEMANTICS:
//
// Batch operations execute each element independently in input order and
// abort on the first failure. Elements committed before the failing one
// remain in storage; there is no batch rollback. Callers needing
// all-or-nothing semantics must compensate externally.
package storage
