// Package query implements the lazily-evaluated query builder.
//
// A Builder accumulates predicates, order keys, and a result window, then
// evaluates them against a fresh row snapshot pulled from its Source at
// execution time. Nothing is cached between executions: two Exec calls on
// the same builder re-read the source and may observe different states.
//
// EVALUATION ORDER:
//
// Exec always evaluates in this fixed order:
//  1. Filter the full snapshot by the AND of all predicates.
//  2. Sort by the accumulated order keys (stable, later keys break ties
//     of earlier keys; final tie-break is snapshot order).
//  3. Apply the offset/limit window over the sorted-filtered sequence.
//
// Count ignores the window entirely - it is the size of the filtered set.
//
// SEALED PREDICATES:
//
// Predicate is a sealed interface using the marker method pattern - only
// Compare, In, and Like implement it. This enables exhaustive type
// switches in the evaluator and keeps the predicate set closed.
//
// CHAINING AND ERRORS:
//
// Mutating methods return the same builder instance for chaining; Clone is
// the only way to fork. Because chaining methods cannot return errors, a
// predicate referencing an undeclared column sets a sticky error that the
// terminal methods (Exec, Count, First, ...) surface.
package query
