// Package store provides the SQLite-backed storage adapter.
//
// It plays the role of the remote, latency-bound row store: every adapter
// call is an independent round trip through database/sql and takes a
// context. Rows are stored as canonical JSON documents in one SQLite table
// per logical table, with an AUTOINCREMENT position column preserving
// creation order.
//
// Sequential id allocation is backed by the id_sequences table, so the
// never-reuse guarantee survives process restarts.
package store
