// Package engine binds a declared schema to storage adapters and hands out
// per-table repositories.
//
// The Engine is the composition root: constructed once from an immutable
// Schema and a table-to-adapter map, it validates the binding up front and
// caches one Repository per table. The Repository is the per-table facade
// adding column validation over its adapter and producing query builders.
//
// Thread-safety model: the schema and adapter map never change after
// construction, and the repository cache is populated under a mutex on
// first access, so a cached Repository can be shared freely. Concurrent
// mutation of the backing store is the adapter's responsibility.
package engine
