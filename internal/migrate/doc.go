// Package migrate implements sequential schema migration.
//
// A Migration is a versioned pair of operation-producing procedures (Up,
// Down) run against an injected SchemaBuilder capability. The Runner
// applies migrations strictly in ascending version order and rolls them
// back in descending order, re-sorting the full set defensively on every
// invocation regardless of input order.
//
// Whether a run is a dry run or a real one is decided entirely by which
// SchemaBuilder the caller injects: Recorder only logs and records
// operation descriptions, Applier mutates live schema state and rewrites
// stored rows. The runner's algorithm is identical either way.
//
// SEQUENCING:
//
// Producers may perform I/O through the SchemaBuilder. The runner always
// waits for one producer to complete before starting the next, because
// later migrations may assume schema state left by earlier ones.
// Migrations never run in parallel.
//
// The runner computes its plan from the full migration set each
// invocation; it keeps no applied-versions ledger. Rollback therefore
// previews the top-N migrations by version whether or not they were ever
// applied.
package migrate
