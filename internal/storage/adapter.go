package storage

import "context"

// IDMode selects the id allocation policy of an adapter instance.
type IDMode int

const (
	// IDSequential allocates 1 + max existing id on insert. A deleted id
	// is never handed out again.
	IDSequential IDMode = iota

	// IDClient requires the caller to supply the id on insert. An id
	// that is already present fails with a duplicate-key error.
	IDClient
)

// String returns the mode name for logs and error messages.
func (m IDMode) String() string {
	switch m {
	case IDSequential:
		return "sequential"
	case IDClient:
		return "client"
	default:
		return "unknown"
	}
}

// BatchUpdateEntry pairs a row id with the partial row to merge onto it.
type BatchUpdateEntry struct {
	ID    any
	Patch Row
}

// Adapter is the uniform row-storage capability. Each instance stores rows
// for exactly one logical table.
//
// Every call takes a context because a backend may be remote; the memory
// backend simply ignores it. Calls are synchronous and independent - no
// result is cached between calls.
//
// Concurrent use of one adapter is the adapter's own responsibility; the
// engine and repositories above it never lock.
type Adapter interface {
	// Insert stores a new row and returns it including its id.
	// Under IDSequential any caller-supplied id is replaced by the
	// allocated one; under IDClient a missing or duplicate id is an error.
	Insert(ctx context.Context, row Row) (Row, error)

	// FindByID returns the row with the given id, or a not-found error.
	FindByID(ctx context.Context, id any) (Row, error)

	// FindAll returns every row in creation order.
	FindAll(ctx context.Context) ([]Row, error)

	// Update merges patch onto the stored row (patch fields overwrite,
	// unspecified fields are retained) and returns the merged row.
	Update(ctx context.Context, id any, patch Row) (Row, error)

	// Delete removes the row with the given id.
	Delete(ctx context.Context, id any) error

	// BatchInsert inserts rows one by one in input order, aborting on the
	// first failure. Rows inserted before the failure stay committed.
	BatchInsert(ctx context.Context, rows []Row) ([]Row, error)

	// BatchUpdate applies entries one by one in input order, aborting on
	// the first failure. Results align with the input order.
	BatchUpdate(ctx context.Context, entries []BatchUpdateEntry) ([]Row, error)
}

// Replacer is an optional capability: replacing a stored row wholesale
// instead of merging. The migration applier needs it to drop or rename
// fields, which a merge-only Update cannot express. Both built-in adapters
// implement it.
type Replacer interface {
	// Replace overwrites the stored row with the given one, keeping the id.
	Replace(ctx context.Context, id any, row Row) (Row, error)
}
