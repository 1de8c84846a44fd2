package migrate

import "context"

// ColumnOptions carries the optional attributes of an added column.
type ColumnOptions struct {
	// Default is the value backfilled into existing rows; nil means no
	// backfill.
	Default any

	// Type is an advisory type name (for example "string" or "int").
	Type string
}

// SchemaBuilder is the capability a migration producer drives. The core
// consumes it; implementations decide whether operations are recorded
// (dry run) or applied to live schema state.
type SchemaBuilder interface {
	AddColumn(ctx context.Context, table, column string, opts ColumnOptions) error
	RemoveColumn(ctx context.Context, table, column string) error
	RenameColumn(ctx context.Context, table, oldName, newName string) error
}

// Producer is one direction of a migration: it emits schema operations
// against the builder and may suspend for I/O. A synchronous migration is
// simply one that completes immediately.
type Producer func(ctx context.Context, sb SchemaBuilder) error

// Migration is a versioned, reversible schema change.
//
// A well-formed migration has a positive version unique across the set, a
// non-empty name, and both producers. Malformed definitions are excluded
// with a warning rather than aborting the run; duplicate versions are a
// fatal configuration error.
type Migration struct {
	Version int64
	Name    string
	Up      Producer
	Down    Producer
}

// wellFormed reports whether the definition satisfies the migration
// contract.
func (m Migration) wellFormed() bool {
	return m.Version > 0 && m.Name != "" && m.Up != nil && m.Down != nil
}

// Applied identifies one migration visited by an apply or rollback run.
type Applied struct {
	Version int64  `json:"version"`
	Name    string `json:"name"`
}
