package engine

import (
	"context"

	"github.com/roach88/tabular/internal/query"
	"github.com/roach88/tabular/internal/schema"
	"github.com/roach88/tabular/internal/storage"
)

// Repository is the per-table facade: it validates fields against the
// table's declared column set and delegates storage to one adapter.
//
// Validation happens before the adapter is touched, so a rejected call
// never changes committed state.
type Repository struct {
	table   *schema.Table
	adapter storage.Adapter
}

// NewRepository creates a repository for one table metadata entry and one
// adapter.
func NewRepository(table *schema.Table, adapter storage.Adapter) *Repository {
	return &Repository{table: table, adapter: adapter}
}

// Table returns the repository's table metadata.
func (r *Repository) Table() *schema.Table {
	return r.table
}

// Create validates the fields and inserts the row, returning the stored
// row including its allocated id.
func (r *Repository) Create(ctx context.Context, data storage.Row) (storage.Row, error) {
	if err := r.validateFields(data); err != nil {
		return nil, err
	}
	return r.adapter.Insert(ctx, data)
}

// BatchInsert validates every element, then delegates to the adapter.
// Adapter batch semantics apply: first failure aborts, prior elements stay
// committed.
func (r *Repository) BatchInsert(ctx context.Context, rows []storage.Row) ([]storage.Row, error) {
	for _, row := range rows {
		if err := r.validateFields(row); err != nil {
			return nil, err
		}
	}
	return r.adapter.BatchInsert(ctx, rows)
}

// FindByID passes through to the adapter; not-found surfaces unchanged.
func (r *Repository) FindByID(ctx context.Context, id any) (storage.Row, error) {
	return r.adapter.FindByID(ctx, id)
}

// FindAll passes through to the adapter, returning rows in creation order.
func (r *Repository) FindAll(ctx context.Context) ([]storage.Row, error) {
	return r.adapter.FindAll(ctx)
}

// Update validates the patch fields and merges the patch onto the stored
// row: patch fields overwrite, unspecified fields are retained.
func (r *Repository) Update(ctx context.Context, id any, patch storage.Row) (storage.Row, error) {
	if err := r.validateFields(patch); err != nil {
		return nil, err
	}
	return r.adapter.Update(ctx, id, patch)
}

// BatchUpdate validates every patch, then applies entries sequentially in
// input order. Any entry's failure propagates immediately and stops
// processing of subsequent entries.
func (r *Repository) BatchUpdate(ctx context.Context, entries []storage.BatchUpdateEntry) ([]storage.Row, error) {
	for _, e := range entries {
		if err := r.validateFields(e.Patch); err != nil {
			return nil, err
		}
	}
	return r.adapter.BatchUpdate(ctx, entries)
}

// Delete removes the row with the given id.
func (r *Repository) Delete(ctx context.Context, id any) error {
	return r.adapter.Delete(ctx, id)
}

// Query returns a fresh builder bound to this repository's FindAll as its
// row source. The snapshot is re-read on every evaluation, never cached
// across builder mutations.
func (r *Repository) Query() *query.Builder {
	return query.New(r.table.Name, r.table.Columns, r.FindAll)
}

// validateFields rejects any field outside the declared column set.
func (r *Repository) validateFields(data storage.Row) error {
	for field := range data {
		if !r.table.HasColumn(field) {
			return storage.NewUnknownField(r.table.Name, field)
		}
	}
	return nil
}
