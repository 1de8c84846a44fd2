package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/tabular/internal/schema"
	"github.com/roach88/tabular/internal/storage"
)

// Applier is the real-execution SchemaBuilder: it mutates live schema
// state and rewrites stored rows through the bound adapters.
//
// Adding a column with a default backfills every existing row; removing or
// renaming a column rewrites every row document, which needs the adapter's
// Replace capability (a merge-only Update cannot drop a field).
type Applier struct {
	schema   *schema.Schema
	adapters map[string]storage.Adapter
	log      *slog.Logger
}

var _ SchemaBuilder = (*Applier)(nil)

// NewApplier creates an applier over the given schema and adapter map.
func NewApplier(s *schema.Schema, adapters map[string]storage.Adapter, log *slog.Logger) *Applier {
	if log == nil {
		log = slog.Default()
	}
	return &Applier{schema: s, adapters: adapters, log: log}
}

// AddColumn implements SchemaBuilder. Appends the column to the table's
// declared set and backfills the default (when given) into existing rows.
func (a *Applier) AddColumn(ctx context.Context, table, column string, opts ColumnOptions) error {
	meta, adapter, err := a.bind(table)
	if err != nil {
		return err
	}
	if meta.HasColumn(column) {
		return storage.NewValidation(table, fmt.Sprintf("column %q already declared", column))
	}

	meta.Columns = append(meta.Columns, column)
	a.log.Info("added column", "table", table, "column", column, "type", opts.Type)

	if opts.Default == nil {
		return nil
	}
	rows, err := adapter.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	for _, row := range rows {
		if _, err := adapter.Update(ctx, row.ID(), storage.Row{column: opts.Default}); err != nil {
			return fmt.Errorf("backfill %s.%s: %w", table, column, err)
		}
	}
	return nil
}

// RemoveColumn implements SchemaBuilder. Drops the column from the
// declared set and strips the field from every stored row.
func (a *Applier) RemoveColumn(ctx context.Context, table, column string) error {
	meta, adapter, err := a.bind(table)
	if err != nil {
		return err
	}
	if !meta.HasColumn(column) {
		return storage.NewUnknownField(table, column)
	}
	if column == storage.IDField {
		return storage.NewValidation(table, "the id column cannot be removed")
	}

	if err := a.rewriteRows(ctx, table, adapter, func(row storage.Row) {
		delete(row, column)
	}); err != nil {
		return fmt.Errorf("remove column %s.%s: %w", table, column, err)
	}

	meta.Columns = slices.DeleteFunc(meta.Columns, func(c string) bool { return c == column })
	a.log.Info("removed column", "table", table, "column", column)
	return nil
}

// RenameColumn implements SchemaBuilder. Renames the declared column in
// place and rewrites the field key in every stored row.
func (a *Applier) RenameColumn(ctx context.Context, table, oldName, newName string) error {
	meta, adapter, err := a.bind(table)
	if err != nil {
		return err
	}
	if !meta.HasColumn(oldName) {
		return storage.NewUnknownField(table, oldName)
	}
	if meta.HasColumn(newName) {
		return storage.NewValidation(table, fmt.Sprintf("column %q already declared", newName))
	}
	if oldName == storage.IDField {
		return storage.NewValidation(table, "the id column cannot be renamed")
	}

	if err := a.rewriteRows(ctx, table, adapter, func(row storage.Row) {
		if v, ok := row[oldName]; ok {
			delete(row, oldName)
			row[newName] = v
		}
	}); err != nil {
		return fmt.Errorf("rename column %s.%s: %w", table, oldName, err)
	}

	meta.Columns[slices.Index(meta.Columns, oldName)] = newName
	a.log.Info("renamed column", "table", table, "from", oldName, "to", newName)
	return nil
}

// bind resolves a table to its metadata and adapter.
func (a *Applier) bind(table string) (*schema.Table, storage.Adapter, error) {
	meta, err := a.schema.Table(table)
	if err != nil {
		return nil, nil, err
	}
	adapter, ok := a.adapters[table]
	if !ok {
		return nil, nil, storage.NewConfiguration("no adapter bound for table %q", table)
	}
	return meta, adapter, nil
}

// rewriteRows applies transform to every stored row and replaces each
// document wholesale.
func (a *Applier) rewriteRows(ctx context.Context, table string, adapter storage.Adapter, transform func(storage.Row)) error {
	replacer, ok := adapter.(storage.Replacer)
	if !ok {
		return storage.NewConfiguration("adapter for table %q does not support row replacement", table)
	}
	rows, err := adapter.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		next := row.Copy()
		transform(next)
		if _, err := replacer.Replace(ctx, next.ID(), next); err != nil {
			return err
		}
	}
	return nil
}
