package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/roach88/tabular/internal/storage"
)

// Adapter implements storage.Adapter on top of a Store, bound to one
// logical table. Every method is an independent database round trip; no
// state is cached between calls.
type Adapter struct {
	store    *Store
	table    string
	physical string
	mode     storage.IDMode
}

var _ storage.Adapter = (*Adapter)(nil)
var _ storage.Replacer = (*Adapter)(nil)

// Insert implements storage.Adapter. The row and its allocated id are
// written in one transaction, so an aborted call never burns an id.
func (a *Adapter) Insert(ctx context.Context, row storage.Row) (storage.Row, error) {
	tx, err := a.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stored := row.Copy()
	switch a.mode {
	case storage.IDSequential:
		id, err := a.nextID(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("insert: %w", err)
		}
		stored[storage.IDField] = id
	case storage.IDClient:
		id, err := storage.NormalizeID(row[storage.IDField])
		if err != nil {
			return nil, storage.NewValidation(a.table, "client-supplied id required: "+err.Error())
		}
		stored[storage.IDField] = id
	}

	key, err := encodeID(stored[storage.IDField])
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}
	doc, err := marshalRow(stored)
	if err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %q (row_id, doc) VALUES (?, ?)`, a.physical),
		key, string(doc))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.NewDuplicateKey(a.table, stored[storage.IDField])
		}
		return nil, fmt.Errorf("insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert: commit: %w", err)
	}
	return stored, nil
}

// FindByID implements storage.Adapter.
func (a *Adapter) FindByID(ctx context.Context, id any) (storage.Row, error) {
	key, err := encodeID(id)
	if err != nil {
		return nil, storage.NewRowNotFound(a.table, id)
	}

	var doc string
	err = a.store.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT doc FROM %q WHERE row_id = ?`, a.physical),
		key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NewRowNotFound(a.table, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find by id: %w", err)
	}
	return unmarshalRow([]byte(doc))
}

// FindAll implements storage.Adapter. Rows come back in creation order via
// the AUTOINCREMENT position column. The result is non-nil even when empty.
func (a *Adapter) FindAll(ctx context.Context) ([]storage.Row, error) {
	rows, err := a.store.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT doc FROM %q ORDER BY pos`, a.physical))
	if err != nil {
		return nil, fmt.Errorf("find all: %w", err)
	}
	defer rows.Close()

	out := []storage.Row{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("find all: scan: %w", err)
		}
		row, err := unmarshalRow([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("find all: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find all: rows iteration: %w", err)
	}
	return out, nil
}

// Update implements storage.Adapter. Read-merge-write inside one
// transaction; patch fields overwrite, unspecified fields are retained.
func (a *Adapter) Update(ctx context.Context, id any, patch storage.Row) (storage.Row, error) {
	return a.rewrite(ctx, id, func(current storage.Row) storage.Row {
		merged := current.Copy()
		for k, v := range patch {
			if k == storage.IDField {
				continue // ids are immutable
			}
			merged[k] = v
		}
		return merged
	})
}

// Replace implements storage.Replacer: the stored document is overwritten
// wholesale, keeping only the id.
func (a *Adapter) Replace(ctx context.Context, id any, row storage.Row) (storage.Row, error) {
	return a.rewrite(ctx, id, func(current storage.Row) storage.Row {
		replaced := row.Copy()
		replaced[storage.IDField] = current[storage.IDField]
		return replaced
	})
}

// Delete implements storage.Adapter. The freed id is never reallocated
// because the sequence counter only moves forward.
func (a *Adapter) Delete(ctx context.Context, id any) error {
	key, err := encodeID(id)
	if err != nil {
		return storage.NewRowNotFound(a.table, id)
	}

	res, err := a.store.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE row_id = ?`, a.physical), key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.NewRowNotFound(a.table, id)
	}
	return nil
}

// BatchInsert implements storage.Adapter. Elements run independently in
// input order; the first failure aborts the batch with earlier elements
// already committed.
func (a *Adapter) BatchInsert(ctx context.Context, rows []storage.Row) ([]storage.Row, error) {
	out := make([]storage.Row, 0, len(rows))
	for _, r := range rows {
		stored, err := a.Insert(ctx, r)
		if err != nil {
			return out, err
		}
		out = append(out, stored)
	}
	return out, nil
}

// BatchUpdate implements storage.Adapter.
func (a *Adapter) BatchUpdate(ctx context.Context, entries []storage.BatchUpdateEntry) ([]storage.Row, error) {
	out := make([]storage.Row, 0, len(entries))
	for _, e := range entries {
		updated, err := a.Update(ctx, e.ID, e.Patch)
		if err != nil {
			return out, err
		}
		out = append(out, updated)
	}
	return out, nil
}

// rewrite loads the row with the given id, transforms it, and writes the
// result back, all in one transaction.
func (a *Adapter) rewrite(ctx context.Context, id any, transform func(storage.Row) storage.Row) (storage.Row, error) {
	key, err := encodeID(id)
	if err != nil {
		return nil, storage.NewRowNotFound(a.table, id)
	}

	tx, err := a.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var doc string
	err = tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT doc FROM %q WHERE row_id = ?`, a.physical),
		key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NewRowNotFound(a.table, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}

	current, err := unmarshalRow([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	next := transform(current)

	encoded, err := marshalRow(next)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %q SET doc = ? WHERE row_id = ?`, a.physical),
		string(encoded), key); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update: commit: %w", err)
	}
	return next, nil
}

// nextID advances and returns this table's sequence counter within tx.
func (a *Adapter) nextID(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO id_sequences (tbl, last) VALUES (?, 0)
		ON CONFLICT(tbl) DO NOTHING
	`, a.physical); err != nil {
		return 0, fmt.Errorf("seed sequence: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE id_sequences SET last = last + 1 WHERE tbl = ?
	`, a.physical); err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}

	var last int64
	if err := tx.QueryRowContext(ctx, `
		SELECT last FROM id_sequences WHERE tbl = ?
	`, a.physical).Scan(&last); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	return last, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
