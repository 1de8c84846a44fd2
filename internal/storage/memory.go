package storage

import (
	"context"
	"sync"
)

// Memory is the volatile in-memory adapter. Rows live in a slice in
// creation order with an id index alongside.
//
// All methods are safe for concurrent use via an internal mutex; the
// mutex protects this adapter's own state only, callers get no
// cross-adapter or cross-call isolation.
type Memory struct {
	table string
	mode  IDMode

	mu     sync.Mutex
	rows   []Row
	index  map[any]int // id -> position in rows
	lastID int64       // high-water mark for IDSequential, never decreases
}

// NewMemory creates an empty in-memory adapter for the given logical table.
func NewMemory(table string, mode IDMode) *Memory {
	return &Memory{
		table: table,
		mode:  mode,
		index: make(map[any]int),
	}
}

// Insert implements Adapter.
func (m *Memory) Insert(ctx context.Context, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := row.Copy()
	switch m.mode {
	case IDSequential:
		m.lastID++
		stored[IDField] = m.lastID
	case IDClient:
		id, err := NormalizeID(row[IDField])
		if err != nil {
			return nil, NewValidation(m.table, "client-supplied id required: "+err.Error())
		}
		if _, exists := m.index[id]; exists {
			return nil, NewDuplicateKey(m.table, id)
		}
		stored[IDField] = id
	}

	m.index[stored[IDField]] = len(m.rows)
	m.rows = append(m.rows, stored)
	return stored.Copy(), nil
}

// FindByID implements Adapter.
func (m *Memory) FindByID(ctx context.Context, id any) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, err := m.locate(id)
	if err != nil {
		return nil, err
	}
	return m.rows[pos].Copy(), nil
}

// FindAll implements Adapter. Returns rows in creation order; the result
// is always non-nil, even when empty.
func (m *Memory) FindAll(ctx context.Context) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Row, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Copy()
	}
	return out, nil
}

// Update implements Adapter.
func (m *Memory) Update(ctx context.Context, id any, patch Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, err := m.locate(id)
	if err != nil {
		return nil, err
	}
	merged := m.rows[pos].Copy()
	for k, v := range patch {
		if k == IDField {
			continue // ids are immutable
		}
		merged[k] = v
	}
	m.rows[pos] = merged
	return merged.Copy(), nil
}

// Replace implements Replacer.
func (m *Memory) Replace(ctx context.Context, id any, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, err := m.locate(id)
	if err != nil {
		return nil, err
	}
	stored := row.Copy()
	stored[IDField] = m.rows[pos][IDField]
	m.rows[pos] = stored
	return stored.Copy(), nil
}

// Delete implements Adapter. The freed id is never reallocated.
func (m *Memory) Delete(ctx context.Context, id any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, err := m.locate(id)
	if err != nil {
		return err
	}
	delete(m.index, m.rows[pos][IDField])
	m.rows = append(m.rows[:pos], m.rows[pos+1:]...)
	for i := pos; i < len(m.rows); i++ {
		m.index[m.rows[i][IDField]] = i
	}
	return nil
}

// BatchInsert implements Adapter. Aborts on the first failing element;
// earlier elements stay committed.
func (m *Memory) BatchInsert(ctx context.Context, rows []Row) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		stored, err := m.Insert(ctx, r)
		if err != nil {
			return out, err
		}
		out = append(out, stored)
	}
	return out, nil
}

// BatchUpdate implements Adapter. Aborts on the first failing entry;
// earlier entries stay committed.
func (m *Memory) BatchUpdate(ctx context.Context, entries []BatchUpdateEntry) ([]Row, error) {
	out := make([]Row, 0, len(entries))
	for _, e := range entries {
		updated, err := m.Update(ctx, e.ID, e.Patch)
		if err != nil {
			return out, err
		}
		out = append(out, updated)
	}
	return out, nil
}

// locate resolves an id to its slice position. Caller holds the mutex.
func (m *Memory) locate(id any) (int, error) {
	norm, err := NormalizeID(id)
	if err != nil {
		return 0, NewRowNotFound(m.table, id)
	}
	pos, ok := m.index[norm]
	if !ok {
		return 0, NewRowNotFound(m.table, norm)
	}
	return pos, nil
}
