package engine

import (
	"sync"

	"github.com/roach88/tabular/internal/schema"
	"github.com/roach88/tabular/internal/storage"
)

// Engine binds a table-schema map to adapter instances and exposes cached
// per-table Repository handles.
type Engine struct {
	schema   *schema.Schema
	adapters map[string]storage.Adapter

	mu    sync.Mutex
	repos map[string]*Repository // populated lazily, one per table
}

// New creates an Engine. Every declared table must have a bound adapter;
// a missing adapter is a fatal configuration error naming the table.
func New(s *schema.Schema, adapters map[string]storage.Adapter) (*Engine, error) {
	for _, name := range s.TableNames() {
		if adapters[name] == nil {
			return nil, storage.NewConfiguration("no adapter bound for declared table %q", name)
		}
	}
	return &Engine{
		schema:   s,
		adapters: adapters,
		repos:    make(map[string]*Repository),
	}, nil
}

// Schema returns the engine's schema snapshot.
func (e *Engine) Schema() *schema.Schema {
	return e.schema
}

// From returns the Repository for a table. Repeated calls for the same
// table return the identical instance, so callers may hold and compare it.
func (e *Engine) From(table string) (*Repository, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if repo, ok := e.repos[table]; ok {
		return repo, nil
	}
	meta, err := e.schema.Table(table)
	if err != nil {
		return nil, err
	}
	repo := NewRepository(meta, e.adapters[table])
	e.repos[table] = repo
	return repo, nil
}

// Store returns the adapter bound to a table directly. Escape hatch for
// callers that need backend-specific behavior.
func (e *Engine) Store(table string) (storage.Adapter, error) {
	if _, err := e.schema.Table(table); err != nil {
		return nil, err
	}
	return e.adapters[table], nil
}
