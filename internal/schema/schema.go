// Package schema defines table metadata and the schema-definition loader.
//
// A Schema is the construction input of the engine: a mapping from logical
// table name to its declared columns and optional physical storage name.
// It is an immutable snapshot once the engine is built; only the migration
// applier mutates it, and only through the SchemaBuilder capability.
package schema

import (
	"slices"
	"sort"

	"github.com/roach88/tabular/internal/storage"
)

// Table is the metadata for one logical table.
type Table struct {
	// Name is the logical table name.
	Name string

	// Columns is the ordered list of declared column names.
	Columns []string

	// StorageName is the physical name in the backing store.
	// Empty means "same as Name".
	StorageName string
}

// HasColumn reports whether the column is declared on this table.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Physical returns the storage name, falling back to the logical name.
func (t *Table) Physical() string {
	if t.StorageName != "" {
		return t.StorageName
	}
	return t.Name
}

// Schema maps logical table names to their metadata.
type Schema struct {
	Tables map[string]*Table
}

// New creates a Schema from a table map. Each table's Name field is filled
// in from its map key.
func New(tables map[string]*Table) *Schema {
	for name, t := range tables {
		t.Name = name
	}
	return &Schema{Tables: tables}
}

// Table returns the metadata for a logical table name.
func (s *Schema) Table(name string) (*Table, error) {
	t, ok := s.Tables[name]
	if !ok {
		return nil, storage.NewTableNotFound(name, s.TableNames())
	}
	return t, nil
}

// TableNames returns all logical table names, sorted for stable output.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
