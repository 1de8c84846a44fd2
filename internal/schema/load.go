package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tabular/internal/storage"
)

// Load reads a CUE schema definition from disk and builds a Schema.
//
// The expected shape:
//
//	tables: {
//		users: {
//			columns: ["id", "name", "age"]
//			storageName: "app_users"   // optional
//		}
//	}
//
// Table and column names are NFC-normalized so visually identical
// identifiers written in different Unicode forms compare equal.
//
// A malformed schema file is fatal: the schema is construction input, not
// a runtime definition that could be skipped.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Schema from raw CUE source. See Load for the shape.
func Parse(data []byte) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("tables"))
	if !tablesVal.Exists() {
		return nil, storage.NewConfiguration("schema has no tables field")
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	tables := make(map[string]*Table)
	for iter.Next() {
		name := norm.NFC.String(iter.Label())
		table, err := parseTable(name, iter.Value())
		if err != nil {
			return nil, err
		}
		if _, dup := tables[name]; dup {
			return nil, storage.NewConfiguration("duplicate table %q", name)
		}
		tables[name] = table
	}
	if len(tables) == 0 {
		return nil, storage.NewConfiguration("schema declares no tables")
	}

	return New(tables), nil
}

// parseTable decodes one table entry.
func parseTable(name string, v cue.Value) (*Table, error) {
	columnsVal := v.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return nil, storage.NewConfiguration("table %q has no columns field", name)
	}

	list, err := columnsVal.List()
	if err != nil {
		return nil, fmt.Errorf("table %q: columns is not a list: %w", name, err)
	}

	var columns []string
	seen := make(map[string]bool)
	for list.Next() {
		col, err := list.Value().String()
		if err != nil {
			return nil, fmt.Errorf("table %q: column name: %w", name, err)
		}
		col = norm.NFC.String(col)
		if col == "" {
			return nil, storage.NewConfiguration("table %q declares an empty column name", name)
		}
		if seen[col] {
			return nil, storage.NewConfiguration("table %q declares column %q twice", name, col)
		}
		seen[col] = true
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		return nil, storage.NewConfiguration("table %q declares no columns", name)
	}

	table := &Table{Name: name, Columns: columns}

	storageVal := v.LookupPath(cue.ParsePath("storageName"))
	if storageVal.Exists() {
		s, err := storageVal.String()
		if err != nil {
			return nil, fmt.Errorf("table %q: storageName: %w", name, err)
		}
		table.StorageName = norm.NFC.String(s)
	}

	return table, nil
}
