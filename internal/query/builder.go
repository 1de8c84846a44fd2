package query

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/tabular/internal/storage"
)

// Direction orders a sort key ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderKey is one accumulated sort key. Later keys break ties of earlier
// keys.
type OrderKey struct {
	Field     string
	Direction Direction
}

// Source supplies the row snapshot a builder evaluates against. It is
// invoked fresh on every terminal call, never cached.
type Source func(ctx context.Context) ([]storage.Row, error)

// State is the accumulated builder state exposed by Build for inspection.
// Limit is -1 when unset.
type State struct {
	Predicates []Predicate
	Orders     []OrderKey
	Limit      int
	Offset     int
}

// Builder accumulates predicates, order keys, and a window, and evaluates
// them lazily. Mutating methods append to the builder and return the same
// instance for chaining; use Clone to fork.
type Builder struct {
	table   string
	columns []string
	source  Source

	preds  []Predicate
	orders []OrderKey
	limit  int // -1 = unset
	offset int

	err error // sticky: first invalid accumulation, surfaced by terminals
}

// New creates a builder for a table with the given declared columns and
// row source.
func New(table string, columns []string, source Source) *Builder {
	return &Builder{
		table:   table,
		columns: slices.Clone(columns),
		source:  source,
		limit:   -1,
	}
}

// Where appends a comparison predicate. Operators: =, !=, >, >=, <, <=.
// All predicates combine by logical AND.
func (b *Builder) Where(field string, op Operator, value any) *Builder {
	if !op.valid() {
		b.fail(storage.NewValidation(b.table, fmt.Sprintf("unknown operator %q", op)))
		return b
	}
	return b.addPredicate(Compare{Field: field, Op: op, Value: value})
}

// WhereEq is shorthand for Where(field, "=", value).
func (b *Builder) WhereEq(field string, value any) *Builder {
	return b.Where(field, OpEq, value)
}

// WhereNot is shorthand for Where(field, "!=", value).
func (b *Builder) WhereNot(field string, value any) *Builder {
	return b.Where(field, OpNeq, value)
}

// WhereIn appends a membership predicate.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	return b.addPredicate(In{Field: field, Values: slices.Clone(values)})
}

// WhereLike appends a %-wildcard string pattern predicate.
func (b *Builder) WhereLike(field, pattern string) *Builder {
	return b.addPredicate(Like{Field: field, Pattern: pattern})
}

// OrderBy appends a sort key, ascending unless a direction is given.
// Multiple calls produce a multi-key stable sort; the final tie-break is
// the snapshot's iteration order.
func (b *Builder) OrderBy(field string, direction ...Direction) *Builder {
	dir := Asc
	if len(direction) > 0 {
		dir = direction[0]
	}
	if dir != Asc && dir != Desc {
		b.fail(storage.NewValidation(b.table, fmt.Sprintf("unknown sort direction %q", dir)))
		return b
	}
	if !b.declared(field) {
		b.fail(storage.NewUnknownField(b.table, field))
		return b
	}
	b.orders = append(b.orders, OrderKey{Field: field, Direction: dir})
	return b
}

// Limit caps the result window size.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		b.fail(storage.NewValidation(b.table, "limit must not be negative"))
		return b
	}
	b.limit = n
	return b
}

// Offset skips the first n rows of the sorted-filtered sequence.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		b.fail(storage.NewValidation(b.table, "offset must not be negative"))
		return b
	}
	b.offset = n
	return b
}

// Page sets the window to page number (1-based) of the given size.
// Equivalent to Offset((page-1)*size).Limit(size).
func (b *Builder) Page(page, size int) *Builder {
	if page < 1 {
		b.fail(storage.NewValidation(b.table, "page number must be >= 1"))
		return b
	}
	if size < 0 {
		b.fail(storage.NewValidation(b.table, "page size must not be negative"))
		return b
	}
	return b.Offset((page - 1) * size).Limit(size)
}

// Clone deep-copies the accumulated state into an independent builder.
// Mutating either copy never affects the other.
func (b *Builder) Clone() *Builder {
	cp := &Builder{
		table:   b.table,
		columns: slices.Clone(b.columns),
		source:  b.source,
		orders:  slices.Clone(b.orders),
		limit:   b.limit,
		offset:  b.offset,
		err:     b.err,
	}
	cp.preds = make([]Predicate, len(b.preds))
	for i, p := range b.preds {
		if in, ok := p.(In); ok {
			p = In{Field: in.Field, Values: slices.Clone(in.Values)}
		}
		cp.preds[i] = p
	}
	return cp
}

// Build exposes the accumulated state for inspection and tooling.
func (b *Builder) Build() State {
	return State{
		Predicates: slices.Clone(b.preds),
		Orders:     slices.Clone(b.orders),
		Limit:      b.limit,
		Offset:     b.offset,
	}
}

// Exec evaluates the query: filter, then sort, then window.
func (b *Builder) Exec(ctx context.Context) ([]storage.Row, error) {
	filtered, err := b.filtered(ctx)
	if err != nil {
		return nil, err
	}
	b.sortRows(filtered)
	return b.window(filtered), nil
}

// Count returns the size of the filtered set. The limit/offset window
// never affects the count.
func (b *Builder) Count(ctx context.Context) (int, error) {
	filtered, err := b.filtered(ctx)
	if err != nil {
		return 0, err
	}
	return len(filtered), nil
}

// Exists reports whether any row matches. Short-circuits on the first
// match; never sorts.
func (b *Builder) Exists(ctx context.Context) (bool, error) {
	if b.err != nil {
		return false, b.err
	}
	rows, err := b.source(ctx)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if b.rowMatches(row) {
			return true, nil
		}
	}
	return false, nil
}

// First returns the first element of Exec, or nil with no error when the
// result is empty.
func (b *Builder) First(ctx context.Context) (storage.Row, error) {
	rows, err := b.Exec(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FirstOrFail returns the first element of Exec, or a not-found error when
// the result is empty.
func (b *Builder) FirstOrFail(ctx context.Context) (storage.Row, error) {
	row, err := b.First(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, storage.NewNoResults(b.table)
	}
	return row, nil
}

func (b *Builder) addPredicate(p Predicate) *Builder {
	if field := predicateField(p); !b.declared(field) {
		b.fail(storage.NewUnknownField(b.table, field))
		return b
	}
	b.preds = append(b.preds, p)
	return b
}

func (b *Builder) declared(field string) bool {
	return slices.Contains(b.columns, field)
}

// fail records the first accumulation error; later ones are dropped.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// filtered re-reads the snapshot and applies the AND of all predicates.
func (b *Builder) filtered(ctx context.Context) ([]storage.Row, error) {
	if b.err != nil {
		return nil, b.err
	}
	rows, err := b.source(ctx)
	if err != nil {
		return nil, err
	}
	out := []storage.Row{}
	for _, row := range rows {
		if b.rowMatches(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (b *Builder) rowMatches(row storage.Row) bool {
	for _, p := range b.preds {
		if !matches(p, row) {
			return false
		}
	}
	return true
}

// sortRows applies the accumulated order keys as one stable multi-key
// sort. Unordered value pairs compare equal, leaving snapshot order.
func (b *Builder) sortRows(rows []storage.Row) {
	if len(b.orders) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range b.orders {
			c, ok := compareValues(rows[i][key.Field], rows[j][key.Field])
			if !ok || c == 0 {
				continue
			}
			if key.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// window applies offset then limit over the sorted-filtered sequence.
func (b *Builder) window(rows []storage.Row) []storage.Row {
	if b.offset >= len(rows) {
		return []storage.Row{}
	}
	rows = rows[b.offset:]
	if b.limit >= 0 && b.limit < len(rows) {
		rows = rows[:b.limit]
	}
	return rows
}
