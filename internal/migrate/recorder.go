package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// OpKind names a schema operation.
type OpKind string

const (
	OpAddColumn    OpKind = "add_column"
	OpRemoveColumn OpKind = "remove_column"
	OpRenameColumn OpKind = "rename_column"
)

// Operation is one recorded schema operation description.
type Operation struct {
	Kind    OpKind
	Table   string
	Column  string
	NewName string // rename only
	Options ColumnOptions
}

// String renders the operation in plan form.
func (op Operation) String() string {
	switch op.Kind {
	case OpAddColumn:
		var attrs []string
		if op.Options.Type != "" {
			attrs = append(attrs, "type="+op.Options.Type)
		}
		if op.Options.Default != nil {
			attrs = append(attrs, fmt.Sprintf("default=%#v", op.Options.Default))
		}
		if len(attrs) > 0 {
			return fmt.Sprintf("add_column %s.%s (%s)", op.Table, op.Column, strings.Join(attrs, ", "))
		}
		return fmt.Sprintf("add_column %s.%s", op.Table, op.Column)
	case OpRemoveColumn:
		return fmt.Sprintf("remove_column %s.%s", op.Table, op.Column)
	case OpRenameColumn:
		return fmt.Sprintf("rename_column %s.%s -> %s", op.Table, op.Column, op.NewName)
	default:
		return fmt.Sprintf("unknown operation %q", string(op.Kind))
	}
}

// Recorder is the dry-run SchemaBuilder: it records operation descriptions
// and logs them without touching any schema state. It never fails.
type Recorder struct {
	log *slog.Logger
	ops []Operation
}

var _ SchemaBuilder = (*Recorder)(nil)

// NewRecorder creates a recorder logging through the given logger;
// nil means slog.Default().
func NewRecorder(log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{log: log}
}

// AddColumn implements SchemaBuilder.
func (r *Recorder) AddColumn(ctx context.Context, table, column string, opts ColumnOptions) error {
	r.record(Operation{Kind: OpAddColumn, Table: table, Column: column, Options: opts})
	return nil
}

// RemoveColumn implements SchemaBuilder.
func (r *Recorder) RemoveColumn(ctx context.Context, table, column string) error {
	r.record(Operation{Kind: OpRemoveColumn, Table: table, Column: column})
	return nil
}

// RenameColumn implements SchemaBuilder.
func (r *Recorder) RenameColumn(ctx context.Context, table, oldName, newName string) error {
	r.record(Operation{Kind: OpRenameColumn, Table: table, Column: oldName, NewName: newName})
	return nil
}

func (r *Recorder) record(op Operation) {
	r.log.Info("dry run: "+string(op.Kind), "operation", op.String())
	r.ops = append(r.ops, op)
}

// Ops returns the operations recorded so far, in emission order.
func (r *Recorder) Ops() []Operation {
	out := make([]Operation, len(r.ops))
	copy(out, r.ops)
	return out
}

// Render returns the recorded plan, one operation per line.
func (r *Recorder) Render() string {
	var b strings.Builder
	for _, op := range r.ops {
		b.WriteString(op.String())
		b.WriteByte('\n')
	}
	return b.String()
}
