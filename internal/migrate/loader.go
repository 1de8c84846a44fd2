package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileDef is the on-disk shape of one migration definition.
type fileDef struct {
	Version int64   `yaml:"version"`
	Name    string  `yaml:"name"`
	Up      []opDef `yaml:"up"`
	Down    []opDef `yaml:"down"`
}

// opDef is one declarative schema operation inside a migration file.
type opDef struct {
	Op      string `yaml:"op"`
	Table   string `yaml:"table"`
	Column  string `yaml:"column"`
	Default any    `yaml:"default"`
	Type    string `yaml:"type"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
}

// LoadDir scans a directory for *.yaml / *.yml migration definitions and
// builds the migration set. The directory path is always passed in
// explicitly; there is no working-directory convention.
//
// Files load in filename order, but the order is informational only - the
// runner re-sorts by version anyway. A malformed file (bad YAML, missing
// version or name, unknown operation) is skipped with a warning and does
// not abort loading of the rest, mirroring the runner's own handling of
// malformed definitions.
func LoadDir(dir string, log *slog.Logger) ([]Migration, error) {
	if log == nil {
		log = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var migrations []Migration
	for _, name := range names {
		path := filepath.Join(dir, name)
		m, err := loadFile(path)
		if err != nil {
			log.Warn("skipping malformed migration file", "file", path, "error", err)
			continue
		}
		migrations = append(migrations, m)
	}
	return migrations, nil
}

// loadFile parses one migration definition file.
func loadFile(path string) (Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Migration{}, err
	}

	var def fileDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Migration{}, fmt.Errorf("parse yaml: %w", err)
	}
	if def.Version <= 0 {
		return Migration{}, fmt.Errorf("version must be a positive integer, got %d", def.Version)
	}
	if def.Name == "" {
		return Migration{}, fmt.Errorf("name must be a non-empty string")
	}
	for _, op := range append(append([]opDef{}, def.Up...), def.Down...) {
		if err := op.validate(); err != nil {
			return Migration{}, err
		}
	}

	return Migration{
		Version: def.Version,
		Name:    def.Name,
		Up:      replay(def.Up),
		Down:    replay(def.Down),
	}, nil
}

// validate checks an operation's shape at load time so a bad file is
// rejected as a whole instead of failing mid-run.
func (op opDef) validate() error {
	switch OpKind(op.Op) {
	case OpAddColumn, OpRemoveColumn:
		if op.Table == "" || op.Column == "" {
			return fmt.Errorf("%s requires table and column", op.Op)
		}
	case OpRenameColumn:
		if op.Table == "" || op.From == "" || op.To == "" {
			return fmt.Errorf("rename_column requires table, from, and to")
		}
	default:
		return fmt.Errorf("unknown operation %q", op.Op)
	}
	return nil
}

// replay turns a declarative operation list into a producer that emits the
// operations against the injected SchemaBuilder in order.
func replay(ops []opDef) Producer {
	return func(ctx context.Context, sb SchemaBuilder) error {
		for _, op := range ops {
			var err error
			switch OpKind(op.Op) {
			case OpAddColumn:
				err = sb.AddColumn(ctx, op.Table, op.Column, ColumnOptions{
					Default: op.Default,
					Type:    op.Type,
				})
			case OpRemoveColumn:
				err = sb.RemoveColumn(ctx, op.Table, op.Column)
			case OpRenameColumn:
				err = sb.RenameColumn(ctx, op.Table, op.From, op.To)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
}
