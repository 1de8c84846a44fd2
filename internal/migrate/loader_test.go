package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMigrationFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir_ParsesDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "0001_add_email.yaml", `
version: 1
name: add email to users
up:
  - op: add_column
    table: users
    column: email
    type: string
    default: ""
down:
  - op: remove_column
    table: users
    column: email
`)
	writeMigrationFile(t, dir, "0002_rename_name.yaml", `
version: 2
name: rename name to full_name
up:
  - op: rename_column
    table: users
    from: name
    to: full_name
down:
  - op: rename_column
    table: users
    from: full_name
    to: name
`)

	migrations, err := LoadDir(dir, discardLogger())
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "add email to users", migrations[0].Name)
	assert.Equal(t, int64(2), migrations[1].Version)

	// The loaded producers replay the declared operations in order.
	rec := NewRecorder(discardLogger())
	require.NoError(t, migrations[0].Up(context.Background(), rec))
	require.NoError(t, migrations[1].Up(context.Background(), rec))
	ops := rec.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, OpAddColumn, ops[0].Kind)
	assert.Equal(t, "email", ops[0].Column)
	assert.Equal(t, "", ops[0].Options.Default)
	assert.Equal(t, OpRenameColumn, ops[1].Kind)
	assert.Equal(t, "full_name", ops[1].NewName)
}

func TestLoadDir_SkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "0001_good.yaml", `
version: 1
name: good
up: []
down: []
`)
	writeMigrationFile(t, dir, "0002_no_name.yaml", `
version: 2
up: []
down: []
`)
	writeMigrationFile(t, dir, "0003_bad_yaml.yaml", "version: [unclosed")
	writeMigrationFile(t, dir, "0004_unknown_op.yaml", `
version: 4
name: unknown op
up:
  - op: drop_table
    table: users
down: []
`)

	migrations, err := LoadDir(dir, discardLogger())
	require.NoError(t, err, "malformed files do not abort the load")
	require.Len(t, migrations, 1)
	assert.Equal(t, int64(1), migrations[0].Version)
}

func TestLoadDir_IgnoresNonYAML(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "README.md", "not a migration")
	writeMigrationFile(t, dir, "0001_ok.yml", `
version: 1
name: ok
up: []
down: []
`)

	migrations, err := LoadDir(dir, discardLogger())
	require.NoError(t, err)
	assert.Len(t, migrations, 1)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"), discardLogger())
	require.Error(t, err)
}
