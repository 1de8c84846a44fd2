package migrate

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordsInEmissionOrder(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(discardLogger())

	require.NoError(t, rec.AddColumn(ctx, "users", "email", ColumnOptions{Type: "string", Default: ""}))
	require.NoError(t, rec.RemoveColumn(ctx, "users", "age"))
	require.NoError(t, rec.RenameColumn(ctx, "users", "name", "full_name"))

	ops := rec.Ops()
	require.Len(t, ops, 3)
	assert.Equal(t, OpAddColumn, ops[0].Kind)
	assert.Equal(t, OpRemoveColumn, ops[1].Kind)
	assert.Equal(t, OpRenameColumn, ops[2].Kind)
	assert.Equal(t, "full_name", ops[2].NewName)
}

func TestRecorder_RenderGolden(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(discardLogger())

	require.NoError(t, rec.AddColumn(ctx, "users", "email", ColumnOptions{Type: "string", Default: ""}))
	require.NoError(t, rec.AddColumn(ctx, "users", "active", ColumnOptions{Type: "bool"}))
	require.NoError(t, rec.RemoveColumn(ctx, "posts", "draft"))
	require.NoError(t, rec.RenameColumn(ctx, "users", "name", "full_name"))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "migration_plan", []byte(rec.Render()))
}
