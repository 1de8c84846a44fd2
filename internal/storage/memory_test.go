package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	for i := 1; i <= 3; i++ {
		row, err := m.Insert(ctx, Row{"name": "user"})
		require.NoError(t, err)
		assert.Equal(t, int64(i), row["id"])
	}
}

func TestMemory_SequentialIDs_NeverReused(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	first, err := m.Insert(ctx, Row{"name": "a"})
	require.NoError(t, err)
	second, err := m.Insert(ctx, Row{"name": "b"})
	require.NoError(t, err)

	// Delete the max id, then insert again. The freed id must not come back.
	require.NoError(t, m.Delete(ctx, second["id"]))
	require.NoError(t, m.Delete(ctx, first["id"]))

	third, err := m.Insert(ctx, Row{"name": "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), third["id"])
}

func TestMemory_SequentialIDs_IgnoresCallerID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	row, err := m.Insert(ctx, Row{"id": int64(99), "name": "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
}

func TestMemory_ClientIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDClient)

	row, err := m.Insert(ctx, Row{"id": "alice", "name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", row["id"])

	got, err := m.FindByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got["name"])
}

func TestMemory_ClientIDs_Duplicate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDClient)

	_, err := m.Insert(ctx, Row{"id": int64(1), "name": "a"})
	require.NoError(t, err)

	_, err = m.Insert(ctx, Row{"id": int64(1), "name": "b"})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestMemory_ClientIDs_Missing(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDClient)

	_, err := m.Insert(ctx, Row{"name": "a"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestMemory_FindAll_CreationOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	names := []string{"a", "b", "c"}
	for _, n := range names {
		_, err := m.Insert(ctx, Row{"name": n})
		require.NoError(t, err)
	}

	rows, err := m.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, n := range names {
		assert.Equal(t, n, rows[i]["name"])
	}
}

func TestMemory_FindAll_EmptyNotNil(t *testing.T) {
	rows, err := NewMemory("users", IDSequential).FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMemory_Update_MergesPatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	row, err := m.Insert(ctx, Row{"name": "Alice", "age": int64(25)})
	require.NoError(t, err)

	updated, err := m.Update(ctx, row["id"], Row{"age": int64(26)})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated["name"], "unspecified fields are retained")
	assert.Equal(t, int64(26), updated["age"])
}

func TestMemory_Update_IDImmutable(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	row, err := m.Insert(ctx, Row{"name": "a"})
	require.NoError(t, err)

	updated, err := m.Update(ctx, row["id"], Row{"id": int64(42), "name": "b"})
	require.NoError(t, err)
	assert.Equal(t, row["id"], updated["id"])
}

func TestMemory_Update_NotFound(t *testing.T) {
	_, err := NewMemory("users", IDSequential).Update(context.Background(), int64(7), Row{"name": "x"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemory_Delete_NotFound(t *testing.T) {
	err := NewMemory("users", IDSequential).Delete(context.Background(), int64(7))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemory_Replace_DropsOldFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	row, err := m.Insert(ctx, Row{"name": "Alice", "age": int64(25)})
	require.NoError(t, err)

	replaced, err := m.Replace(ctx, row["id"], Row{"name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, row["id"], replaced["id"])
	_, hasAge := replaced["age"]
	assert.False(t, hasAge)
}

func TestMemory_BatchInsert_AbortsOnFirstFailure(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDClient)

	inserted, err := m.BatchInsert(ctx, []Row{
		{"id": int64(1), "name": "a"},
		{"id": int64(1), "name": "dup"},
		{"id": int64(2), "name": "never"},
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
	assert.Len(t, inserted, 1)

	// The element before the failure stays committed; the one after was
	// never attempted.
	rows, err := m.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMemory_BatchUpdate_InputOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	a, _ := m.Insert(ctx, Row{"name": "a"})
	b, _ := m.Insert(ctx, Row{"name": "b"})

	out, err := m.BatchUpdate(ctx, []BatchUpdateEntry{
		{ID: b["id"], Patch: Row{"name": "b2"}},
		{ID: a["id"], Patch: Row{"name": "a2"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b2", out[0]["name"])
	assert.Equal(t, "a2", out[1]["name"])
}

func TestMemory_BatchUpdate_StopsAfterFailure(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	a, _ := m.Insert(ctx, Row{"name": "a"})
	b, _ := m.Insert(ctx, Row{"name": "b"})

	out, err := m.BatchUpdate(ctx, []BatchUpdateEntry{
		{ID: a["id"], Patch: Row{"name": "a2"}},
		{ID: int64(99), Patch: Row{"name": "ghost"}},
		{ID: b["id"], Patch: Row{"name": "b2"}},
	})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Len(t, out, 1)

	// Entry after the failure was never applied.
	got, err := m.FindByID(ctx, b["id"])
	require.NoError(t, err)
	assert.Equal(t, "b", got["name"])
}

func TestMemory_InsertReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("users", IDSequential)

	row, err := m.Insert(ctx, Row{"name": "a"})
	require.NoError(t, err)
	row["name"] = "mutated"

	got, err := m.FindByID(ctx, row["id"])
	require.NoError(t, err)
	assert.Equal(t, "a", got["name"])
}
