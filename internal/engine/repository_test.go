package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabular/internal/query"
	"github.com/roach88/tabular/internal/schema"
	"github.com/roach88/tabular/internal/storage"
)

func newUsersRepo(t *testing.T, mode storage.IDMode) *Repository {
	t.Helper()
	meta := &schema.Table{Name: "users", Columns: []string{"id", "name", "age"}}
	return NewRepository(meta, storage.NewMemory("users", mode))
}

func TestRepository_CreateThenFindByID(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []storage.IDMode{storage.IDSequential, storage.IDClient} {
		t.Run(mode.String(), func(t *testing.T) {
			repo := newUsersRepo(t, mode)

			data := storage.Row{"name": "Alice", "age": int64(25)}
			if mode == storage.IDClient {
				data["id"] = int64(10)
			}

			created, err := repo.Create(ctx, data)
			require.NoError(t, err)
			require.NotNil(t, created["id"])

			got, err := repo.FindByID(ctx, created["id"])
			require.NoError(t, err)
			assert.Equal(t, created, got)
		})
	}
}

func TestRepository_Create_RejectsUnknownField(t *testing.T) {
	ctx := context.Background()
	repo := newUsersRepo(t, storage.IDSequential)

	_, err := repo.Create(ctx, storage.Row{"name": "Alice", "email": "a@example.com"})
	require.Error(t, err)
	assert.True(t, storage.IsValidation(err))

	// The rejected create never reached the adapter.
	rows, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepository_Update_ValidatesPatch(t *testing.T) {
	ctx := context.Background()
	repo := newUsersRepo(t, storage.IDSequential)

	row, err := repo.Create(ctx, storage.Row{"name": "Alice", "age": int64(25)})
	require.NoError(t, err)

	_, err = repo.Update(ctx, row["id"], storage.Row{"nickname": "Al"})
	require.Error(t, err)
	assert.True(t, storage.IsValidation(err))

	updated, err := repo.Update(ctx, row["id"], storage.Row{"age": int64(26)})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated["name"])
	assert.Equal(t, int64(26), updated["age"])
}

func TestRepository_Update_UnknownID(t *testing.T) {
	repo := newUsersRepo(t, storage.IDSequential)
	_, err := repo.Update(context.Background(), int64(99), storage.Row{"age": int64(1)})
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestRepository_BatchInsert_ValidatesBeforeAnyInsert(t *testing.T) {
	ctx := context.Background()
	repo := newUsersRepo(t, storage.IDSequential)

	_, err := repo.BatchInsert(ctx, []storage.Row{
		{"name": "a"},
		{"name": "b", "bogus": true},
	})
	require.Error(t, err)
	assert.True(t, storage.IsValidation(err))

	rows, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows, "validation failure precedes any adapter insert")
}

func TestRepository_BatchUpdate_StopsOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := newUsersRepo(t, storage.IDSequential)

	a, err := repo.Create(ctx, storage.Row{"name": "a"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, storage.Row{"name": "b"})
	require.NoError(t, err)

	results, err := repo.BatchUpdate(ctx, []storage.BatchUpdateEntry{
		{ID: a["id"], Patch: storage.Row{"name": "a2"}},
		{ID: int64(99), Patch: storage.Row{"name": "ghost"}},
		{ID: b["id"], Patch: storage.Row{"name": "b2"}},
	})
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
	assert.Len(t, results, 1)

	// The first entry stays committed, the third was never applied.
	got, err := repo.FindByID(ctx, a["id"])
	require.NoError(t, err)
	assert.Equal(t, "a2", got["name"])
	got, err = repo.FindByID(ctx, b["id"])
	require.NoError(t, err)
	assert.Equal(t, "b", got["name"])
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo := newUsersRepo(t, storage.IDSequential)
	err := repo.Delete(context.Background(), int64(1))
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestRepository_Query_CountMatchesFindAll(t *testing.T) {
	ctx := context.Background()
	repo := newUsersRepo(t, storage.IDSequential)

	for _, n := range []string{"a", "b", "c"} {
		_, err := repo.Create(ctx, storage.Row{"name": n})
		require.NoError(t, err)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)

	n, err := repo.Query().Limit(1).Offset(1).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(all), n)
}

func TestRepository_Query_SeesLaterWrites(t *testing.T) {
	ctx := context.Background()
	repo := newUsersRepo(t, storage.IDSequential)
	b := repo.Query()

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = repo.Create(ctx, storage.Row{"name": "late"})
	require.NoError(t, err)

	// The builder re-reads the snapshot at evaluation time.
	n, err = b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// Scenario: sequential ids, a filtered query, and id non-reuse after delete.
func TestRepository_UserLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newUsersRepo(t, storage.IDSequential)

	alice, err := repo.Create(ctx, storage.Row{"name": "Alice", "age": int64(25)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice["id"])

	bob, err := repo.Create(ctx, storage.Row{"name": "Bob", "age": int64(17)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob["id"])

	adults, err := repo.Query().Where("age", query.OpGte, int64(18)).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, adults, 1)
	assert.Equal(t, "Alice", adults[0]["name"])

	require.NoError(t, repo.Delete(ctx, int64(1)))

	carol, err := repo.Create(ctx, storage.Row{"name": "Carol", "age": int64(40)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), carol["id"], "id 1 is never reused")
}

// The SQLite adapter satisfies the same repository contract as the
// in-memory one; see internal/store for its own coverage.
func TestRepository_SequentialIDLaw(t *testing.T) {
	ctx := context.Background()
	repo := newUsersRepo(t, storage.IDSequential)

	const n = 5
	for i := 1; i <= n; i++ {
		row, err := repo.Create(ctx, storage.Row{"name": "u"})
		require.NoError(t, err)
		assert.Equal(t, int64(i), row["id"], "ids are exactly 1..N in creation order")
	}
}
