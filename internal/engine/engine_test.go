package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabular/internal/schema"
	"github.com/roach88/tabular/internal/storage"
)

func testSchema() *schema.Schema {
	return schema.New(map[string]*schema.Table{
		"users": {Columns: []string{"id", "name", "age"}},
		"posts": {Columns: []string{"id", "title"}},
	})
}

func testAdapters() map[string]storage.Adapter {
	return map[string]storage.Adapter{
		"users": storage.NewMemory("users", storage.IDSequential),
		"posts": storage.NewMemory("posts", storage.IDSequential),
	}
}

func TestNew_MissingAdapterIsFatal(t *testing.T) {
	adapters := testAdapters()
	delete(adapters, "posts")

	_, err := New(testSchema(), adapters)
	require.Error(t, err)
	assert.True(t, storage.IsConfiguration(err))
	assert.Contains(t, err.Error(), "posts")
}

func TestFrom_ReturnsCachedInstance(t *testing.T) {
	e, err := New(testSchema(), testAdapters())
	require.NoError(t, err)

	first, err := e.From("users")
	require.NoError(t, err)
	second, err := e.From("users")
	require.NoError(t, err)
	assert.Same(t, first, second, "repeated From calls return the identical instance")

	other, err := e.From("posts")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestFrom_UnknownTableListsKnownNames(t *testing.T) {
	e, err := New(testSchema(), testAdapters())
	require.NoError(t, err)

	_, err = e.From("comments")
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
	assert.Contains(t, err.Error(), "users")
	assert.Contains(t, err.Error(), "posts")
}

func TestStore_ReturnsBoundAdapter(t *testing.T) {
	adapters := testAdapters()
	e, err := New(testSchema(), adapters)
	require.NoError(t, err)

	got, err := e.Store("users")
	require.NoError(t, err)
	assert.Same(t, adapters["users"], got)

	_, err = e.Store("comments")
	assert.True(t, storage.IsNotFound(err))
}
