package repository

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/apitour/internal/config"
	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
)

func testServer(t *testing.T) *server.Server {
	t.Helper()
	cfg := config.Default()
	require.NoError(t, cfg.Finalize())
	log := zerolog.Nop()
	return &server.Server{Config: cfg, Logger: &log}
}

func TestMemoryStoreKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[string]()

	require.NoError(t, store.Put(ctx, "b", "first"))
	require.NoError(t, store.Put(ctx, "a", "second"))
	require.NoError(t, store.Put(ctx, "b", "replaced"))

	values, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"replaced", "second"}, values)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRepositoriesSeedsFixtures(t *testing.T) {
	ctx := context.Background()
	repos, err := NewRepositories(ctx, testServer(t))
	require.NoError(t, err)

	catalog, err := repos.Catalog.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.CatalogEntry{{ItemName: "Foo"}, {ItemName: "Bar"}, {ItemName: "Baz"}}, catalog)

	foo, err := repos.Items.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "price"}, foo.FieldsSet())
	assert.Equal(t, 10.5, foo.Tax)

	baz, err := repos.Items.Get(ctx, "baz")
	require.NoError(t, err)
	assert.True(t, baz.IsSet("tags"))
	assert.Nil(t, baz.Description)

	vehicle, err := repos.Vehicles.Get(ctx, "item2")
	require.NoError(t, err)
	assert.Equal(t, "plane", vehicle["type"])

	alice, err := repos.Users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, alice.Disabled)
	assert.Equal(t, "fakehashedsecret2", alice.HashedPassword)
}

func TestSeedKeepsExistingValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[model.CatalogEntry]()
	require.NoError(t, store.Put(ctx, "Foo", model.CatalogEntry{ItemName: "Changed"}))

	require.NoError(t, seedOne(ctx, store, "Foo", model.CatalogEntry{ItemName: "Foo"}))

	entry, err := store.Get(ctx, "Foo")
	require.NoError(t, err)
	assert.Equal(t, "Changed", entry.ItemName)
}

func TestStoredEncodingKeepsSetFields(t *testing.T) {
	item := schema.MustParse[model.StoredItem](map[string]any{"name": "Foo", "price": 50.2})

	data, err := encodeValue(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Foo","price":50.2}`, string(data))

	decoded, err := decodeValue[model.StoredItem](data)
	require.NoError(t, err)
	assert.Equal(t, "Foo", *decoded.Name)
	assert.Equal(t, []string{"name", "price"}, decoded.FieldsSet())

	_, err = decodeValue[model.StoredItem]([]byte(`{"price":"abc"}`))
	assert.Error(t, err)
}
