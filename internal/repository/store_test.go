package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/apitour/internal/config"
	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/schema"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func storedItem(raw map[string]any) model.StoredItem {
	return schema.MustParse[model.StoredItem](raw)
}

func TestStoreContract(t *testing.T) {
	drivers := map[string]func(t *testing.T) Store[model.StoredItem]{
		"memory": func(t *testing.T) Store[model.StoredItem] {
			return NewMemoryStore[model.StoredItem]()
		},
		"redis": func(t *testing.T) Store[model.StoredItem] {
			_, client := newTestRedis(t)
			return NewRedisStore[model.StoredItem](client, "test", "items")
		},
	}

	for name, newStore := range drivers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			empty, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			_, err = store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Put(ctx, "bar", storedItem(map[string]any{"name": "Bar", "price": 62})))
			require.NoError(t, store.Put(ctx, "foo", storedItem(map[string]any{"name": "Foo", "price": 50.2})))
			require.NoError(t, store.Put(ctx, "bar", storedItem(map[string]any{"name": "Bar", "price": 99, "tax": 1.5})))

			items, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, "Bar", *items[0].Name)
			assert.Equal(t, 99.0, *items[0].Price)
			assert.Equal(t, "Foo", *items[1].Name)

			foo, err := store.Get(ctx, "foo")
			require.NoError(t, err)
			assert.Equal(t, []string{"name", "price"}, foo.FieldsSet())
			assert.Equal(t, 10.5, foo.Tax)
			assert.False(t, foo.IsSet("tax"))

			bar, err := store.Get(ctx, "bar")
			require.NoError(t, err)
			assert.True(t, bar.IsSet("tax"))
			assert.Equal(t, 1.5, bar.Tax)
		})
	}
}

func TestRedisStoreListSkipsMissingValues(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedisStore[model.StoredItem](client, "test", "items")

	require.NoError(t, store.Put(ctx, "foo", storedItem(map[string]any{"name": "Foo"})))
	require.NoError(t, store.Put(ctx, "bar", storedItem(map[string]any{"name": "Bar"})))
	mr.HDel("test:items", "foo")

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bar", *items[0].Name)

	_, err = store.Get(ctx, "foo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreWritesUnsetFieldsOut(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedisStore[model.StoredItem](client, "test", "items")

	require.NoError(t, store.Put(ctx, "foo", storedItem(map[string]any{"name": "Foo", "price": 50.2})))

	assert.JSONEq(t, `{"name":"Foo","price":50.2}`, mr.HGet("test:items", "foo"))
	members, err := mr.ZMembers("test:items:order")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, members)
}

func TestNewRepositoriesOnRedis(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)

	s := testServer(t)
	s.Config.Store.Driver = config.StoreDriverRedis
	s.Redis = client

	repos, err := NewRepositories(ctx, s)
	require.NoError(t, err)
	require.IsType(t, &RedisStore[model.StoredItem]{}, repos.Items)

	catalog, err := repos.Catalog.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.CatalogEntry{{ItemName: "Foo"}, {ItemName: "Bar"}, {ItemName: "Baz"}}, catalog)

	require.NoError(t, repos.Items.Put(ctx, "foo", storedItem(map[string]any{"name": "Changed"})))

	// A second start seeds on top of the same Redis without overwriting.
	again, err := NewRepositories(ctx, s)
	require.NoError(t, err)

	foo, err := again.Items.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "Changed", *foo.Name)

	vehicle, err := again.Vehicles.Get(ctx, "item2")
	require.NoError(t, err)
	assert.Equal(t, "plane", vehicle["type"])

	alice, err := again.Users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, alice.Disabled)
}
