package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/config"
	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
)

// Repositories groups every store used by the services.
type Repositories struct {
	Catalog  Store[model.CatalogEntry]
	Items    Store[model.StoredItem]
	Vehicles Store[map[string]any]
	Users    Store[model.UserInDB]
}

// NewRepositories builds the stores on the configured backend and seeds the
// fixtures that are not present yet.
func NewRepositories(ctx context.Context, s *server.Server) (*Repositories, error) {
	repos := &Repositories{
		Catalog:  newStore[model.CatalogEntry](s, "catalog"),
		Items:    newStore[model.StoredItem](s, "items"),
		Vehicles: newStore[map[string]any](s, "vehicles"),
		Users:    newStore[model.UserInDB](s, "users"),
	}

	if err := repos.seed(ctx); err != nil {
		return nil, err
	}
	return repos, nil
}

func newStore[V any](s *server.Server, name string) Store[V] {
	if s.Config.Store.Driver == config.StoreDriverRedis && s.Redis != nil {
		return NewRedisStore[V](s.Redis, s.Config.Store.KeyPrefix, name)
	}
	return NewMemoryStore[V]()
}

func (r *Repositories) seed(ctx context.Context) error {
	for _, name := range []string{"Foo", "Bar", "Baz"} {
		if err := seedOne(ctx, r.Catalog, name, model.CatalogEntry{ItemName: name}); err != nil {
			return err
		}
	}

	items := []struct {
		key string
		raw map[string]any
	}{
		{"foo", map[string]any{"name": "Foo", "price": 50.2}},
		{"bar", map[string]any{"name": "Bar", "description": "The bartenders", "price": 62, "tax": 20.2}},
		{"baz", map[string]any{"name": "Baz", "description": nil, "price": 50.2, "tax": 10.5, "tags": []any{}}},
	}
	for _, it := range items {
		if err := seedOne(ctx, r.Items, it.key, schema.MustParse[model.StoredItem](it.raw)); err != nil {
			return err
		}
	}

	vehicles := map[string]map[string]any{
		"item1": {"description": "All my friends drive a low rider", "type": "car"},
		"item2": {"description": "Music is my aeroplane, it's my aeroplane", "type": "plane", "size": 5},
	}
	for _, key := range []string{"item1", "item2"} {
		if err := seedOne(ctx, r.Vehicles, key, vehicles[key]); err != nil {
			return err
		}
	}

	users := []map[string]any{
		{
			"username":        "johndoe",
			"full_name":       "John Doe",
			"email":           "johndoe@example.com",
			"hashed_password": "fakehashedsecret",
			"disabled":        false,
		},
		{
			"username":        "alice",
			"full_name":       "Alice Wonderson",
			"email":           "alice@example.com",
			"hashed_password": "fakehashedsecret2",
			"disabled":        true,
		},
	}
	for _, raw := range users {
		if err := seedOne(ctx, r.Users, raw["username"].(string), schema.MustParse[model.UserInDB](raw)); err != nil {
			return err
		}
	}

	return nil
}

func seedOne[V any](ctx context.Context, store Store[V], key string, value V) error {
	_, err := store.Get(ctx, key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return errors.Wrapf(err, "seed %s", key)
	}
	return store.Put(ctx, key, value)
}
