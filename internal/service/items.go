package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/repository"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
)

type ItemService struct {
	server   *server.Server
	catalog  repository.Store[model.CatalogEntry]
	items    repository.Store[model.StoredItem]
	vehicles repository.Store[map[string]any]
}

func NewItemService(s *server.Server, repos *repository.Repositories) *ItemService {
	return &ItemService{
		server:   s,
		catalog:  repos.Catalog,
		items:    repos.Items,
		vehicles: repos.Vehicles,
	}
}

func itemNotFound() *errs.HTTPError {
	return errs.NewNotFoundError("Item not found").WithHeader("X-Error", "There goes my error")
}

// Catalog returns the [skip, skip+limit) window of the plain listing.
func (s *ItemService) Catalog(ctx context.Context, skip, limit int) ([]model.CatalogEntry, error) {
	entries, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	start, end := model.CommonQueryParams{Skip: skip, Limit: limit}.Window(len(entries))
	return entries[start:end], nil
}

func (s *ItemService) List(ctx context.Context, params model.CommonQueryParams) ([]model.StoredItem, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	start, end := params.Window(len(items))
	return items[start:end], nil
}

func (s *ItemService) Get(ctx context.Context, id string) (model.StoredItem, error) {
	item, err := s.items.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.StoredItem{}, itemNotFound()
	}
	return item, err
}

// Put replaces the stored item. Every field of the stored copy counts as
// set, defaults included.
func (s *ItemService) Put(ctx context.Context, id string, item model.StoredItem) (model.StoredItem, error) {
	stored, err := materialize(item)
	if err != nil {
		return model.StoredItem{}, err
	}
	if err := s.items.Put(ctx, id, stored); err != nil {
		return model.StoredItem{}, err
	}
	return stored, nil
}

// Patch overwrites only the fields set in patch.
func (s *ItemService) Patch(ctx context.Context, id string, patch model.StoredItem) (model.StoredItem, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.StoredItem{}, err
	}
	return s.Put(ctx, id, current.Merge(patch))
}

func materialize(item model.StoredItem) (model.StoredItem, error) {
	stored, err := schema.Parse[model.StoredItem](schema.Dump(item, schema.DumpOptions{}))
	if err != nil {
		return model.StoredItem{}, errors.Wrap(err, "materialize stored item")
	}
	return stored, nil
}

// Vehicle returns the raw stored vehicle; the handler decides its shape.
func (s *ItemService) Vehicle(ctx context.Context, id string) (map[string]any, error) {
	vehicle, err := s.vehicles.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, itemNotFound()
	}
	return vehicle, err
}
