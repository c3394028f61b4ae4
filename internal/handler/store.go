package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

// StoreHandler serves the item store with declared response models.
type StoreHandler struct {
	Handler
	items *service.ItemService
}

func NewStoreHandler(s *server.Server, items *service.ItemService) *StoreHandler {
	return &StoreHandler{
		Handler: NewHandler(s),
		items:   items,
	}
}

type ListStoreItemsRequest struct {
	model.CommonQueryParams
}

func (h *StoreHandler) ListItems(c echo.Context, req *ListStoreItemsRequest) (any, error) {
	return h.items.List(c.Request().Context(), req.CommonQueryParams)
}

type StoreItemRequest struct {
	ItemID string `path:"item_id"`
}

// GetItem is registered four times: whole item without unset fields,
// without null fields, and the name and public projections.
func (h *StoreHandler) GetItem(c echo.Context, req *StoreItemRequest) (any, error) {
	return h.items.Get(c.Request().Context(), req.ItemID)
}

type PutStoreItemRequest struct {
	ItemID string           `path:"item_id"`
	Item   model.StoredItem `body:"item"`
}

func (h *StoreHandler) PutItem(c echo.Context, req *PutStoreItemRequest) (any, error) {
	return h.items.Put(c.Request().Context(), req.ItemID, req.Item)
}

func (h *StoreHandler) PatchItem(c echo.Context, req *PutStoreItemRequest) (any, error) {
	return h.items.Patch(c.Request().Context(), req.ItemID, req.Item)
}

type VehicleRequest struct {
	ItemID string `path:"item_id"`
}

// ReadVehicle returns the raw record; the union response model picks
// PlaneItem or CarItem.
func (h *StoreHandler) ReadVehicle(c echo.Context, req *VehicleRequest) (any, error) {
	return h.items.Vehicle(c.Request().Context(), req.ItemID)
}

func (h *StoreHandler) KeywordWeights(c echo.Context, _ *NoParams) (any, error) {
	return schema.NewObject().
		Set("foo", 2.3).
		Set("bar", 3.4), nil
}
