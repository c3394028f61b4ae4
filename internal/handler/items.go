package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

type ItemHandler struct {
	Handler
	items *service.ItemService
}

func NewItemHandler(s *server.Server, items *service.ItemService) *ItemHandler {
	return &ItemHandler{
		Handler: NewHandler(s),
		items:   items,
	}
}

type NoParams struct{}

func (h *ItemHandler) Root(c echo.Context, _ *NoParams) (any, error) {
	return schema.NewObject().Set("message", "Hello World"), nil
}

type CreateItemRequest struct {
	Item model.Item `body:"item"`
}

// CreateItem echoes the validated item.
func (h *ItemHandler) CreateItem(c echo.Context, req *CreateItemRequest) (any, error) {
	return req.Item, nil
}

func (h *ItemHandler) CreateItemDerivedAttrs(c echo.Context, req *CreateItemRequest) (any, error) {
	out := schema.DumpObject(req.Item)
	if req.Item.Tax != nil && *req.Item.Tax != 0 {
		out.Set("price_with_tax", req.Item.Price+*req.Item.Tax)
	}
	return out, nil
}

type CreateStrictItemRequest struct {
	Item model.StrictItem `body:"item"`
}

func (h *ItemHandler) CreateStrictItem(c echo.Context, req *CreateStrictItemRequest) (any, error) {
	return req.Item, nil
}

type ReadItemsRequest struct {
	Skip  int `query:"skip" default:"0"`
	Limit int `query:"limit" default:"10"`
}

func (h *ItemHandler) ReadItems(c echo.Context, req *ReadItemsRequest) (any, error) {
	return h.items.Catalog(c.Request().Context(), req.Skip, req.Limit)
}

type ReadItemRequest struct {
	ItemID int `path:"item_id"`
}

func (h *ItemHandler) ReadItem(c echo.Context, req *ReadItemRequest) (any, error) {
	return schema.NewObject().Set("item_id", req.ItemID), nil
}

type ReadItemOptionalRequest struct {
	ItemID      string  `path:"item_id"`
	OptionalStr *string `query:"optional_str"`
}

func (h *ItemHandler) ReadItemOptional(c echo.Context, req *ReadItemOptionalRequest) (any, error) {
	out := schema.NewObject().Set("item_id", req.ItemID)
	if nonEmpty(req.OptionalStr) {
		out.Set("optional_str", *req.OptionalStr)
	}
	return out, nil
}

type ReadItemOptionalAndBoolRequest struct {
	ItemID             string  `path:"item_id"`
	OptionalStr        *string `query:"optional_str"`
	IncludeDescription bool    `query:"include_description" default:"false"`
}

func (h *ItemHandler) ReadItemOptionalAndBool(c echo.Context, req *ReadItemOptionalAndBoolRequest) (any, error) {
	out := schema.NewObject().Set("item_id", req.ItemID)
	if nonEmpty(req.OptionalStr) {
		out.Set("optional_str", *req.OptionalStr)
	}
	if req.IncludeDescription {
		out.Set("description", "This item includes a description")
	}
	return out, nil
}

type PathMetadataRequest struct {
	ItemID      int     `path:"item_id" description:"The ID of the item to get"`
	OptionalStr *string `query:"optional_str" alias:"item-query"`
}

func (h *ItemHandler) ReadItemPathMetadata(c echo.Context, req *PathMetadataRequest) (any, error) {
	out := schema.NewObject().Set("item_id", req.ItemID)
	if nonEmpty(req.OptionalStr) {
		out.Set("optional_str", *req.OptionalStr)
	}
	return out, nil
}

type PathOrderRequest struct {
	ItemID      int    `path:"item_id" description:"The ID of the item to get"`
	RequiredStr string `query:"required_str"`
}

func (h *ItemHandler) ReadItemPathOrder(c echo.Context, req *PathOrderRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("required_str", req.RequiredStr), nil
}

type PathValidationRequest struct {
	ItemID      int    `path:"item_id" description:"The ID of the item to get" validate:"gte=1,lt=10"`
	RequiredStr string `query:"required_str"`
}

func (h *ItemHandler) ReadItemPathValidation(c echo.Context, req *PathValidationRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("required_str", req.RequiredStr), nil
}

type GetModelRequest struct {
	ModelName model.ModelName `path:"model_name"`
}

func (h *ItemHandler) GetModel(c echo.Context, req *GetModelRequest) (any, error) {
	message := "Have some residuals"
	switch req.ModelName {
	case model.ModelAlexnet:
		message = "Deep Learning FTW!"
	case model.ModelLenet:
		message = "LeCNN all the images"
	}
	return schema.NewObject().
		Set("model_name", req.ModelName).
		Set("message", message), nil
}

type ReadFileRequest struct {
	FilePath string `path:"file_path"`
}

// ReadFile returns the captured remainder of the path, slashes included.
func (h *ItemHandler) ReadFile(c echo.Context, req *ReadFileRequest) (any, error) {
	return schema.NewObject().Set("file_path", req.FilePath), nil
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
