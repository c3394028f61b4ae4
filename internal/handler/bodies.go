package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/openapi"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
)

// BodyHandler hosts the JSON request body endpoints.
type BodyHandler struct {
	Handler
}

func NewBodyHandler(s *server.Server) *BodyHandler {
	return &BodyHandler{
		Handler: NewHandler(s),
	}
}

type UpdateItemRequest struct {
	ItemID int        `path:"item_id"`
	Item   model.Item `body:"item"`
}

// UpdateItem merges the path id into the item fields.
func (h *BodyHandler) UpdateItem(c echo.Context, req *UpdateItemRequest) (any, error) {
	out := schema.NewObject().Set("item_id", req.ItemID)
	item := schema.DumpObject(req.Item)
	for _, key := range item.Keys() {
		value, _ := item.Get(key)
		out.Set(key, value)
	}
	return out, nil
}

type MultipleModelsRequest struct {
	ItemID int        `path:"item_id"`
	Item   model.Item `body:"item"`
	User   model.User `body:"user"`
}

func (h *BodyHandler) UpdateItemMultipleModels(c echo.Context, req *MultipleModelsRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("item", req.Item).
		Set("user", req.User), nil
}

type ExtraBodyParamRequest struct {
	ItemID                int        `path:"item_id"`
	Item                  model.Item `body:"item"`
	User                  model.User `body:"user"`
	ExtraRequiredIntParam int        `body:"extra_required_int_param" description:"Extra required body parameter"`
}

func (h *BodyHandler) UpdateItemExtraBodyParam(c echo.Context, req *ExtraBodyParamRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("item", req.Item).
		Set("user", req.User).
		Set("extra_required_int_param", req.ExtraRequiredIntParam), nil
}

type EmbeddedItemRequest struct {
	ItemID       int        `path:"item_id"`
	EmbeddedItem model.Item `body:"embedded_item" embed:"true"`
}

func (h *BodyHandler) UpdateItemEmbedded(c echo.Context, req *EmbeddedItemRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("embedded_item", req.EmbeddedItem), nil
}

type ItemWithFieldsRequest struct {
	ItemID         int                  `path:"item_id"`
	ItemWithFields model.ItemWithFields `body:"item_with_fields" embed:"true"`
}

func (h *BodyHandler) UpdateItemWithFields(c echo.Context, req *ItemWithFieldsRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("item", req.ItemWithFields), nil
}

type NestedModelRequest struct {
	ItemID              int                       `path:"item_id"`
	ItemWithNestedModel model.ItemWithNestedModel `body:"item_with_nested_model"`
}

func (h *BodyHandler) UpdateItemWithNestedModel(c echo.Context, req *NestedModelRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("item_with_nested_model", req.ItemWithNestedModel), nil
}

type ItemWithExampleRequest struct {
	ItemID int        `path:"item_id"`
	Item   model.Item `body:"item" example:"{\"name\":\"Foo\",\"description\":\"A very nice Item\",\"price\":35.4,\"tax\":3.2}"`
}

func (h *BodyHandler) UpdateItemWithExample(c echo.Context, req *ItemWithExampleRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("item", req.Item), nil
}

type ItemWithMultipleExamplesRequest struct {
	ItemID int        `path:"item_id"`
	Item   model.Item `body:"item"`
}

func (h *BodyHandler) UpdateItemWithMultipleExamples(c echo.Context, req *ItemWithMultipleExamplesRequest) (any, error) {
	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("item", req.Item), nil
}

// ItemExamples are the documented request bodies of
// /items_with_multiple_examples/{item_id}.
var ItemExamples = map[string]openapi.Example{
	"normal": {
		Summary:     "A normal example",
		Description: "A **normal** item works correctly.",
		Value: map[string]any{
			"name":        "Foo",
			"description": "A very nice Item",
			"price":       35.4,
			"tax":         3.2,
		},
	},
	"converted": {
		Summary:     "An example with converted data",
		Description: "Price strings are converted to actual numbers automatically",
		Value: map[string]any{
			"name":  "Bar",
			"price": "35.4",
		},
	},
	"invalid": {
		Summary: "Invalid data is rejected with an error",
		Value: map[string]any{
			"name":  "Baz",
			"price": "thirty five point four",
		},
	},
}

type ExtraDatatypesRequest struct {
	ItemID        uuid.UUID         `path:"item_id"`
	StartDatetime *time.Time        `body:"start_datetime"`
	EndDatetime   *time.Time        `body:"end_datetime"`
	RepeatAt      *schema.TimeOfDay `body:"repeat_at"`
	ProcessAfter  *schema.Duration  `body:"process_after"`
}

// ReadItemsExtraDatatypes derives start_process and duration from the
// received instants. Without start, end and process_after there is nothing
// to derive from.
func (h *BodyHandler) ReadItemsExtraDatatypes(c echo.Context, req *ExtraDatatypesRequest) (any, error) {
	if req.StartDatetime == nil || req.EndDatetime == nil || req.ProcessAfter == nil {
		return nil, errs.NewBadRequestError("start_datetime, end_datetime and process_after are required")
	}

	startProcess := req.StartDatetime.Add(req.ProcessAfter.Std())
	duration := schema.Duration(req.EndDatetime.Sub(startProcess))

	return schema.NewObject().
		Set("item_id", req.ItemID).
		Set("start_datetime", req.StartDatetime).
		Set("end_datetime", req.EndDatetime).
		Set("repeat_at", req.RepeatAt).
		Set("process_after", req.ProcessAfter).
		Set("start_process", startProcess).
		Set("duration", duration), nil
}

type CreateOfferRequest struct {
	Offer model.Offer `body:"offer"`
}

func (h *BodyHandler) CreateOffer(c echo.Context, req *CreateOfferRequest) (any, error) {
	return req.Offer, nil
}

type CreateImagesRequest struct {
	Images []model.Image `body:"images"`
}

func (h *BodyHandler) CreateMultipleImages(c echo.Context, req *CreateImagesRequest) (any, error) {
	return req.Images, nil
}

type IndexWeightsRequest struct {
	Weights map[string]float64 `body:"weights"`
}

func (h *BodyHandler) CreateIndexWeights(c echo.Context, req *IndexWeightsRequest) (any, error) {
	return req.Weights, nil
}
