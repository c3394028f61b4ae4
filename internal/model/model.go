// Package model declares the records exchanged by the API.
package model

import (
	"github.com/deppfellow/apitour/internal/schema"
)

// ModelName is the closed set of model names accepted by /models/{model_name}.
type ModelName string

const (
	ModelAlexnet ModelName = "alexnet"
	ModelResnet  ModelName = "resnet"
	ModelLenet   ModelName = "lenet"
)

func (ModelName) EnumValues() []string {
	return []string{string(ModelAlexnet), string(ModelResnet), string(ModelLenet)}
}

type Item struct {
	schema.Fields `json:"-"`

	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"`
	Tax         *float64 `json:"tax"`
}

// StrictItem is an Item that rejects unknown keys.
type StrictItem struct {
	Item
}

func (StrictItem) ForbidExtra() bool { return true }

type User struct {
	schema.Fields `json:"-"`

	Username string  `json:"username"`
	FullName *string `json:"full_name"`
}

type ItemWithFields struct {
	schema.Fields `json:"-"`

	Name        string   `json:"name"`
	Description *string  `json:"description" validate:"max=300" title:"The description of the item"`
	Price       float64  `json:"price" validate:"gt=0" description:"The price must be greater than zero"`
	Tax         *float64 `json:"tax"`
}

type Image struct {
	schema.Fields `json:"-"`

	URL  string `json:"url" validate:"http_url"`
	Name string `json:"name"`
}

type ItemWithNestedModel struct {
	schema.Fields `json:"-"`

	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"`
	Tax         *float64 `json:"tax"`
	Tags        []string `json:"tags" default:""`
	Image       *Image   `json:"image"`
}

type Offer struct {
	schema.Fields `json:"-"`

	Name        string                `json:"name"`
	Description *string               `json:"description"`
	Price       float64               `json:"price"`
	Items       []ItemWithNestedModel `json:"items"`
}

// CommonQueryParams is the shared paging parameter set.
type CommonQueryParams struct {
	Q     *string `query:"q"`
	Skip  int     `query:"skip" default:"0"`
	Limit int     `query:"limit" default:"100"`
}

// Window returns the [start, end) bounds of the page [skip, skip+limit)
// within n elements. Negative bounds count from the end, so skip=-1 is the
// last element and limit=-1 drops the last one.
func (p CommonQueryParams) Window(n int) (int, int) {
	start := sliceBound(p.Skip, n)
	end := max(sliceBound(p.Skip+p.Limit, n), start)
	return start, end
}

func sliceBound(i, n int) int {
	if i < 0 {
		i += n
	}
	return min(max(i, 0), n)
}

// CatalogEntry is one row of the plain item listing.
type CatalogEntry struct {
	ItemName string `json:"item_name"`
}
