package model

import "github.com/deppfellow/apitour/internal/schema"

// StoredItem is the record kept in the item store. Tax and Tags have
// defaults, so exclude-unset output distinguishes stored values from them.
type StoredItem struct {
	schema.Fields `json:"-"`

	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Tax         float64  `json:"tax" default:"10.5"`
	Tags        []string `json:"tags" default:""`
}

// Merge returns a copy of s overwritten by every field set in patch.
func (s StoredItem) Merge(patch StoredItem) StoredItem {
	out := s
	out.Fields = schema.Fields{}
	if s.Tracked() {
		out.MarkSet(s.FieldsSet()...)
	}
	mark := func(name string) bool {
		if !patch.IsSet(name) {
			return false
		}
		if out.Tracked() {
			out.MarkSet(name)
		}
		return true
	}

	if mark("name") {
		out.Name = patch.Name
	}
	if mark("description") {
		out.Description = patch.Description
	}
	if mark("price") {
		out.Price = patch.Price
	}
	if mark("tax") {
		out.Tax = patch.Tax
	}
	if mark("tags") {
		out.Tags = append([]string{}, patch.Tags...)
	}
	return out
}

type BaseItem struct {
	schema.Fields `json:"-"`

	Description string `json:"description"`
	Type        string `json:"type"`
}

type CarItem struct {
	BaseItem

	Type string `json:"type" default:"car"`
}

type PlaneItem struct {
	BaseItem

	Type string `json:"type" default:"plane"`
	Size int    `json:"size"`
}
