// Package schema describes JSON records as Go structs and implements the
// coercion and serialization rules shared by request binding and response
// shaping.
//
// A record is a struct with `json` tags. Embedding Fields at the root of the
// struct enables set-tracking: decoding records which fields were really
// present in the input, and Dump with ExcludeUnset omits the rest even when
// they carry a default.
//
//	type Item struct {
//		schema.Fields `json:"-"`
//
//		Name  string   `json:"name"`
//		Tax   float64  `json:"tax" default:"10.5"`
//		Tags  []string `json:"tags" default:""`
//	}
//
// Field tags understood by the decoder:
//   - default: literal used when the key is absent (lists are comma separated,
//     the empty string is the empty list); the field is not marked as set
//   - validate: go-playground/validator rules checked after coercion
//   - pattern: regular expression the whole string must match
//
// Non-pointer fields without a default are required; pointer fields are
// optional and decode JSON null to nil.
package schema

import "sort"

// Enum is implemented by string types restricted to a literal set.
type Enum interface {
	EnumValues() []string
}

// Strict is implemented by records that reject unknown keys.
type Strict interface {
	ForbidExtra() bool
}

// Fields records which fields of a record were explicitly set. The zero value
// is untracked and reports every field as set, so records built in Go code
// serialize in full.
type Fields struct {
	tracked bool
	set     map[string]struct{}
}

type tracker interface {
	trackedFields() *Fields
}

func (f *Fields) trackedFields() *Fields {
	return f
}

// MarkSet starts tracking (if needed) and records names as set.
func (f *Fields) MarkSet(names ...string) {
	if !f.tracked {
		f.tracked = true
		f.set = make(map[string]struct{}, len(names))
	}
	for _, n := range names {
		f.set[n] = struct{}{}
	}
}

func (f Fields) IsSet(name string) bool {
	if !f.tracked {
		return true
	}
	_, ok := f.set[name]
	return ok
}

func (f Fields) Tracked() bool {
	return f.tracked
}

// FieldsSet lists the set fields in sorted order. Untracked records return nil.
func (f Fields) FieldsSet() []string {
	if !f.tracked {
		return nil
	}
	out := make([]string, 0, len(f.set))
	for n := range f.set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
