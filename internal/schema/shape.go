package schema

import (
	"reflect"
	"strings"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/validation"
)

// Shape is a declared response type. Conform re-validates a handler result
// against it so that output carries exactly the shape's fields.
type Shape interface {
	Name() string
	Types() []reflect.Type
	Conform(v any, excludeUnset bool) (any, []errs.FieldError)
}

type modelShape struct {
	rt reflect.Type
}

// Model declares T as the response shape.
func Model[T any]() Shape {
	return modelShape{rt: reflect.TypeFor[T]()}
}

func (s modelShape) Name() string {
	return typeName(s.rt)
}

func (s modelShape) Types() []reflect.Type {
	return []reflect.Type{s.rt}
}

// Conform dumps v (dropping unset fields when asked, so they fall back to the
// shape's own defaults) and decodes the result into the shape type.
func (s modelShape) Conform(v any, excludeUnset bool) (any, []errs.FieldError) {
	plain := Dump(v, DumpOptions{ExcludeUnset: excludeUnset})
	out, issues := Coerce(s.rt, plain, errs.Loc{"response"})
	if len(issues) > 0 {
		return nil, issues
	}
	return out.Interface(), nil
}

type unionShape struct {
	alternatives []Shape
}

// Union declares alternative shapes tried in order; the first one the value
// conforms to wins.
func Union(alternatives ...Shape) Shape {
	return unionShape{alternatives: alternatives}
}

func (u unionShape) Name() string {
	names := make([]string, len(u.alternatives))
	for i, a := range u.alternatives {
		names[i] = a.Name()
	}
	return strings.Join(names, " | ")
}

func (u unionShape) Types() []reflect.Type {
	var out []reflect.Type
	for _, a := range u.alternatives {
		out = append(out, a.Types()...)
	}
	return out
}

func (u unionShape) Conform(v any, excludeUnset bool) (any, []errs.FieldError) {
	var all []errs.FieldError
	for _, a := range u.alternatives {
		out, issues := a.Conform(v, excludeUnset)
		if len(issues) == 0 {
			return out, nil
		}
		all = append(all, issues...)
	}
	if len(all) == 0 {
		all = []errs.FieldError{validation.Error(validation.KindUnion, errs.Loc{"response"})}
	}
	return nil, all
}

// Parse decodes raw into a T, reporting all failures as a
// *errs.RequestValidationError.
func Parse[T any](raw any) (T, error) {
	var zero T
	out, issues := Coerce(reflect.TypeFor[T](), raw, errs.Loc{})
	if len(issues) > 0 {
		return zero, &errs.RequestValidationError{Errors: issues, Body: raw}
	}
	return out.Interface().(T), nil
}

// MustParse is Parse for fixtures known to be valid.
func MustParse[T any](raw any) T {
	out, err := Parse[T](raw)
	if err != nil {
		panic(err)
	}
	return out
}

func typeName(rt reflect.Type) string {
	switch rt.Kind() {
	case reflect.Pointer:
		return typeName(rt.Elem())
	case reflect.Slice, reflect.Array:
		return "List[" + typeName(rt.Elem()) + "]"
	case reflect.Map:
		return "Dict[" + typeName(rt.Key()) + ", " + typeName(rt.Elem()) + "]"
	}
	if rt.Name() != "" {
		return rt.Name()
	}
	return rt.String()
}
