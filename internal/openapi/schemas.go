package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"

	"github.com/deppfellow/apitour/internal/binding"
	"github.com/deppfellow/apitour/internal/lib/jsonutil"
	"github.com/deppfellow/apitour/internal/schema"
)

var (
	timeType       = reflect.TypeFor[time.Time]()
	uuidType       = reflect.TypeFor[uuid.UUID]()
	timeOfDayType  = reflect.TypeFor[schema.TimeOfDay]()
	durationType   = reflect.TypeFor[schema.Duration]()
	bytesType      = reflect.TypeFor[[]byte]()
	uploadFileType = reflect.TypeFor[*binding.UploadFile]()
	enumType       = reflect.TypeFor[schema.Enum]()
)

// generator accumulates component schemas for the record types it meets.
type generator struct {
	schemas openapi3.Schemas
}

func newGenerator(schemas openapi3.Schemas) *generator {
	return &generator{schemas: schemas}
}

func (g *generator) register(schemas openapi3.Schemas) {
	for name, s := range schemas {
		g.schemas[name] = s
	}
}

// ref returns a component reference for records and an inline schema for
// everything else.
func (g *generator) ref(rt reflect.Type) *openapi3.SchemaRef {
	for rt.Kind() == reflect.Pointer && rt != uploadFileType {
		rt = rt.Elem()
	}

	if schema.IsRecord(rt) && rt != uploadFileType {
		name := rt.Name()
		if _, ok := g.schemas[name]; !ok {
			// Reserved before the fields are walked so that self references
			// terminate.
			g.schemas[name] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema())
			g.schemas[name].Value = g.record(rt)
		}
		return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
	}

	return openapi3.NewSchemaRef("", g.inline(rt))
}

// inline builds the schema of a non-record type; records inside containers
// are referenced.
func (g *generator) inline(rt reflect.Type) *openapi3.Schema {
	for rt.Kind() == reflect.Pointer && rt != uploadFileType {
		rt = rt.Elem()
	}

	switch rt {
	case timeType:
		return openapi3.NewDateTimeSchema()
	case uuidType:
		return openapi3.NewUUIDSchema()
	case timeOfDayType:
		return openapi3.NewStringSchema().WithFormat("time")
	case durationType:
		return openapi3.NewStringSchema().WithFormat("duration")
	case bytesType, uploadFileType:
		return openapi3.NewStringSchema().WithFormat("binary")
	}

	if rt.Implements(enumType) {
		values := reflect.Zero(rt).Interface().(schema.Enum).EnumValues()
		enum := make([]any, len(values))
		for i, v := range values {
			enum[i] = v
		}
		return openapi3.NewStringSchema().WithEnum(enum...)
	}

	switch rt.Kind() {
	case reflect.String:
		return openapi3.NewStringSchema()
	case reflect.Bool:
		return openapi3.NewBoolSchema()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema()
	case reflect.Slice, reflect.Array:
		out := openapi3.NewArraySchema()
		out.Items = g.ref(rt.Elem())
		return out
	case reflect.Map:
		out := openapi3.NewObjectSchema()
		out.AdditionalProperties = openapi3.AdditionalProperties{Schema: g.ref(rt.Elem())}
		return out
	case reflect.Struct:
		return g.record(rt)
	}

	return openapi3.NewSchema()
}

func (g *generator) record(rt reflect.Type) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	out.Title = rt.Name()

	var required []string
	for _, f := range schema.FieldsOf(rt) {
		prop := g.ref(f.Type)
		if prop.Ref == "" {
			applyRules(prop.Value, f.Type, f.Rules, f.Pattern)
			prop.Value.Title = f.Title
			if prop.Value.Title == "" {
				prop.Value.Title = Title(f.Name)
			}
			prop.Value.Description = f.Description
			if f.Default != nil {
				prop.Value.Default = defaultValue(f.Type, *f.Default)
			}
		}
		out.WithPropertyRef(f.Name, prop)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	out.Required = required
	return out
}

func (g *generator) shape(s schema.Shape) *openapi3.SchemaRef {
	types := s.Types()
	if len(types) == 1 {
		return g.ref(types[0])
	}

	out := openapi3.NewSchema()
	out.Title = s.Name()
	for _, rt := range types {
		out.AnyOf = append(out.AnyOf, g.ref(rt))
	}
	return openapi3.NewSchemaRef("", out)
}

// applyRules maps validator rules onto schema keywords.
func applyRules(s *openapi3.Schema, rt reflect.Type, rules, pattern string) {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	kind := rt.Kind()
	isString := kind == reflect.String
	isList := kind == reflect.Slice || kind == reflect.Array

	if pattern != "" {
		s.Pattern = pattern
	}

	for _, rule := range strings.Split(rules, ",") {
		tag, param, _ := strings.Cut(rule, "=")
		n, numErr := strconv.ParseFloat(param, 64)

		switch tag {
		case "min", "max":
			if numErr != nil {
				continue
			}
			switch {
			case isString && tag == "min":
				s.MinLength = uint64(n)
			case isString:
				limit := uint64(n)
				s.MaxLength = &limit
			case isList && tag == "min":
				s.MinItems = uint64(n)
			case isList:
				limit := uint64(n)
				s.MaxItems = &limit
			case tag == "min":
				s.Min = &n
			default:
				s.Max = &n
			}
		case "gte":
			if numErr == nil {
				s.Min = &n
			}
		case "lte":
			if numErr == nil {
				s.Max = &n
			}
		case "gt":
			if numErr == nil {
				s.Min = &n
				s.ExclusiveMin = true
			}
		case "lt":
			if numErr == nil {
				s.Max = &n
				s.ExclusiveMax = true
			}
		case "email":
			s.Format = "email"
		case "url", "http_url":
			s.Format = "uri"
			s.MinLength = 1
			limit := uint64(2083)
			s.MaxLength = &limit
		case "oneof":
			for _, v := range strings.Fields(param) {
				s.Enum = append(s.Enum, v)
			}
		}
	}
}

func parseExample(raw string) (any, error) {
	return jsonutil.DecodeLoose([]byte(raw))
}

func validationErrorSchemas() openapi3.Schemas {
	loc := openapi3.NewArraySchema()
	loc.Title = "Location"
	loc.Items = openapi3.NewSchemaRef("", &openapi3.Schema{
		AnyOf: openapi3.SchemaRefs{
			openapi3.NewSchemaRef("", openapi3.NewStringSchema()),
			openapi3.NewSchemaRef("", openapi3.NewIntegerSchema()),
		},
	})

	fieldError := openapi3.NewObjectSchema().
		WithPropertyRef("loc", openapi3.NewSchemaRef("", loc)).
		WithProperty("msg", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithRequired([]string{"loc", "msg", "type"})
	fieldError.Title = "ValidationError"

	detail := openapi3.NewArraySchema()
	detail.Title = "Detail"
	detail.Items = openapi3.NewSchemaRef("#/components/schemas/ValidationError", nil)

	httpError := openapi3.NewObjectSchema().
		WithPropertyRef("detail", openapi3.NewSchemaRef("", detail)).
		WithProperty("body", openapi3.NewSchema())
	httpError.Title = "HTTPValidationError"

	return openapi3.Schemas{
		"ValidationError":     openapi3.NewSchemaRef("", fieldError),
		"HTTPValidationError": openapi3.NewSchemaRef("", httpError),
	}
}
