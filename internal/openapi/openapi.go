// Package openapi generates the OpenAPI 3 document from the route table.
//
// Each route contributes an Operation carrying its compiled binding plan and
// declared response shape; parameters, request bodies and component schemas
// are derived from those by reflection.
package openapi

import (
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/apitour/internal/binding"
	"github.com/deppfellow/apitour/internal/schema"
)

const bearerScheme = "OAuth2PasswordBearer"

// Info is the document header.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Example is one named request body example.
type Example struct {
	Summary     string
	Description string
	Value       any
}

// Operation is what a route contributes to the document. Path uses the
// route template syntax ("/files/{file_path:path}").
type Operation struct {
	Method      string
	Path        string
	ID          string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Secured     bool
	Status      int
	Plan        *binding.Plan
	Response    schema.Shape
	Examples    map[string]Example
}

var (
	templateParam = regexp.MustCompile(`\{([^}:]+)(:[^}]*)?\}`)
	titleCaser    = cases.Title(language.English)
)

// DocumentPath strips parameter converters from a route template.
func DocumentPath(template string) string {
	return templateParam.ReplaceAllString(template, "{$1}")
}

// Title renders a field name the way it is shown in the docs ("item_id" ->
// "Item Id").
func Title(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// Build produces the document for ops.
func Build(info Info, ops []Operation) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       info.Title,
			Version:     info.Version,
			Description: info.Description,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas:         openapi3.Schemas{},
			SecuritySchemes: openapi3.SecuritySchemes{},
		},
	}

	gen := newGenerator(doc.Components.Schemas)
	gen.register(validationErrorSchemas())

	for _, op := range ops {
		operation, err := gen.operation(op)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s", op.Method, op.Path)
		}
		if op.Secured {
			doc.Components.SecuritySchemes[bearerScheme] = &openapi3.SecuritySchemeRef{Value: bearerSecurityScheme()}
		}
		doc.AddOperation(DocumentPath(op.Path), op.Method, operation)
	}

	return doc, nil
}

func bearerSecurityScheme() *openapi3.SecurityScheme {
	return &openapi3.SecurityScheme{
		Type: "oauth2",
		Flows: &openapi3.OAuthFlows{
			Password: &openapi3.OAuthFlow{
				TokenURL: "token",
				Scopes:   map[string]string{},
			},
		},
	}
}

func (g *generator) operation(op Operation) (*openapi3.Operation, error) {
	operation := openapi3.NewOperation()
	operation.OperationID = op.ID
	operation.Summary = op.Summary
	operation.Description = op.Description
	operation.Tags = op.Tags
	operation.Deprecated = op.Deprecated

	if op.Plan != nil {
		for _, spec := range op.Plan.Params() {
			if spec.Hidden {
				continue
			}
			if param := g.parameter(spec); param != nil {
				operation.AddParameter(param)
			}
		}

		body, err := g.requestBody(op)
		if err != nil {
			return nil, err
		}
		operation.RequestBody = body
	}

	status := op.Status
	if status == 0 {
		status = http.StatusOK
	}

	success := openapi3.NewResponse().WithDescription("Successful Response")
	if op.Response != nil {
		success = success.WithJSONSchemaRef(g.shape(op.Response))
	} else {
		success = success.WithJSONSchema(openapi3.NewSchema())
	}

	responses := []openapi3.NewResponsesOption{
		openapi3.WithStatus(status, &openapi3.ResponseRef{Value: success}),
	}
	if op.Plan != nil && len(op.Plan.Params()) > 0 {
		invalid := openapi3.NewResponse().
			WithDescription("Validation Error").
			WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/HTTPValidationError", nil))
		responses = append(responses, openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{Value: invalid}))
	}
	operation.Responses = openapi3.NewResponses(responses...)

	if op.Secured {
		operation.Security = openapi3.NewSecurityRequirements().
			With(openapi3.NewSecurityRequirement().Authenticate(bearerScheme))
	}

	return operation, nil
}

func (g *generator) parameter(spec binding.ParameterSpec) *openapi3.Parameter {
	var param *openapi3.Parameter
	switch spec.Source {
	case binding.SourcePath:
		param = openapi3.NewPathParameter(spec.Alias)
	case binding.SourceQuery:
		param = openapi3.NewQueryParameter(spec.Alias)
	case binding.SourceHeader:
		param = openapi3.NewHeaderParameter(spec.Alias)
	case binding.SourceCookie:
		param = openapi3.NewCookieParameter(spec.Alias)
	default:
		return nil
	}

	value := g.inline(spec.Type)
	applyRules(value, spec.Type, spec.Rules, spec.Pattern)
	value.Title = spec.Title
	if value.Title == "" {
		value.Title = Title(spec.Alias)
	}
	if spec.Default != nil {
		value.Default = defaultValue(spec.Type, *spec.Default)
	}

	param = param.WithRequired(spec.Required).WithSchema(value)
	param.Description = spec.Description
	param.Deprecated = spec.Deprecated
	if spec.Example != "" {
		param.Example = spec.Example
	}
	return param
}

func (g *generator) requestBody(op Operation) (*openapi3.RequestBodyRef, error) {
	plan := op.Plan

	if form := plan.FormParams(); len(form) > 0 {
		multipart := false
		body := openapi3.NewObjectSchema()
		var required []string
		for _, spec := range form {
			if spec.Source == binding.SourceFile {
				multipart = true
			}
			prop := g.inline(spec.Type)
			applyRules(prop, spec.Type, spec.Rules, spec.Pattern)
			prop.Title = Title(spec.Alias)
			body.WithProperty(spec.Alias, prop)
			if spec.Required {
				required = append(required, spec.Alias)
			}
		}
		body.Required = required

		mime := "application/x-www-form-urlencoded"
		if multipart {
			mime = "multipart/form-data"
		}
		name := "Body_" + op.ID
		g.schemas[name] = openapi3.NewSchemaRef("", body)

		rb := openapi3.NewRequestBody().
			WithRequired(len(required) > 0).
			WithContent(openapi3.NewContentWithSchemaRef(openapi3.NewSchemaRef("#/components/schemas/"+name, nil), []string{mime}))
		return &openapi3.RequestBodyRef{Value: rb}, nil
	}

	params := plan.BodyParams()
	if len(params) == 0 {
		return nil, nil
	}

	var ref *openapi3.SchemaRef
	required := false

	if plan.WholeBody() {
		spec := params[0]
		ref = g.ref(spec.Type)
		required = spec.Required
	} else {
		body := openapi3.NewObjectSchema()
		var names []string
		for _, spec := range params {
			prop := g.ref(spec.Type)
			if prop.Ref == "" {
				applyRules(prop.Value, spec.Type, spec.Rules, spec.Pattern)
				prop.Value.Title = Title(spec.Alias)
				prop.Value.Description = spec.Description
			}
			body.WithPropertyRef(spec.Alias, prop)
			if spec.Required {
				names = append(names, spec.Alias)
			}
		}
		body.Required = names
		name := "Body_" + op.ID
		g.schemas[name] = openapi3.NewSchemaRef("", body)
		ref = openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
		required = len(names) > 0
	}

	rb := openapi3.NewRequestBody().WithRequired(required).WithJSONSchemaRef(ref)

	if len(op.Examples) > 0 || params[0].Example != "" {
		media := rb.Content.Get("application/json")
		if params[0].Example != "" {
			example, err := parseExample(params[0].Example)
			if err != nil {
				return nil, err
			}
			media.Example = example
		}
		if len(op.Examples) > 0 {
			media.Examples = openapi3.Examples{}
			for key, ex := range op.Examples {
				value := openapi3.NewExample(ex.Value)
				value.Summary = ex.Summary
				value.Description = ex.Description
				media.Examples[key] = &openapi3.ExampleRef{Value: value}
			}
		}
	}

	return &openapi3.RequestBodyRef{Value: rb}, nil
}

// defaultValue renders a `default` tag literal as a JSON value.
func defaultValue(rt reflect.Type, literal string) any {
	v, issues := schema.CoerceDefault(rt, literal, nil)
	if len(issues) > 0 {
		return literal
	}
	return schema.Dump(v.Interface(), schema.DumpOptions{})
}
