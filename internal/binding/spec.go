// Package binding turns an incoming request into a typed request struct.
//
// Each request type is compiled once into a Plan: one ParameterSpec per
// tagged field. A single routine, Plan.Bind, then resolves every parameter
// for every request, collecting all failures into one
// *errs.RequestValidationError.
//
//	type readItemsRequest struct {
//		Q     *string `query:"q" validate:"max=50" pattern:"^fixedquery$"`
//		Skip  int     `query:"skip" default:"0"`
//		Token string  `header:"x_token"`
//		Item  Item    `body:"item"`
//	}
//
// Source tags: path, query, header, cookie, form, file, body. A file field of
// type *UploadFile is required unless tagged optional:"true". Anonymous
// struct fields without a source tag are flattened, which is how shared
// parameter sets (and their Resolve hooks) are composed.
package binding

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/validation"
)

type Source string

const (
	SourcePath   Source = "path"
	SourceQuery  Source = "query"
	SourceHeader Source = "header"
	SourceCookie Source = "cookie"
	SourceForm   Source = "form"
	SourceFile   Source = "file"
	SourceBody   Source = "body"
)

var sources = []Source{SourcePath, SourceQuery, SourceHeader, SourceCookie, SourceForm, SourceFile, SourceBody}

// rank orders errors the way they are reported: path, query, header,
// cookie, then everything carried in the body.
func (s Source) rank() int {
	switch s {
	case SourcePath:
		return 0
	case SourceQuery:
		return 1
	case SourceHeader:
		return 2
	case SourceCookie:
		return 3
	}
	return 4
}

// location is the first element of an error loc for this source.
func (s Source) location() string {
	switch s {
	case SourceForm, SourceFile, SourceBody:
		return "body"
	}
	return string(s)
}

// Resolver is implemented (on the pointer) by parameter groups that need to
// run after binding succeeded, such as header token checks. The first error
// aborts the request.
type Resolver interface {
	Resolve(c echo.Context) error
}

var resolverType = reflect.TypeFor[Resolver]()

// ParameterSpec describes how one request input is located, coerced and
// validated.
type ParameterSpec struct {
	Name        string
	Alias       string
	Source      Source
	Type        reflect.Type
	Required    bool
	Default     *string
	Rules       string
	Pattern     string
	Embed       bool
	Deprecated  bool
	Hidden      bool
	Title       string
	Description string
	Example     string

	index []int
}

// IsList reports whether every occurrence of the parameter is collected.
func (p ParameterSpec) IsList() bool {
	rt := p.Type
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Kind() == reflect.Slice && rt != bytesType
}

// Plan is the compiled form of a request struct.
type Plan struct {
	typ       reflect.Type
	params    []ParameterSpec
	resolvers [][]int
}

func (p *Plan) Type() reflect.Type {
	return p.typ
}

// Params returns the parameters in reporting order.
func (p *Plan) Params() []ParameterSpec {
	return append([]ParameterSpec(nil), p.params...)
}

// BodyParams returns the JSON body parameters.
func (p *Plan) BodyParams() []ParameterSpec {
	return p.bySource(SourceBody)
}

// FormParams returns the form and file parameters.
func (p *Plan) FormParams() []ParameterSpec {
	return append(p.bySource(SourceForm), p.bySource(SourceFile)...)
}

func (p *Plan) bySource(s Source) []ParameterSpec {
	var out []ParameterSpec
	for _, param := range p.params {
		if param.Source == s {
			out = append(out, param)
		}
	}
	return out
}

// WholeBody reports whether the JSON body maps entirely onto one parameter.
func (p *Plan) WholeBody() bool {
	body := p.BodyParams()
	return len(body) == 1 && !body[0].Embed
}

var plans sync.Map // reflect.Type -> *Plan

// Compile builds (or returns the cached) Plan for a struct type.
func Compile(rt reflect.Type) (*Plan, error) {
	if cached, ok := plans.Load(rt); ok {
		return cached.(*Plan), nil
	}
	if rt.Kind() != reflect.Struct {
		return nil, errors.Errorf("binding: request type %s is not a struct", rt)
	}

	plan := &Plan{typ: rt}
	if err := collect(plan, rt, nil); err != nil {
		return nil, err
	}

	sort.SliceStable(plan.params, func(i, j int) bool {
		return plan.params[i].Source.rank() < plan.params[j].Source.rank()
	})

	seen := map[string]bool{}
	for _, p := range plan.params {
		key := p.Source.location() + ":" + p.Alias
		if seen[key] {
			return nil, errors.Errorf("binding: %s declares %s parameter %q twice", rt, p.Source, p.Alias)
		}
		seen[key] = true
	}

	actual, _ := plans.LoadOrStore(rt, plan)
	return actual.(*Plan), nil
}

// MustCompile is Compile for route registration, where a bad request type
// is a programming error.
func MustCompile[T any]() *Plan {
	plan, err := Compile(reflect.TypeFor[T]())
	if err != nil {
		panic(err)
	}
	return plan
}

func collect(plan *Plan, rt reflect.Type, prefix []int) error {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		index := append(append([]int{}, prefix...), i)

		source, name, ok := sourceOf(sf)
		if !ok {
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				if err := collect(plan, sf.Type, index); err != nil {
					return err
				}
				if reflect.PointerTo(sf.Type).Implements(resolverType) {
					plan.resolvers = append(plan.resolvers, index)
				}
				continue
			}
			if sf.IsExported() && reflect.PointerTo(sf.Type).Implements(resolverType) && sf.Type.Kind() == reflect.Struct {
				if err := collect(plan, sf.Type, index); err != nil {
					return err
				}
				plan.resolvers = append(plan.resolvers, index)
			}
			continue
		}

		if !sf.IsExported() {
			return errors.Errorf("binding: %s.%s is tagged but unexported", rt, sf.Name)
		}

		spec := ParameterSpec{
			Name:        name,
			Alias:       name,
			Source:      source,
			Type:        sf.Type,
			Rules:       sf.Tag.Get("validate"),
			Pattern:     sf.Tag.Get("pattern"),
			Embed:       sf.Tag.Get("embed") == "true",
			Deprecated:  sf.Tag.Get("deprecated") == "true",
			Hidden:      sf.Tag.Get("hidden") == "true",
			Title:       sf.Tag.Get("title"),
			Description: sf.Tag.Get("description"),
			Example:     sf.Tag.Get("example"),
			index:       index,
		}

		if alias, ok := sf.Tag.Lookup("alias"); ok {
			spec.Alias = alias
		} else if source == SourceHeader && sf.Tag.Get("convert") != "false" {
			spec.Alias = strings.ReplaceAll(name, "_", "-")
		}

		if def, ok := sf.Tag.Lookup("default"); ok {
			spec.Default = &def
		}
		spec.Required = spec.Default == nil && sf.Type.Kind() != reflect.Pointer && sf.Type.Kind() != reflect.Interface
		switch {
		case source == SourcePath:
			spec.Required = true
		case source == SourceFile && sf.Type == uploadFileType:
			spec.Required = sf.Tag.Get("optional") != "true"
		}

		if err := checkSpec(rt, sf, spec); err != nil {
			return err
		}

		plan.params = append(plan.params, spec)
	}
	return nil
}

func sourceOf(sf reflect.StructField) (Source, string, bool) {
	for _, s := range sources {
		if name, ok := sf.Tag.Lookup(string(s)); ok {
			if name == "" {
				name = sf.Name
			}
			return s, name, true
		}
	}
	return "", "", false
}

func checkSpec(rt reflect.Type, sf reflect.StructField, spec ParameterSpec) error {
	if spec.Pattern != "" {
		if err := validation.CompilePattern(spec.Pattern); err != nil {
			return errors.Wrapf(err, "binding: %s.%s", rt, sf.Name)
		}
	}

	if spec.Default != nil {
		if _, issues := schema.CoerceDefault(spec.Type, *spec.Default, nil); len(issues) > 0 {
			return errors.Errorf("binding: %s.%s: invalid default %q", rt, sf.Name, *spec.Default)
		}
	}

	if spec.Source == SourceFile && !isFileType(spec.Type) {
		return errors.Errorf("binding: %s.%s: file parameters must be []byte, *UploadFile or slices of them", rt, sf.Name)
	}

	if spec.Source == SourceCookie && spec.IsList() {
		return errors.Errorf("binding: %s.%s: cookies cannot be lists", rt, sf.Name)
	}

	return nil
}

func (p ParameterSpec) String() string {
	return fmt.Sprintf("%s %s (%s)", p.Source, p.Alias, p.Type)
}
