package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/validation"
)

var (
	fieldsType = reflect.TypeFor[Fields]()
	records    sync.Map // reflect.Type -> *record
)

type field struct {
	index    []int
	name     string
	typ      reflect.Type
	required bool
	def      *string
	rules    string
	pattern  string

	title       string
	description string
}

type record struct {
	typ         reflect.Type
	fields      []field
	byName      map[string]int
	tracked     bool
	forbidExtra bool
}

// Field describes one record field for documentation generators.
type Field struct {
	Name        string
	Type        reflect.Type
	Required    bool
	Default     *string
	Rules       string
	Pattern     string
	Title       string
	Description string
}

// FieldsOf lists the fields of a record type in declaration order, with
// embedded records flattened.
func FieldsOf(rt reflect.Type) []Field {
	rec := recordOf(rt)
	out := make([]Field, len(rec.fields))
	for i, f := range rec.fields {
		out[i] = Field{
			Name:        f.name,
			Type:        f.typ,
			Required:    f.required,
			Default:     f.def,
			Rules:       f.rules,
			Pattern:     f.pattern,
			Title:       f.title,
			Description: f.description,
		}
	}
	return out
}

// IsRecord reports whether rt is decoded as a record.
func IsRecord(rt reflect.Type) bool {
	return rt.Kind() == reflect.Struct && !isScalarType(rt)
}

func recordOf(rt reflect.Type) *record {
	if cached, ok := records.Load(rt); ok {
		return cached.(*record)
	}

	rec := &record{
		typ:    rt,
		byName: map[string]int{},
	}
	collectFields(rec, rt, nil)

	if s, ok := reflect.Zero(rt).Interface().(Strict); ok {
		rec.forbidExtra = s.ForbidExtra()
	}

	for _, f := range rec.fields {
		if f.pattern != "" {
			if err := validation.CompilePattern(f.pattern); err != nil {
				panic(fmt.Sprintf("schema: %s.%s: %v", rt.Name(), f.name, err))
			}
		}
		if f.def != nil {
			if _, issues := CoerceDefault(f.typ, *f.def, nil); len(issues) > 0 {
				panic(fmt.Sprintf("schema: %s.%s: invalid default %q", rt.Name(), f.name, *f.def))
			}
		}
	}

	actual, _ := records.LoadOrStore(rt, rec)
	return actual.(*record)
}

func collectFields(rec *record, rt reflect.Type, prefix []int) {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		index := append(append([]int{}, prefix...), i)

		if sf.Type == fieldsType {
			rec.tracked = true
			continue
		}

		tag, hasTag := sf.Tag.Lookup("json")
		if tag == "-" {
			continue
		}

		if sf.Anonymous && !hasTag && sf.Type.Kind() == reflect.Struct {
			collectFields(rec, sf.Type, index)
			continue
		}

		if !sf.IsExported() {
			continue
		}

		name := strings.Split(tag, ",")[0]
		if name == "" {
			name = sf.Name
		}

		f := field{
			index:   index,
			name:    name,
			typ:     sf.Type,
			rules:   sf.Tag.Get("validate"),
			pattern: sf.Tag.Get("pattern"),

			title:       sf.Tag.Get("title"),
			description: sf.Tag.Get("description"),
		}
		if def, ok := sf.Tag.Lookup("default"); ok {
			f.def = &def
		}
		f.required = f.def == nil && sf.Type.Kind() != reflect.Pointer && sf.Type.Kind() != reflect.Interface

		if existing, ok := rec.byName[name]; ok {
			rec.fields[existing] = f
			continue
		}
		rec.byName[name] = len(rec.fields)
		rec.fields = append(rec.fields, f)
	}
}

func decodeRecord(rt reflect.Type, raw any, loc errs.Loc) (reflect.Value, []errs.FieldError) {
	m, ok := asMap(raw)
	if !ok {
		return reflect.Value{}, []errs.FieldError{validation.Error(validation.KindDict, loc)}
	}

	rec := recordOf(rt)
	out := reflect.New(rt).Elem()

	var issues []errs.FieldError
	set := make([]string, 0, len(m))

	for _, f := range rec.fields {
		floc := loc.Child(f.name)
		rawValue, present := m[f.name]

		if !present {
			switch {
			case f.def != nil:
				v, _ := CoerceDefault(f.typ, *f.def, floc)
				out.FieldByIndex(f.index).Set(v)
			case f.required:
				issues = append(issues, validation.Missing(floc))
			}
			continue
		}

		v, fieldIssues := Coerce(f.typ, rawValue, floc)
		if len(fieldIssues) > 0 {
			issues = append(issues, fieldIssues...)
			continue
		}

		checkIssues, err := Check(v, f.rules, f.pattern, floc)
		if err != nil {
			panic(err)
		}
		if len(checkIssues) > 0 {
			issues = append(issues, checkIssues...)
			continue
		}

		out.FieldByIndex(f.index).Set(v)
		set = append(set, f.name)
	}

	if rec.forbidExtra {
		for _, k := range sortedKeys(m) {
			if _, known := rec.byName[k]; !known {
				issues = append(issues, validation.Error(validation.KindExtra, loc.Child(k)))
			}
		}
	}

	if len(issues) > 0 {
		return reflect.Value{}, issues
	}

	if rec.tracked {
		out.Addr().Interface().(tracker).trackedFields().MarkSet(set...)
	}

	return out, nil
}

// Check applies validator rules and a full-match pattern to an already
// coerced value. Nil pointers are not checked.
func Check(v reflect.Value, rules, pattern string, loc errs.Loc) ([]errs.FieldError, error) {
	if rules == "" && pattern == "" {
		return nil, nil
	}

	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}

	// Length and bound rules run first; the pattern is only tried on values
	// that passed them, so each field reports one failure.
	if rules != "" {
		issues, err := validation.Rules(v.Interface(), rules, loc)
		if err != nil || len(issues) > 0 {
			return issues, err
		}
	}

	if pattern != "" && v.Kind() == reflect.String {
		fe, err := validation.Pattern(v.String(), pattern, loc)
		if err != nil {
			return nil, err
		}
		if fe != nil {
			return []errs.FieldError{*fe}, nil
		}
	}

	return nil, nil
}

// CoerceDefault coerces a `default` tag literal into rt.
func CoerceDefault(rt reflect.Type, literal string, loc errs.Loc) (reflect.Value, []errs.FieldError) {
	base := rt
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if base.Kind() == reflect.Slice && base != bytesType {
		items := []any{}
		if literal != "" {
			for _, part := range strings.Split(literal, ",") {
				items = append(items, part)
			}
		}
		return Coerce(rt, items, loc)
	}

	return Coerce(rt, literal, loc)
}
