package schema

import (
	"bytes"
	"encoding"
	"encoding/json"
	"reflect"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/lib/jsonutil"
)

// Object is a JSON object that keeps insertion order when encoded.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Set adds or replaces key. Replacing keeps the original position.
func (o *Object) Set(key string, value any) *Object {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Map returns a shallow, unordered copy.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// DecodeOrdered parses a JSON document keeping member order: objects become
// *Object, arrays []any and numbers json.Number.
func DecodeOrdered(data []byte) (any, error) {
	root, err := sonic.Get(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode ordered json")
	}
	return orderedValue(&root)
}

func orderedValue(node *ast.Node) (any, error) {
	switch node.Type() {
	case ast.V_NULL:
		return nil, nil
	case ast.V_TRUE:
		return true, nil
	case ast.V_FALSE:
		return false, nil
	case ast.V_STRING:
		return node.String()
	case ast.V_NUMBER:
		return node.Number()
	case ast.V_ARRAY:
		it, err := node.Values()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		out := []any{}
		var elem ast.Node
		for it.Next(&elem) {
			v, err := orderedValue(&elem)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case ast.V_OBJECT:
		it, err := node.Properties()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		obj := NewObject()
		var member ast.Pair
		for it.Next(&member) {
			v, err := orderedValue(&member.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(member.Key, v)
		}
		return obj, nil
	}
	return nil, errors.Errorf("decode ordered json: unexpected node type %d", node.Type())
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := jsonutil.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := jsonutil.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DumpOptions filters the serialized form of a record.
//
// Include and Exclude name top-level fields (of each element when the value
// is a list of records). ExcludeUnset and ExcludeNone apply at every depth.
type DumpOptions struct {
	Include      []string
	Exclude      []string
	ExcludeUnset bool
	ExcludeNone  bool
}

type dumper struct {
	include      map[string]bool
	exclude      map[string]bool
	excludeUnset bool
	excludeNone  bool
}

func toSet(names []string) map[string]bool {
	if names == nil {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// Dump converts v into a JSON-ready tree of *Object, []any and scalars.
func Dump(v any, opts DumpOptions) any {
	d := dumper{
		include:      toSet(opts.Include),
		exclude:      toSet(opts.Exclude),
		excludeUnset: opts.ExcludeUnset,
		excludeNone:  opts.ExcludeNone,
	}
	return d.value(reflect.ValueOf(v), true)
}

// DumpObject dumps a record in full. It returns nil when v is not a record.
func DumpObject(v any) *Object {
	obj, _ := Dump(v, DumpOptions{}).(*Object)
	return obj
}

func (d dumper) value(rv reflect.Value, top bool) any {
	if !rv.IsValid() {
		return nil
	}

	rt := rv.Type()
	if rt.Implements(jsonMarshalerType) || rt.Implements(textMarshalerType) {
		if rt.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return rv.Interface()
	}

	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return d.value(rv.Elem(), top)

	case reflect.Struct:
		if isScalarType(rt) {
			return rv.Interface()
		}
		return d.record(rv, top)

	case reflect.Slice, reflect.Array:
		if rt == bytesType {
			return rv.Interface()
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = d.value(rv.Index(i), top)
		}
		return out

	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		obj := NewObject()
		for _, k := range keys {
			v := d.value(rv.MapIndex(k), false)
			if v == nil && d.excludeNone {
				continue
			}
			obj.Set(k.String(), v)
		}
		return obj
	}

	return rv.Interface()
}

func (d dumper) record(rv reflect.Value, top bool) *Object {
	rec := recordOf(rv.Type())

	var fields *Fields
	if rec.tracked {
		if rv.CanAddr() {
			fields = rv.Addr().Interface().(tracker).trackedFields()
		} else {
			cp := reflect.New(rv.Type())
			cp.Elem().Set(rv)
			fields = cp.Interface().(tracker).trackedFields()
		}
	}

	obj := NewObject()
	for _, f := range rec.fields {
		if top && d.include != nil && !d.include[f.name] {
			continue
		}
		if top && d.exclude[f.name] {
			continue
		}
		if d.excludeUnset && fields != nil && !fields.IsSet(f.name) {
			continue
		}

		v := d.value(rv.FieldByIndex(f.index), false)
		if v == nil && d.excludeNone {
			continue
		}
		obj.Set(f.name, v)
	}
	return obj
}
