package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/validation"
)

var (
	bytesType     = reflect.TypeFor[[]byte]()
	uuidType      = reflect.TypeFor[uuid.UUID]()
	timeType      = reflect.TypeFor[time.Time]()
	timeOfDayType = reflect.TypeFor[TimeOfDay]()
	durationType  = reflect.TypeFor[Duration]()
	enumType      = reflect.TypeFor[Enum]()
)

func isScalarType(rt reflect.Type) bool {
	switch rt {
	case uuidType, timeType, timeOfDayType, durationType:
		return true
	}
	return false
}

// Coerce converts a loosely typed value (decoded JSON, form strings, Go
// values) into rt. Every failure below raw is reported at its own location.
func Coerce(rt reflect.Type, raw any, loc errs.Loc) (reflect.Value, []errs.FieldError) {
	if raw == nil {
		switch rt.Kind() {
		case reflect.Pointer, reflect.Interface:
			return reflect.Zero(rt), nil
		}
		return reflect.Value{}, []errs.FieldError{validation.Error(validation.KindNone, loc)}
	}

	rv := reflect.ValueOf(raw)
	if rv.Type() == rt {
		return rv, nil
	}

	fail := func(kind validation.Kind) (reflect.Value, []errs.FieldError) {
		return reflect.Value{}, []errs.FieldError{validation.Error(kind, loc)}
	}

	switch rt.Kind() {
	case reflect.Pointer:
		elem, issues := Coerce(rt.Elem(), raw, loc)
		if len(issues) > 0 {
			return reflect.Value{}, issues
		}
		p := reflect.New(rt.Elem())
		p.Elem().Set(elem)
		return p, nil

	case reflect.Interface:
		if rv.Type().Implements(rt) {
			out := reflect.New(rt).Elem()
			out.Set(rv)
			return out, nil
		}
		return fail(validation.KindDict)
	}

	switch rt {
	case uuidType:
		s, ok := asString(raw)
		if !ok {
			return fail(validation.KindUUID)
		}
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return fail(validation.KindUUID)
		}
		return reflect.ValueOf(id), nil

	case timeType:
		t, ok := parseDatetime(raw)
		if !ok {
			return fail(validation.KindDatetime)
		}
		return reflect.ValueOf(t), nil

	case timeOfDayType:
		s, ok := raw.(string)
		if !ok {
			return fail(validation.KindTime)
		}
		t, err := ParseTimeOfDay(s)
		if err != nil {
			return fail(validation.KindTime)
		}
		return reflect.ValueOf(t), nil

	case durationType:
		d, ok := parseDurationValue(raw)
		if !ok {
			return fail(validation.KindDuration)
		}
		return reflect.ValueOf(d), nil

	case bytesType:
		switch v := raw.(type) {
		case string:
			return reflect.ValueOf([]byte(v)), nil
		case []byte:
			return reflect.ValueOf(v), nil
		}
		return fail(validation.KindBytes)
	}

	if rt.Implements(enumType) && rt.Kind() == reflect.String {
		s, ok := asString(raw)
		permitted := reflect.Zero(rt).Interface().(Enum).EnumValues()
		if ok {
			for _, p := range permitted {
				if p == s {
					return reflect.ValueOf(s).Convert(rt), nil
				}
			}
		}
		return reflect.Value{}, []errs.FieldError{validation.Enum(loc, permitted)}
	}

	switch rt.Kind() {
	case reflect.String:
		s, ok := asString(raw)
		if !ok {
			return fail(validation.KindString)
		}
		return reflect.ValueOf(s).Convert(rt), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := asInt(raw)
		out := reflect.New(rt).Elem()
		if !ok || out.OverflowInt(i) {
			return fail(validation.KindInteger)
		}
		out.SetInt(i)
		return out, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok := asInt(raw)
		out := reflect.New(rt).Elem()
		if !ok || i < 0 || out.OverflowUint(uint64(i)) {
			return fail(validation.KindInteger)
		}
		out.SetUint(uint64(i))
		return out, nil

	case reflect.Float32, reflect.Float64:
		f, ok := asFloat(raw)
		if !ok {
			return fail(validation.KindFloat)
		}
		return reflect.ValueOf(f).Convert(rt), nil

	case reflect.Bool:
		b, ok := asBool(raw)
		if !ok {
			return fail(validation.KindBool)
		}
		return reflect.ValueOf(b).Convert(rt), nil

	case reflect.Slice, reflect.Array:
		return coerceList(rt, raw, loc)

	case reflect.Map:
		return coerceMap(rt, raw, loc)

	case reflect.Struct:
		return decodeRecord(rt, raw, loc)
	}

	panic(fmt.Sprintf("schema: unsupported type %s", rt))
}

func coerceList(rt reflect.Type, raw any, loc errs.Loc) (reflect.Value, []errs.FieldError) {
	items, ok := asList(raw)
	if !ok {
		return reflect.Value{}, []errs.FieldError{validation.Error(validation.KindList, loc)}
	}

	var out reflect.Value
	if rt.Kind() == reflect.Array {
		if len(items) != rt.Len() {
			return reflect.Value{}, []errs.FieldError{validation.Error(validation.KindList, loc)}
		}
		out = reflect.New(rt).Elem()
	} else {
		out = reflect.MakeSlice(rt, len(items), len(items))
	}

	var issues []errs.FieldError
	for i, item := range items {
		v, itemIssues := Coerce(rt.Elem(), item, loc.Child(i))
		if len(itemIssues) > 0 {
			issues = append(issues, itemIssues...)
			continue
		}
		out.Index(i).Set(v)
	}

	if len(issues) > 0 {
		return reflect.Value{}, issues
	}
	return out, nil
}

func coerceMap(rt reflect.Type, raw any, loc errs.Loc) (reflect.Value, []errs.FieldError) {
	m, ok := asMap(raw)
	if !ok || rt.Key().Kind() != reflect.String {
		return reflect.Value{}, []errs.FieldError{validation.Error(validation.KindDict, loc)}
	}

	out := reflect.MakeMapWithSize(rt, len(m))
	var issues []errs.FieldError
	for _, k := range sortedKeys(m) {
		v, itemIssues := Coerce(rt.Elem(), m[k], loc.Child(k))
		if len(itemIssues) > 0 {
			issues = append(issues, itemIssues...)
			continue
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(rt.Key()), v)
	}

	if len(issues) > 0 {
		return reflect.Value{}, issues
	}
	return out, nil
}

func asString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return "", false
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	}
	return "", false
}

func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case bool:
		return 0, false
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		return integral(f, err == nil)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return i, err == nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, false
		}
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return integral(rv.Float(), true)
	}
	return 0, false
}

func integral(f float64, ok bool) (int64, bool) {
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case bool:
		return 0, false
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func asBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case json.Number:
		switch v.String() {
		case "0":
			return false, true
		case "1":
			return true, true
		}
		return false, false
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "on", "t", "true", "y", "yes":
			return true, true
		case "0", "off", "f", "false", "n", "no":
			return false, true
		}
		return false, false
	}

	if i, ok := asInt(raw); ok && (i == 0 || i == 1) {
		return i == 1, true
	}
	return false, false
}

func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case string, []byte:
		return nil, false
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asMap(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case *Object:
		if v == nil {
			return nil, false
		}
		return v.Map(), true
	}

	rv := reflect.ValueOf(raw)
	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	case IsRecord(rv.Type()) || (rv.Kind() == reflect.Pointer && !rv.IsNil() && IsRecord(rv.Type().Elem())):
		if obj, ok := Dump(raw, DumpOptions{ExcludeUnset: true}).(*Object); ok {
			return obj.Map(), true
		}
	}
	return nil, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDatetime(raw any) (time.Time, bool) {
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return time.Time{}, false
		}
	}

	f, ok := asFloat(raw)
	if !ok {
		return time.Time{}, false
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

func parseDurationValue(raw any) (Duration, bool) {
	if s, ok := raw.(string); ok {
		if d, err := ParseDuration(s); err == nil {
			return d, true
		}
	}

	f, ok := asFloat(raw)
	if !ok {
		return 0, false
	}
	return Duration(f * float64(time.Second)), true
}
