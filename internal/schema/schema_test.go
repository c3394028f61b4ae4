package schema

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/lib/jsonutil"
)

type testItem struct {
	Fields `json:"-"`

	Name  string   `json:"name"`
	Price *float64 `json:"price" validate:"omitempty,gt=0"`
	Tax   float64  `json:"tax" default:"10.5"`
	Tags  []string `json:"tags" default:""`
}

type strictItem struct {
	Name string `json:"name"`
}

func (strictItem) ForbidExtra() bool { return true }

type color string

func (color) EnumValues() []string { return []string{"red", "green"} }

type car struct {
	Fields `json:"-"`

	Kind string `json:"type"`
}

type plane struct {
	Fields `json:"-"`

	Kind string `json:"type"`
	Size int    `json:"size"`
}

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := jsonutil.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestParseAppliesDefaultsWithoutMarkingThemSet(t *testing.T) {
	item, err := Parse[testItem](map[string]any{"name": "Foo"})
	require.NoError(t, err)

	assert.Equal(t, "Foo", item.Name)
	assert.Nil(t, item.Price)
	assert.Equal(t, 10.5, item.Tax)
	assert.Equal(t, []string{}, item.Tags)

	assert.True(t, item.IsSet("name"))
	assert.False(t, item.IsSet("tax"))
	assert.Equal(t, []string{"name"}, item.FieldsSet())
}

func TestDumpExcludeUnset(t *testing.T) {
	item := MustParse[testItem](map[string]any{"name": "Foo", "price": 50.2})

	full := Dump(item, DumpOptions{})
	assert.JSONEq(t, `{"name":"Foo","price":50.2,"tax":10.5,"tags":[]}`, encode(t, full))

	unset := Dump(item, DumpOptions{ExcludeUnset: true})
	assert.JSONEq(t, `{"name":"Foo","price":50.2}`, encode(t, unset))
}

func TestDumpIncludeExclude(t *testing.T) {
	item := MustParse[testItem](map[string]any{"name": "Foo", "price": 1})

	assert.JSONEq(t, `{"name":"Foo"}`, encode(t, Dump(item, DumpOptions{Include: []string{"name"}})))
	assert.JSONEq(t, `{"name":"Foo","price":1,"tags":[]}`, encode(t, Dump(item, DumpOptions{Exclude: []string{"tax"}})))
}

func TestDumpExcludeNone(t *testing.T) {
	opts := DumpOptions{ExcludeNone: true}

	assert.JSONEq(t, `{"name":"Bar","tax":0,"tags":[]}`, encode(t, Dump(testItem{Name: "Bar"}, opts)))
	assert.JSONEq(t, `[{"name":"A","tax":0,"tags":[]}]`, encode(t, Dump([]testItem{{Name: "A"}}, opts)))
	assert.JSONEq(t, `{"b":1,"c":{"name":"C","tax":0,"tags":[]}}`,
		encode(t, Dump(map[string]any{"a": nil, "b": 1, "c": testItem{Name: "C"}}, opts)))
}

func TestUntrackedRecordsDumpInFull(t *testing.T) {
	item := testItem{Name: "Bar"}
	assert.JSONEq(t, `{"name":"Bar","price":null,"tax":0,"tags":[]}`,
		encode(t, Dump(item, DumpOptions{ExcludeUnset: true})))
}

func TestParseCollectsEveryError(t *testing.T) {
	_, err := Parse[testItem](map[string]any{"price": "abc", "tags": "x"})

	var verr *errs.RequestValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 3)

	assert.Equal(t, errs.Loc{"name"}, verr.Errors[0].Loc)
	assert.Equal(t, "value_error.missing", verr.Errors[0].Type)
	assert.Equal(t, errs.Loc{"price"}, verr.Errors[1].Loc)
	assert.Equal(t, "type_error.float", verr.Errors[1].Type)
	assert.Equal(t, errs.Loc{"tags"}, verr.Errors[2].Loc)
	assert.Equal(t, "type_error.list", verr.Errors[2].Type)
}

func TestParseRunsFieldRules(t *testing.T) {
	_, err := Parse[testItem](map[string]any{"name": "Foo", "price": -1})

	var verr *errs.RequestValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "ensure this value is greater than 0", verr.Errors[0].Msg)
	assert.Equal(t, "value_error.number.not_gt", verr.Errors[0].Type)
}

func TestStrictRecordRejectsExtraKeys(t *testing.T) {
	_, err := Parse[strictItem](map[string]any{"name": "Foo", "b": 1, "a": 2})

	var verr *errs.RequestValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 2)
	assert.Equal(t, errs.Loc{"a"}, verr.Errors[0].Loc)
	assert.Equal(t, errs.Loc{"b"}, verr.Errors[1].Loc)
	assert.Equal(t, "extra fields not permitted", verr.Errors[0].Msg)
}

func TestCoerceScalars(t *testing.T) {
	tests := []struct {
		name string
		rt   reflect.Type
		raw  any
		want any
	}{
		{"int from string", reflect.TypeFor[int](), "42", 42},
		{"int from integral float", reflect.TypeFor[int](), 3.0, 3},
		{"float from string", reflect.TypeFor[float64](), "35.4", 35.4},
		{"bool from yes", reflect.TypeFor[bool](), "yes", true},
		{"bool from off", reflect.TypeFor[bool](), "off", false},
		{"string from number", reflect.TypeFor[string](), 5, "5"},
		{"enum member", reflect.TypeFor[color](), "red", color("red")},
		{"list of ints", reflect.TypeFor[[]int](), []any{"1", 2}, []int{1, 2}},
		{"map of floats", reflect.TypeFor[map[string]float64](), map[string]any{"a": "1.5"}, map[string]float64{"a": 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, issues := Coerce(tt.rt, tt.raw, errs.Loc{"query", "x"})
			require.Empty(t, issues)
			assert.Equal(t, tt.want, v.Interface())
		})
	}
}

func TestCoerceFailures(t *testing.T) {
	_, issues := Coerce(reflect.TypeFor[int](), "foo", errs.Loc{"path", "item_id"})
	require.Len(t, issues, 1)
	assert.Equal(t, "value is not a valid integer", issues[0].Msg)
	assert.Equal(t, errs.Loc{"path", "item_id"}, issues[0].Loc)

	_, issues = Coerce(reflect.TypeFor[int](), 3.5, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, "type_error.integer", issues[0].Type)

	_, issues = Coerce(reflect.TypeFor[color](), "blue", errs.Loc{"path", "c"})
	require.Len(t, issues, 1)
	assert.Equal(t, "value is not a valid enumeration member; permitted: 'red', 'green'", issues[0].Msg)

	_, issues = Coerce(reflect.TypeFor[[]int](), []any{1, "x"}, errs.Loc{"body"})
	require.Len(t, issues, 1)
	assert.Equal(t, errs.Loc{"body", 1}, issues[0].Loc)

	_, issues = Coerce(reflect.TypeFor[string](), nil, errs.Loc{"body", "name"})
	require.Len(t, issues, 1)
	assert.Equal(t, "type_error.none.not_allowed", issues[0].Type)
}

func TestCoerceNullIntoPointer(t *testing.T) {
	v, issues := Coerce(reflect.TypeFor[*string](), nil, nil)
	require.Empty(t, issues)
	assert.True(t, v.IsNil())
}

func TestCoerceDatetime(t *testing.T) {
	v, issues := Coerce(reflect.TypeFor[time.Time](), "2008-09-15T15:53:00+05:00", nil)
	require.Empty(t, issues)
	got := v.Interface().(time.Time)
	_, offset := got.Zone()
	assert.Equal(t, 5*3600, offset)
	assert.Equal(t, 15, got.Hour())

	v, issues = Coerce(reflect.TypeFor[time.Time](), "2008-09-15T15:53:00", nil)
	require.Empty(t, issues)
	assert.Equal(t, time.UTC, v.Interface().(time.Time).Location())

	_, issues = Coerce(reflect.TypeFor[time.Time](), "yesterday", nil)
	require.Len(t, issues, 1)
	assert.Equal(t, "value_error.datetime", issues[0].Type)
}

func TestModelConform(t *testing.T) {
	shape := Model[testItem]()

	out, issues := shape.Conform(map[string]any{"name": "Foo", "extra": true}, false)
	require.Empty(t, issues)
	assert.JSONEq(t, `{"name":"Foo","price":null,"tax":10.5,"tags":[]}`, encode(t, Dump(out, DumpOptions{})))

	_, issues = shape.Conform(map[string]any{"price": 1}, false)
	require.Len(t, issues, 1)
	assert.Equal(t, errs.Loc{"response", "name"}, issues[0].Loc)
}

func TestUnionFirstMatchWins(t *testing.T) {
	shape := Union(Model[plane](), Model[car]())
	assert.Equal(t, "plane | car", shape.Name())

	out, issues := shape.Conform(map[string]any{"type": "plane", "size": 5}, false)
	require.Empty(t, issues)
	assert.IsType(t, plane{}, out)

	out, issues = shape.Conform(map[string]any{"type": "car"}, false)
	require.Empty(t, issues)
	assert.IsType(t, car{}, out)

	_, issues = shape.Conform("nope", false)
	assert.NotEmpty(t, issues)
}

func TestObjectKeepsInsertionOrder(t *testing.T) {
	obj := NewObject().Set("b", 1).Set("a", 2).Set("b", 3)
	assert.Equal(t, `{"b":3,"a":2}`, encode(t, obj))
	assert.Equal(t, []string{"b", "a"}, obj.Keys())

	obj.Delete("b")
	assert.Equal(t, `{"a":2}`, encode(t, obj))
	assert.Equal(t, 1, obj.Len())
}

func TestDecodeOrderedKeepsMemberOrder(t *testing.T) {
	raw := `{"z":1,"a":{"y":true,"b":null},"m":[{"k":"v","c":2.5}],"s":"x"}`

	v, err := DecodeOrdered([]byte(raw))
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m", "s"}, obj.Keys())
	assert.Equal(t, raw, encode(t, obj))

	nested, _ := obj.Get("a")
	assert.Equal(t, []string{"y", "b"}, nested.(*Object).Keys())

	list, err := DecodeOrdered([]byte(`[3,"x",false]`))
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("3"), "x", false}, list)
}

func TestDurationString(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "PT0S"},
		{time.Hour, "PT1H"},
		{67 * time.Minute, "PT1H7M"},
		{1500 * time.Millisecond, "PT1.5S"},
		{26 * time.Hour, "P1DT2H"},
		{48 * time.Hour, "P2D"},
		{-90 * time.Second, "-PT1M30S"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Duration(tt.d).String())
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"PT1H", time.Hour},
		{"P1DT2H30M", 26*time.Hour + 30*time.Minute},
		{"PT0.5S", 500 * time.Millisecond},
		{"P1W", 7 * 24 * time.Hour},
		{"02:00:00", 2 * time.Hour},
		{"1 day, 00:00:01", 24*time.Hour + time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}

	for _, bad := range []string{"", "P", "PT", "1h"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestDurationCoercesSeconds(t *testing.T) {
	v, issues := Coerce(reflect.TypeFor[Duration](), 3600, nil)
	require.Empty(t, issues)
	assert.Equal(t, time.Hour, v.Interface().(Duration).Std())
	assert.Equal(t, `"PT1H"`, encode(t, v.Interface()))
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("14:23:55")
	require.NoError(t, err)
	assert.Equal(t, 14, tod.Hour())
	assert.Equal(t, 23, tod.Minute())
	assert.Equal(t, 55, tod.Second())
	assert.Equal(t, "14:23:55", tod.String())

	tod, err = ParseTimeOfDay("08:05")
	require.NoError(t, err)
	assert.Equal(t, "08:05:00", tod.String())

	tod, err = ParseTimeOfDay("01:02:03.25")
	require.NoError(t, err)
	assert.Equal(t, "01:02:03.250000", tod.String())

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 1, 2, 3, 250000000, time.UTC), tod.On(day))

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}
