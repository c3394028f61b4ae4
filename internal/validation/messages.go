package validation

import (
	"fmt"
	"strings"

	"github.com/deppfellow/apitour/internal/errs"
)

// Kind identifies a coercion failure.
type Kind string

const (
	KindMissing  Kind = "value_error.missing"
	KindNone     Kind = "type_error.none.not_allowed"
	KindString   Kind = "type_error.str"
	KindInteger  Kind = "type_error.integer"
	KindFloat    Kind = "type_error.float"
	KindBool     Kind = "type_error.bool"
	KindUUID     Kind = "type_error.uuid"
	KindDatetime Kind = "value_error.datetime"
	KindTime     Kind = "value_error.time"
	KindDuration Kind = "value_error.duration"
	KindList     Kind = "type_error.list"
	KindDict     Kind = "type_error.dict"
	KindBytes    Kind = "type_error.bytes"
	KindFile     Kind = "type_error.file"
	KindEnum     Kind = "type_error.enum"
	KindExtra    Kind = "value_error.extra"
	KindRegex    Kind = "value_error.str.regex"
	KindJSON     Kind = "value_error.jsondecode"
	KindUnion    Kind = "type_error.union"
)

var messages = map[Kind]string{
	KindMissing:  "field required",
	KindNone:     "none is not an allowed value",
	KindString:   "str type expected",
	KindInteger:  "value is not a valid integer",
	KindFloat:    "value is not a valid float",
	KindBool:     "value could not be parsed to a boolean",
	KindUUID:     "value is not a valid uuid",
	KindDatetime: "invalid datetime format",
	KindTime:     "invalid time format",
	KindDuration: "invalid duration format",
	KindList:     "value is not a valid list",
	KindDict:     "value is not a valid dict",
	KindBytes:    "byte type expected",
	KindFile:     "value is not a valid file",
	KindExtra:    "extra fields not permitted",
	KindUnion:    "value does not match any of the allowed shapes",
}

// Error builds the FieldError for a coercion failure of the given kind.
func Error(kind Kind, loc errs.Loc) errs.FieldError {
	return errs.FieldError{
		Loc:  loc,
		Msg:  messages[kind],
		Type: string(kind),
	}
}

func Missing(loc errs.Loc) errs.FieldError {
	return Error(KindMissing, loc)
}

// Enum reports a value outside the permitted literal set.
func Enum(loc errs.Loc, permitted []string) errs.FieldError {
	quoted := make([]string, len(permitted))
	for i, p := range permitted {
		quoted[i] = "'" + p + "'"
	}

	values := make([]any, len(permitted))
	for i, p := range permitted {
		values[i] = p
	}

	return errs.FieldError{
		Loc:  loc,
		Msg:  "value is not a valid enumeration member; permitted: " + strings.Join(quoted, ", "),
		Type: string(KindEnum),
		Ctx:  map[string]any{"enum_values": values},
	}
}

// Regex reports a string that does not fully match pattern.
func Regex(loc errs.Loc, pattern string) errs.FieldError {
	return errs.FieldError{
		Loc:  loc,
		Msg:  fmt.Sprintf("string does not match regex \"%s\"", pattern),
		Type: string(KindRegex),
		Ctx:  map[string]any{"pattern": pattern},
	}
}

// JSONDecode reports a body that could not be parsed at all.
func JSONDecode(pos int64, err error) errs.FieldError {
	return errs.FieldError{
		Loc:  errs.Loc{"body", pos},
		Msg:  "Expecting value: " + err.Error(),
		Type: string(KindJSON),
		Ctx:  map[string]any{"msg": err.Error(), "pos": pos},
	}
}
