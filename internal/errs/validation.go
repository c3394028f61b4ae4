package errs

import (
	"fmt"
	"strings"
)

// Loc is the path of a failing value: the parameter source ("query", "body",
// ...) followed by field names and list indexes.
type Loc []any

// Child returns a new location one level below l.
func (l Loc) Child(key any) Loc {
	out := make(Loc, len(l), len(l)+1)
	copy(out, l)
	return append(out, key)
}

func (l Loc) String() string {
	parts := make([]string, len(l))
	for i, p := range l {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}

// FieldError describes one failing value.
type FieldError struct {
	Loc  Loc            `json:"loc"`
	Msg  string         `json:"msg"`
	Type string         `json:"type"`
	Ctx  map[string]any `json:"ctx,omitempty"`
}

// RequestValidationError aggregates every FieldError found while binding a
// request. Body echoes the payload as it was received.
type RequestValidationError struct {
	Errors []FieldError `json:"detail"`
	Body   any          `json:"body"`
}

func (e *RequestValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("1 validation error: %s: %s", e.Errors[0].Loc, e.Errors[0].Msg)
	}

	return fmt.Sprintf("%d validation errors", len(e.Errors))
}

// ResponseValidationError reports a handler result that does not fit its
// declared response model. It is a server fault and renders as a 500.
type ResponseValidationError struct {
	Model  string
	Errors []FieldError
}

func (e *ResponseValidationError) Error() string {
	return fmt.Sprintf("response does not match %s: %d validation errors", e.Model, len(e.Errors))
}
