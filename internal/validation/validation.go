// Package validation owns the shared validator instance and the error
// vocabulary used when a value fails to coerce or violates a constraint.
//
// Constraint rules are written as go-playground/validator tags
// (`validate:"max=3"`, `validate:"gte=1,lt=10"`) and failures are reported
// with the messages and error types clients of the API already expect, e.g.
//
//	{"loc": ["query", "q"], "msg": "ensure this value has at most 3 characters",
//	 "type": "value_error.any_str.max_length", "ctx": {"limit_value": 3}}
package validation
