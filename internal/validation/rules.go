package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/errs"
)

var (
	validate = validator.New()

	patternsMu sync.RWMutex
	patterns   = map[string]*regexp.Regexp{}
)

// Validator exposes the shared instance for struct validation elsewhere.
func Validator() *validator.Validate {
	return validate
}

// Rules checks value against a validator tag string and translates every
// failure. A malformed rule string is a programming error and is returned as
// err.
func Rules(value any, rules string, loc errs.Loc) ([]errs.FieldError, error) {
	if rules == "" {
		return nil, nil
	}

	verr := validate.Var(value, rules)
	if verr == nil {
		return nil, nil
	}

	var failures validator.ValidationErrors
	if !errors.As(verr, &failures) {
		return nil, errors.Wrapf(verr, "invalid rules %q", rules)
	}

	out := make([]errs.FieldError, 0, len(failures))
	for _, fe := range failures {
		out = append(out, translate(fe, loc))
	}

	return out, nil
}

// Pattern fully matches value against pattern. Compiled patterns are cached.
func Pattern(value, pattern string, loc errs.Loc) (*errs.FieldError, error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}

	if re.MatchString(value) {
		return nil, nil
	}

	fe := Regex(loc, pattern)
	return &fe, nil
}

// CompilePattern validates pattern syntax ahead of time.
func CompilePattern(pattern string) error {
	_, err := compile(pattern)
	return err
}

func compile(pattern string) (*regexp.Regexp, error) {
	patternsMu.RLock()
	re, ok := patterns[pattern]
	patternsMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
	}

	patternsMu.Lock()
	patterns[pattern] = re
	patternsMu.Unlock()

	return re, nil
}

func translate(fe validator.FieldError, loc errs.Loc) errs.FieldError {
	kind := fe.Kind()
	param := fe.Param()
	limit := limitValue(param)

	bound := func(msg, typ string) errs.FieldError {
		return errs.FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf(msg, param),
			Type: typ,
			Ctx:  map[string]any{"limit_value": limit},
		}
	}

	switch fe.Tag() {
	case "min":
		switch kind {
		case reflect.String:
			return bound("ensure this value has at least %s characters", "value_error.any_str.min_length")
		case reflect.Slice, reflect.Array, reflect.Map:
			return bound("ensure this value has at least %s items", "value_error.list.min_items")
		}
		return bound("ensure this value is greater than or equal to %s", "value_error.number.not_ge")

	case "max":
		switch kind {
		case reflect.String:
			return bound("ensure this value has at most %s characters", "value_error.any_str.max_length")
		case reflect.Slice, reflect.Array, reflect.Map:
			return bound("ensure this value has at most %s items", "value_error.list.max_items")
		}
		return bound("ensure this value is less than or equal to %s", "value_error.number.not_le")

	case "gt":
		return bound("ensure this value is greater than %s", "value_error.number.not_gt")
	case "gte":
		return bound("ensure this value is greater than or equal to %s", "value_error.number.not_ge")
	case "lt":
		return bound("ensure this value is less than %s", "value_error.number.not_lt")
	case "lte":
		return bound("ensure this value is less than or equal to %s", "value_error.number.not_le")

	case "oneof":
		return Enum(loc, strings.Fields(param))

	case "url", "http_url":
		return errs.FieldError{Loc: loc, Msg: "invalid or missing URL scheme", Type: "value_error.url.scheme"}

	case "email":
		return errs.FieldError{Loc: loc, Msg: "value is not a valid email address", Type: "value_error.email"}

	case "uuid", "uuid4":
		return Error(KindUUID, loc)
	}

	if param != "" {
		return errs.FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("failed on the '%s=%s' rule", fe.Tag(), param),
			Type: "value_error." + fe.Tag(),
		}
	}

	return errs.FieldError{
		Loc:  loc,
		Msg:  fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
		Type: "value_error." + fe.Tag(),
	}
}

// limitValue keeps integral limits integral so they render as 3, not 3.0.
func limitValue(param string) any {
	if i, err := strconv.ParseInt(param, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(param, 64); err == nil {
		return f
	}
	return param
}
