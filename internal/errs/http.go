package errs

import (
	"fmt"
	"strings"
)

// HTTPError is a domain error with a fixed status code. It renders as
// {"detail": Detail} and attaches Headers to the response.
type HTTPError struct {
	Status  int               `json:"-"`
	Detail  any               `json:"detail"`
	Headers map[string]string `json:"-"`
}

func (e *HTTPError) Error() string {
	if s, ok := e.Detail.(string); ok {
		return s
	}
	return fmt.Sprintf("%d: %v", e.Status, e.Detail)
}

func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithHeader returns a copy of the error carrying an extra response header.
func (e *HTTPError) WithHeader(key, value string) *HTTPError {
	headers := make(map[string]string, len(e.Headers)+1)
	for k, v := range e.Headers {
		headers[k] = v
	}
	headers[key] = value

	return &HTTPError{
		Status:  e.Status,
		Detail:  e.Detail,
		Headers: headers,
	}
}

// MakeUpperCaseWithUnderscores turns a status text such as "Not Found" into
// an error code like "NOT_FOUND".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
