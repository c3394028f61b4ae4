package errs

import (
	"net/http"
)

func NewHTTPError(status int, detail any) *HTTPError {
	return &HTTPError{
		Status: status,
		Detail: detail,
	}
}

// NewUnauthorizedError builds a 401. Bearer challenges always advertise the
// scheme so clients know how to retry.
func NewUnauthorizedError(detail string) *HTTPError {
	return &HTTPError{
		Status:  http.StatusUnauthorized,
		Detail:  detail,
		Headers: map[string]string{"WWW-Authenticate": "Bearer"},
	}
}

func NewForbiddenError(detail string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, detail)
}

func NewBadRequestError(detail string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, detail)
}

func NewNotFoundError(detail string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, detail)
}

func NewInternalServerError() *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
