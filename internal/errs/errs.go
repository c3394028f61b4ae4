// Package errs defines the error taxonomy returned by handlers and the
// binding pipeline.
//
// Every error that reaches the global error handler is one of:
//   - *RequestValidationError: the request did not match its declared schema (422)
//   - *HTTPError: a domain error raised on purpose by a handler or dependency
//   - *UnicornError: the example application exception with its own handler (418)
//
// Anything else is reported as a generic 500.
package errs
