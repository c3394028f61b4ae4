package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/binding"
	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/middleware"
	"github.com/deppfellow/apitour/internal/openapi"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
)

// Handler is the base handler type that holds shared application
// dependencies. Concrete handlers embed it.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it receives the bound request and
// returns the response value.
type HandlerFunc[Req any] func(c echo.Context, req *Req) (any, error)

// Endpoint is a registered route's behavior together with the metadata the
// router and the OpenAPI document need.
type Endpoint struct {
	Plan         *binding.Plan
	Status       int
	Response     schema.Shape
	Include      []string
	Exclude      []string
	ExcludeUnset bool
	ExcludeNone  bool

	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Secured     bool
	Examples    map[string]openapi.Example

	handler Handler
	invoke  func(c echo.Context) (any, error)
}

// Option configures an Endpoint.
type Option func(*Endpoint)

// Status sets the success status (200 by default).
func Status(status int) Option {
	return func(e *Endpoint) { e.Status = status }
}

// ResponseModel declares the response shape; output carries exactly its
// fields.
func ResponseModel(shape schema.Shape) Option {
	return func(e *Endpoint) { e.Response = shape }
}

// Include keeps only the named top-level fields.
func Include(fields ...string) Option {
	return func(e *Endpoint) { e.Include = fields }
}

// Exclude drops the named top-level fields.
func Exclude(fields ...string) Option {
	return func(e *Endpoint) { e.Exclude = fields }
}

// ExcludeUnset omits fields that were never explicitly set.
func ExcludeUnset() Option {
	return func(e *Endpoint) { e.ExcludeUnset = true }
}

// ExcludeNone omits fields whose value is null, at every depth.
func ExcludeNone() Option {
	return func(e *Endpoint) { e.ExcludeNone = true }
}

func Summary(summary string) Option {
	return func(e *Endpoint) { e.Summary = summary }
}

func Description(description string) Option {
	return func(e *Endpoint) { e.Description = description }
}

func Tags(tags ...string) Option {
	return func(e *Endpoint) { e.Tags = tags }
}

func Deprecated() Option {
	return func(e *Endpoint) { e.Deprecated = true }
}

// Secured marks the endpoint as requiring a bearer token in the docs. The
// router still has to put it behind the auth middleware.
func Secured() Option {
	return func(e *Endpoint) { e.Secured = true }
}

// Examples documents named request body examples.
func Examples(examples map[string]openapi.Example) Option {
	return func(e *Endpoint) { e.Examples = examples }
}

// Handle compiles Req and wraps fn into an Endpoint. Every request gets a
// fresh *Req. A malformed request type panics here, at registration.
func Handle[Req any](h Handler, fn HandlerFunc[Req], opts ...Option) *Endpoint {
	plan := binding.MustCompile[Req]()

	e := &Endpoint{
		Plan:    plan,
		Status:  http.StatusOK,
		handler: h,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.invoke = func(c echo.Context) (any, error) {
		req := new(Req)
		if err := plan.Bind(c, req); err != nil {
			return nil, err
		}
		return fn(c, req)
	}

	return e
}

// Operation describes the endpoint for the OpenAPI document.
func (e *Endpoint) Operation(method, path, id string) openapi.Operation {
	return openapi.Operation{
		Method:      method,
		Path:        path,
		ID:          id,
		Summary:     e.Summary,
		Description: e.Description,
		Tags:        e.Tags,
		Deprecated:  e.Deprecated,
		Secured:     e.Secured,
		Status:      e.Status,
		Plan:        e.Plan,
		Response:    e.Response,
		Examples:    e.Examples,
	}
}

// ServeHTTP is the echo handler: bind, invoke, shape and write, with the
// durations of each phase logged and attached to the New Relic transaction.
func (e *Endpoint) ServeHTTP(c echo.Context) error {
	start := time.Now()
	txn := newrelic.FromContext(c.Request().Context())

	logger := middleware.GetLogger(c).With().
		Str("operation", "handler").
		Str("route", c.Path()).
		Logger()

	if txn != nil {
		txn.AddAttribute("handler.name", c.Path())
	}

	result, err := e.invoke(c)
	handlerDuration := time.Since(start)

	if err != nil {
		var validationErr *errs.RequestValidationError
		if errors.As(err, &validationErr) {
			logger.Debug().
				Int("error_count", len(validationErr.Errors)).
				Dur("validation_duration", handlerDuration).
				Msg("request validation failed")
			if txn != nil {
				txn.AddAttribute("validation.status", "failed")
			}
			return err
		}

		logger.Debug().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	body, err := e.render(result)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("response does not match the declared model")
		return err
	}

	totalDuration := time.Since(start)
	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return c.JSON(e.Status, body)
}

// render shapes a handler result into the JSON tree that is written.
func (e *Endpoint) render(result any) (any, error) {
	if e.Response != nil {
		conformed, issues := e.Response.Conform(result, e.ExcludeUnset)
		if len(issues) > 0 {
			return nil, errors.WithStack(&errs.ResponseValidationError{Model: e.Response.Name(), Errors: issues})
		}
		result = conformed
	}

	return schema.Dump(result, schema.DumpOptions{
		Include:      e.Include,
		Exclude:      e.Exclude,
		ExcludeUnset: e.ExcludeUnset,
		ExcludeNone:  e.ExcludeNone,
	}), nil
}
