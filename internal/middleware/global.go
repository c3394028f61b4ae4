package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/server"
)

// ExceptionHandler writes the response for errors it recognizes and
// reports whether it did.
type ExceptionHandler func(c echo.Context, err error) (bool, error)

// Catch adapts a typed handler into an ExceptionHandler matching any error
// whose chain contains an E.
func Catch[E error](fn func(c echo.Context, err E) error) ExceptionHandler {
	return func(c echo.Context, err error) (bool, error) {
		var target E
		if !errors.As(err, &target) {
			return false, nil
		}
		return true, fn(c, target)
	}
}

// GlobalMiddlewares groups the global middleware and the error handler.
type GlobalMiddlewares struct {
	server   *server.Server
	handlers []ExceptionHandler
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// Register adds exception handlers. They run in registration order, before
// the built-in mappings.
func (global *GlobalMiddlewares) Register(handlers ...ExceptionHandler) {
	global.handlers = append(global.handlers, handlers...)
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  global.server.Config.Server.CORSAllowedOrigins,
		ExposeHeaders: []string{ProcessTimeHeader, RequestIDHeader},
	})
}

// RequestLogger emits one "API" line per request with its level chosen by
// the final status. HandleError lets the global error handler commit the
// response first so the logged status is the one the client saw.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogError:    true,
		LogLatency:  true,
		LogHost:     true,
		LogMethod:   true,
		LogURIPath:  true,
		HandleError: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case v.Status >= 500:
				e = logger.Error().Err(v.Error)
			case v.Status >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", v.Status).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns panics into errors for the global error handler.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: true,
	})
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the HTTP error funnel:
//
//  1. registered exception handlers
//  2. *errs.RequestValidationError: 422 {"detail": [...], "body": ...}
//  3. *errs.HTTPError: its status, headers and {"detail": ...}
//  4. *echo.HTTPError (unknown route, wrong method, bad body): its status
//  5. anything else: 500 {"detail": "Internal Server Error"}
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := GetLogger(c)

	for _, handle := range global.handlers {
		handled, handlerErr := handle(c, err)
		if !handled {
			continue
		}
		if handlerErr != nil {
			logger.Error().Err(handlerErr).Msg("exception handler failed")
			global.write(c, errs.NewInternalServerError(), err)
		}
		return
	}

	var validationErr *errs.RequestValidationError
	if errors.As(err, &validationErr) {
		logger.Debug().
			Int("status", http.StatusUnprocessableEntity).
			Int("error_count", len(validationErr.Errors)).
			Msg("request validation failed")
		if writeErr := c.JSON(http.StatusUnprocessableEntity, validationErr); writeErr != nil {
			logger.Error().Err(writeErr).Msg("failed to write validation error")
		}
		return
	}

	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):

	case errors.As(err, &echoErr):
		detail := http.StatusText(echoErr.Code)
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			detail = msg
		}
		httpErr = errs.NewHTTPError(echoErr.Code, detail)

	default:
		httpErr = errs.NewInternalServerError()
	}

	global.write(c, httpErr, err)
}

func (global *GlobalMiddlewares) write(c echo.Context, httpErr *errs.HTTPError, original error) {
	logger := GetLogger(c)

	if httpErr.Status >= http.StatusInternalServerError {
		logger.Error().Stack().
			Err(original).
			Int("status", httpErr.Status).
			Str("error_code", errs.MakeUpperCaseWithUnderscores(http.StatusText(httpErr.Status))).
			Msg("request failed")
	} else {
		logger.Debug().
			Err(original).
			Int("status", httpErr.Status).
			Msg("request rejected")
	}

	for key, value := range httpErr.Headers {
		c.Response().Header().Set(key, value)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}
	if err := c.JSON(httpErr.Status, httpErr); err != nil {
		logger.Error().Err(err).Msg("failed to write error response")
	}
}
