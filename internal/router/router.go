// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes, mapping route
// templates to their endpoints, and builds the OpenAPI document from the
// same table.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/handler"
	"github.com/deppfellow/apitour/internal/lib/jsonutil"
	"github.com/deppfellow/apitour/internal/middleware"
	"github.com/deppfellow/apitour/internal/openapi"
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

const apiVersion = "0.1.0"

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) (*echo.Echo, error) {
	middlewares := middleware.NewMiddlewares(s, services)
	middlewares.Global.Register(handler.UnicornExceptionHandler())

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.JSONSerializer = jsonutil.Serializer{}
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.ProcessTime(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Metrics.Collect(),
		middlewares.RateLimit.Limit(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
	)

	registerSystemRoutes(router, h, middlewares)

	table := newTable(router)
	registerAPIRoutes(table, h, middlewares)
	table.redirectSlashes()

	doc, err := openapi.Build(openapi.Info{
		Title:       s.Config.Observability.ServiceName,
		Version:     apiVersion,
		Description: "A tour of request parsing, validation and response shaping.",
	}, table.operations())
	if err != nil {
		return nil, errors.Wrap(err, "failed to build openapi document")
	}
	h.OpenAPI.SetDocument(doc)

	return router, nil
}
