package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/handler"
	"github.com/deppfellow/apitour/internal/middleware"
)

// registerSystemRoutes registers the endpoints that are not part of the
// documented API.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET(handler.SpecURL, h.OpenAPI.ServeSpec)
	r.GET("/docs", h.OpenAPI.ServeDocsUI)

	if m.Metrics != nil {
		r.GET("/metrics", m.Metrics.Handler())
	}
}
