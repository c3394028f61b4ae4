package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/server"
)

const SpecURL = "/openapi.json"

//go:embed static/docs.html
var staticFS embed.FS

var docsTemplate = template.Must(template.ParseFS(staticFS, "static/docs.html"))

// OpenAPIHandler serves the generated document and the Swagger UI page
// that renders it. The router sets the document once every route is known.
type OpenAPIHandler struct {
	Handler

	mu  sync.RWMutex
	doc *openapi3.T
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

func (h *OpenAPIHandler) SetDocument(doc *openapi3.T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doc = doc
}

func (h *OpenAPIHandler) Document() *openapi3.T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.doc
}

func (h *OpenAPIHandler) ServeSpec(c echo.Context) error {
	doc := h.Document()
	if doc == nil {
		return echo.ErrNotFound
	}
	return c.JSON(http.StatusOK, doc)
}

// ServeDocsUI renders the Swagger UI page. Cache-Control is no-cache so the
// page follows the running build.
func (h *OpenAPIHandler) ServeDocsUI(c echo.Context) error {
	title := "API"
	if doc := h.Document(); doc != nil && doc.Info != nil {
		title = doc.Info.Title
	}

	var buf bytes.Buffer
	err := docsTemplate.Execute(&buf, map[string]string{
		"Title":   title,
		"SpecURL": SpecURL,
	})
	if err != nil {
		return errors.Wrap(err, "failed to render docs UI")
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
