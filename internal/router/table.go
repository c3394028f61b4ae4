package router

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/handler"
	"github.com/deppfellow/apitour/internal/openapi"
)

// route is one entry of the API route table.
type route struct {
	method   string
	template string
	name     string
	endpoint *handler.Endpoint
}

// table registers templated routes on echo and remembers them for the
// OpenAPI document and the slash redirects.
type table struct {
	echo   *echo.Echo
	routes []route
	paths  map[string]bool
}

func newTable(e *echo.Echo) *table {
	return &table{
		echo:  e,
		paths: map[string]bool{},
	}
}

var (
	segmentParam  = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	wildcardParam = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*):path\}$`)
	nonWord       = regexp.MustCompile(`\W`)
)

// echoPath translates a route template into an echo path: {name} becomes
// :name and a trailing {name:path} becomes *. The wildcard's declared name
// is returned so it can be restored per request.
func echoPath(template string) (path string, wildcard string) {
	path = template
	if m := wildcardParam.FindStringSubmatch(path); m != nil {
		wildcard = m[1]
		path = wildcardParam.ReplaceAllString(path, "*")
	}
	path = segmentParam.ReplaceAllString(path, ":$1")
	return path, wildcard
}

// operationID follows the "<name><path>_<method>" form, non-word
// characters replaced by underscores.
func operationID(name, template, method string) string {
	return nonWord.ReplaceAllString(name+openapi.DocumentPath(template), "_") + "_" + strings.ToLower(method)
}

func (t *table) add(method, template, name string, endpoint *handler.Endpoint, mws ...echo.MiddlewareFunc) {
	path, wildcard := echoPath(template)

	h := endpoint.ServeHTTP
	if wildcard != "" {
		h = renameWildcard(wildcard, h)
	}
	if endpoint.Summary == "" {
		endpoint.Summary = openapi.Title(name)
	}

	t.echo.Add(method, path, h, mws...).Name = name
	t.paths[path] = true
	t.routes = append(t.routes, route{
		method:   method,
		template: template,
		name:     name,
		endpoint: endpoint,
	})
}

func (t *table) GET(template, name string, endpoint *handler.Endpoint, mws ...echo.MiddlewareFunc) {
	t.add(http.MethodGet, template, name, endpoint, mws...)
}

func (t *table) POST(template, name string, endpoint *handler.Endpoint, mws ...echo.MiddlewareFunc) {
	t.add(http.MethodPost, template, name, endpoint, mws...)
}

func (t *table) PUT(template, name string, endpoint *handler.Endpoint, mws ...echo.MiddlewareFunc) {
	t.add(http.MethodPut, template, name, endpoint, mws...)
}

func (t *table) PATCH(template, name string, endpoint *handler.Endpoint, mws ...echo.MiddlewareFunc) {
	t.add(http.MethodPatch, template, name, endpoint, mws...)
}

// redirectSlashes answers "/x" with a 307 to "/x/" for every "/x/" route
// whose slash-less path has no route of its own.
func (t *table) redirectSlashes() {
	for _, r := range t.routes {
		path, _ := echoPath(r.template)
		if path == "/" || !strings.HasSuffix(path, "/") {
			continue
		}
		bare := strings.TrimSuffix(path, "/")
		if t.paths[bare] {
			continue
		}
		t.paths[bare] = true
		t.echo.Any(bare, redirectTo(path))
	}
}

func redirectTo(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		target := path
		if query := c.QueryString(); query != "" {
			target += "?" + query
		}
		return c.Redirect(http.StatusTemporaryRedirect, target)
	}
}

// renameWildcard exposes echo's "*" capture under its declared name. Echo
// matches on the escaped path whenever the request has one, so the capture
// is unescaped here ("a%2Fb" -> "a/b").
func renameWildcard(name string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		names := append([]string(nil), c.ParamNames()...)
		values := append([]string(nil), c.ParamValues()...)
		escaped := c.Request().URL.RawPath != ""
		for i := range names {
			if names[i] != "*" {
				continue
			}
			names[i] = name
			if i >= len(values) || !escaped {
				continue
			}
			if unescaped, err := url.PathUnescape(values[i]); err == nil {
				values[i] = unescaped
			}
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
		return next(c)
	}
}

func (t *table) operations() []openapi.Operation {
	ops := make([]openapi.Operation, 0, len(t.routes))
	for _, r := range t.routes {
		ops = append(ops, r.endpoint.Operation(r.method, r.template, operationID(r.name, r.template, r.method)))
	}
	return ops
}
