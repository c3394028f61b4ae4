package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/middleware"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
)

type ErrorHandler struct {
	Handler
}

func NewErrorHandler(s *server.Server) *ErrorHandler {
	return &ErrorHandler{
		Handler: NewHandler(s),
	}
}

type UnicornRequest struct {
	Name string `path:"name"`
}

func (h *ErrorHandler) ReadUnicorn(c echo.Context, req *UnicornRequest) (any, error) {
	if req.Name == "yolo" {
		return nil, &errs.UnicornError{Name: req.Name}
	}
	return schema.NewObject().Set("unicorn_name", req.Name), nil
}

// UnicornExceptionHandler renders *errs.UnicornError as 418.
func UnicornExceptionHandler() middleware.ExceptionHandler {
	return middleware.Catch(func(c echo.Context, err *errs.UnicornError) error {
		return c.JSON(http.StatusTeapot, schema.NewObject().Set("message", err.Message()))
	})
}
