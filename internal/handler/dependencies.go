package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

const (
	superSecretToken = "fake-super-secret-token"
	superSecretKey   = "fake-super-secret-key"
)

type DependencyHandler struct {
	Handler
	items *service.ItemService
}

func NewDependencyHandler(s *server.Server, items *service.ItemService) *DependencyHandler {
	return &DependencyHandler{
		Handler: NewHandler(s),
		items:   items,
	}
}

type DependencyItemsRequest struct {
	model.CommonQueryParams
}

func (h *DependencyHandler) ReadItems(c echo.Context, req *DependencyItemsRequest) (any, error) {
	out := schema.NewObject()
	if nonEmpty(req.Q) {
		out.Set("q", *req.Q)
	}
	items, err := h.items.Catalog(c.Request().Context(), req.Skip, req.Limit)
	if err != nil {
		return nil, err
	}
	return out.Set("items", items), nil
}

// VerifyToken requires the X-Token header to carry the shared token.
type VerifyToken struct {
	XToken string `header:"x_token"`
}

func (v *VerifyToken) Resolve(c echo.Context) error {
	if v.XToken != superSecretToken {
		return errs.NewBadRequestError("X-Token header invalid")
	}
	return nil
}

// VerifyKey requires the X-Key header to carry the shared key.
type VerifyKey struct {
	XKey string `header:"x_key"`
}

func (v *VerifyKey) Resolve(c echo.Context) error {
	if v.XKey != superSecretKey {
		return errs.NewBadRequestError("X-Key header invalid")
	}
	return nil
}

type ProtectedItemsRequest struct {
	VerifyToken
	VerifyKey
}

func (h *DependencyHandler) ReadProtectedItems(c echo.Context, _ *ProtectedItemsRequest) (any, error) {
	return []any{
		schema.NewObject().Set("item", "Foo"),
		schema.NewObject().Set("item", "Bar"),
	}, nil
}
