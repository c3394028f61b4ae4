package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/middleware"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

// LoginRequest is the OAuth2 password grant form.
type LoginRequest struct {
	GrantType    *string `form:"grant_type" pattern:"^password$"`
	Username     string  `form:"username"`
	Password     string  `form:"password"`
	Scope        string  `form:"scope" default:""`
	ClientID     *string `form:"client_id"`
	ClientSecret *string `form:"client_secret"`
}

func (h *AuthHandler) Login(c echo.Context, req *LoginRequest) (any, error) {
	return h.auth.Login(c.Request().Context(), req.Username, req.Password)
}

// ReadUsersMe returns the principal set by the auth middleware.
func (h *AuthHandler) ReadUsersMe(c echo.Context, _ *NoParams) (any, error) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return nil, errs.NewUnauthorizedError("Not authenticated")
	}
	return user, nil
}

func (h *AuthHandler) ReadOwnItems(c echo.Context, _ *NoParams) (any, error) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		return nil, errs.NewUnauthorizedError("Not authenticated")
	}
	return []any{
		schema.NewObject().
			Set("item_id", "Foo").
			Set("owner", user.Username),
	}, nil
}
