package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

type UserHandler struct {
	Handler
	users *service.UserService
}

func NewUserHandler(s *server.Server, users *service.UserService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

func (h *UserHandler) ReadUserMe(c echo.Context, _ *NoParams) (any, error) {
	return schema.NewObject().Set("user_id", "the current user"), nil
}

type ReadUserRequest struct {
	UserID string `path:"user_id"`
}

func (h *UserHandler) ReadUser(c echo.Context, req *ReadUserRequest) (any, error) {
	return schema.NewObject().Set("user_id", req.UserID), nil
}

type ReadUserItemRequest struct {
	UserID             int     `path:"user_id"`
	ItemID             string  `path:"item_id"`
	OptionalStr        *string `query:"optional_str"`
	IncludeDescription bool    `query:"include_description" default:"false"`
}

func (h *UserHandler) ReadUserItem(c echo.Context, req *ReadUserItemRequest) (any, error) {
	out := schema.NewObject().
		Set("item_id", req.ItemID).
		Set("owner_id", req.UserID)
	if nonEmpty(req.OptionalStr) {
		out.Set("optional_str", *req.OptionalStr)
	}
	if req.IncludeDescription {
		out.Set("description", "This item includes a description")
	}
	return out, nil
}

type CreateUserRequest struct {
	User model.UserIn `body:"user"`
}

// CreateUser returns the stored user; the UserOut response model drops the
// password and its hash.
func (h *UserHandler) CreateUser(c echo.Context, req *CreateUserRequest) (any, error) {
	return h.users.Create(c.Request().Context(), req.User)
}
