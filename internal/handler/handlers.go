// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It binds and validates requests through the binding package,
// calls the appropriate service, and shapes the result into the
// response. Every endpoint is a typed function wrapped by Handle.
package handler

import (
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

// Handlers groups all HTTP handlers so router setup receives one value.
type Handlers struct {
	Items        *ItemHandler
	Params       *ParamsHandler
	Bodies       *BodyHandler
	Users        *UserHandler
	Store        *StoreHandler
	Dependencies *DependencyHandler
	Auth         *AuthHandler
	Uploads      *UploadHandler
	Errors       *ErrorHandler
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Items:        NewItemHandler(s, services.Items),
		Params:       NewParamsHandler(s),
		Bodies:       NewBodyHandler(s),
		Users:        NewUserHandler(s, services.Users),
		Store:        NewStoreHandler(s, services.Items),
		Dependencies: NewDependencyHandler(s, services.Items),
		Auth:         NewAuthHandler(s, services.Auth),
		Uploads:      NewUploadHandler(s),
		Errors:       NewErrorHandler(s),
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
	}
}
