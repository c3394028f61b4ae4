package router

import (
	"net/http"

	"github.com/deppfellow/apitour/internal/handler"
	"github.com/deppfellow/apitour/internal/middleware"
	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/schema"
)

func registerAPIRoutes(t *table, h *handler.Handlers, m *middleware.Middlewares) {
	registerItemRoutes(t, h)
	registerParamRoutes(t, h)
	registerBodyRoutes(t, h)
	registerUserRoutes(t, h)
	registerStoreRoutes(t, h)
	registerDependencyRoutes(t, h)
	registerAuthRoutes(t, h, m)
	registerUploadRoutes(t, h)
	registerErrorRoutes(t, h)
}

func registerItemRoutes(t *table, h *handler.Handlers) {
	items := h.Items
	tags := handler.Tags("items")

	t.GET("/", "root", handler.Handle(items.Handler, items.Root))
	t.POST("/items/", "create_item", handler.Handle(items.Handler, items.CreateItem, tags))
	t.POST("/items/derived_attrs", "create_item_derived_attrs", handler.Handle(items.Handler, items.CreateItemDerivedAttrs, tags))
	t.POST("/items/strict", "create_strict_item", handler.Handle(items.Handler, items.CreateStrictItem, tags))
	t.GET("/items/", "read_items", handler.Handle(items.Handler, items.ReadItems, tags))
	t.GET("/items/{item_id}", "read_item", handler.Handle(items.Handler, items.ReadItem, tags))
	t.GET("/items/optional/{item_id}", "read_item_optional", handler.Handle(items.Handler, items.ReadItemOptional, tags))
	t.GET("/items/optional/bool/{item_id}", "read_item_optional_and_bool", handler.Handle(items.Handler, items.ReadItemOptionalAndBool, tags))
	t.GET("/items_path_metadata/{item_id}", "read_items_path_metadata", handler.Handle(items.Handler, items.ReadItemPathMetadata, tags))
	t.GET("/items_path_order/{item_id}", "read_items_path_order", handler.Handle(items.Handler, items.ReadItemPathOrder, tags))
	t.GET("/items_path_validation/{item_id}", "items_path_validation", handler.Handle(items.Handler, items.ReadItemPathValidation, tags))
	t.GET("/models/{model_name}", "get_model", handler.Handle(items.Handler, items.GetModel, handler.Tags("models")))
	t.GET("/files/{file_path:path}", "read_file", handler.Handle(items.Handler, items.ReadFile, handler.Tags("files")))
}

func registerParamRoutes(t *table, h *handler.Handlers) {
	params := h.Params
	query := handler.Tags("query")
	headers := handler.Tags("headers")

	t.GET("/items_params/required_max_length", "read_items_params_required_max_length", handler.Handle(params.Handler, params.RequiredMaxLength, query))
	t.GET("/items_params/optional_max_length", "read_items_params_optional_max_length", handler.Handle(params.Handler, params.OptionalMaxLength, query))
	t.GET("/items_params_optional_regex", "read_items_params_optional_regex", handler.Handle(params.Handler, params.OptionalRegex, query))
	t.GET("/items_params_regex_default", "read_items_params_regex_default", handler.Handle(params.Handler, params.RegexDefault, query))
	t.GET("/items_params/optional_list", "read_items_params_optional_list", handler.Handle(params.Handler, params.OptionalList, query))
	t.GET("/items_params/default_list_typing", "read_items_params_default_list_typing", handler.Handle(params.Handler, params.DefaultListTyping, query))
	t.GET("/items_params/required_str_list_native", "read_items_params_required_str_list_native", handler.Handle(params.Handler, params.RequiredStrListNative, query))
	t.GET("/items_params_metadata_and_validation", "read_items_params_metadata_and_validation", handler.Handle(params.Handler, params.MetadataAndValidation, query))
	t.GET("/items_params_alias", "read_items_params_alias", handler.Handle(params.Handler, params.Alias, query))
	t.GET("/items_params_deprecated", "read_items_params_deprecated", handler.Handle(params.Handler, params.Deprecated, query))
	t.GET("/items_params_hidden_in_openapi", "read_items_params_hidden_in_openapi", handler.Handle(params.Handler, params.HiddenInOpenAPI, query))

	t.GET("/items_with_cookies/", "read_items_with_cookies", handler.Handle(params.Handler, params.ReadItemsWithCookies, handler.Tags("cookies")))
	t.GET("/items_with_headers/", "read_items_with_headers", handler.Handle(params.Handler, params.ReadItemsWithHeaders, headers))
	t.GET("/items_headers_without_conversion/", "read_items_headers_without_conversion", handler.Handle(params.Handler, params.ReadItemsHeadersWithoutConversion, headers))
	t.GET("/items_with_duplicated_headers/", "read_items_with_duplicated_headers", handler.Handle(params.Handler, params.ReadItemsWithDuplicatedHeaders, headers))
}

func registerBodyRoutes(t *table, h *handler.Handlers) {
	bodies := h.Bodies
	tags := handler.Tags("bodies")

	t.PUT("/items/{item_id}", "update_item", handler.Handle(bodies.Handler, bodies.UpdateItem, tags))
	t.PUT("/items_multiple_models/{item_id}", "update_item_multiple_models", handler.Handle(bodies.Handler, bodies.UpdateItemMultipleModels, tags))
	t.PUT("/items_extra_body_param/{item_id}", "update_item_extra_body_param", handler.Handle(bodies.Handler, bodies.UpdateItemExtraBodyParam, tags))
	t.PUT("/items_embedded/{item_id}", "update_item_embedded", handler.Handle(bodies.Handler, bodies.UpdateItemEmbedded, tags))
	t.PUT("/items_with_fields/{item_id}", "update_item_with_fields", handler.Handle(bodies.Handler, bodies.UpdateItemWithFields, tags))
	t.PUT("/items_with_nested_model/{item_id}", "update_item_with_nested_model", handler.Handle(bodies.Handler, bodies.UpdateItemWithNestedModel, tags))
	t.PUT("/items_with_example/{item_id}", "update_item_with_example", handler.Handle(bodies.Handler, bodies.UpdateItemWithExample, tags))
	t.PUT("/items_with_multiple_examples/{item_id}", "update_item_with_multiple_examples",
		handler.Handle(bodies.Handler, bodies.UpdateItemWithMultipleExamples, tags, handler.Examples(handler.ItemExamples)))
	t.PUT("/items_extra_datatypes/{item_id}", "read_items_extra_datatypes", handler.Handle(bodies.Handler, bodies.ReadItemsExtraDatatypes, tags))

	t.POST("/offers/", "create_offer", handler.Handle(bodies.Handler, bodies.CreateOffer, tags))
	t.POST("/images/multiple/", "create_multiple_images", handler.Handle(bodies.Handler, bodies.CreateMultipleImages, tags))
	t.POST("/index-weights/", "create_index_weights", handler.Handle(bodies.Handler, bodies.CreateIndexWeights, tags))
}

func registerUserRoutes(t *table, h *handler.Handlers) {
	users := h.Users
	tags := handler.Tags("users")

	t.GET("/users/me", "read_user_me", handler.Handle(users.Handler, users.ReadUserMe, tags))
	t.GET("/users/{user_id}", "read_user", handler.Handle(users.Handler, users.ReadUser, tags))
	t.GET("/users/{user_id}/items/{item_id}", "read_user_item", handler.Handle(users.Handler, users.ReadUserItem, tags))
	t.POST("/user/", "create_user", handler.Handle(users.Handler, users.CreateUser, tags,
		handler.Status(http.StatusCreated),
		handler.ResponseModel(schema.Model[model.UserOut]()),
	))
}

func registerStoreRoutes(t *table, h *handler.Handlers) {
	store := h.Store
	tags := handler.Tags("store")
	storedItem := handler.ResponseModel(schema.Model[model.StoredItem]())

	t.GET("/store/items/", "list_store_items", handler.Handle(store.Handler, store.ListItems, tags,
		handler.ResponseModel(schema.Model[[]model.StoredItem]()),
	))
	t.GET("/store/items/{item_id}", "read_store_item", handler.Handle(store.Handler, store.GetItem, tags,
		storedItem, handler.ExcludeUnset(),
	))
	t.GET("/store/items/{item_id}/name", "read_store_item_name", handler.Handle(store.Handler, store.GetItem, tags,
		storedItem, handler.Include("name", "description"),
	))
	t.GET("/store/items/{item_id}/public", "read_store_item_public_data", handler.Handle(store.Handler, store.GetItem, tags,
		storedItem, handler.Exclude("tax"),
	))
	t.GET("/store/items/{item_id}/compact", "read_store_item_compact", handler.Handle(store.Handler, store.GetItem, tags,
		storedItem, handler.ExcludeNone(),
	))
	t.PUT("/store/items/{item_id}", "replace_store_item", handler.Handle(store.Handler, store.PutItem, tags, storedItem))
	t.PATCH("/store/items/{item_id}", "patch_store_item", handler.Handle(store.Handler, store.PatchItem, tags, storedItem))

	t.GET("/vehicles/{item_id}", "read_vehicle", handler.Handle(store.Handler, store.ReadVehicle, tags,
		handler.ResponseModel(schema.Union(schema.Model[model.PlaneItem](), schema.Model[model.CarItem]())),
	))
	t.GET("/keyword-weights/", "read_keyword_weights", handler.Handle(store.Handler, store.KeywordWeights, tags,
		handler.ResponseModel(schema.Model[map[string]float64]()),
	))
}

func registerDependencyRoutes(t *table, h *handler.Handlers) {
	deps := h.Dependencies
	tags := handler.Tags("dependencies")

	t.GET("/dependencies/items/", "read_dependency_items", handler.Handle(deps.Handler, deps.ReadItems, tags))
	t.GET("/protected/items/", "read_protected_items", handler.Handle(deps.Handler, deps.ReadProtectedItems, tags))
}

func registerAuthRoutes(t *table, h *handler.Handlers, m *middleware.Middlewares) {
	auth := h.Auth
	tags := handler.Tags("auth")

	t.POST("/token", "login", handler.Handle(auth.Handler, auth.Login, tags,
		handler.ResponseModel(schema.Model[model.Token]()),
	))
	t.GET("/secure/users/me", "read_users_me", handler.Handle(auth.Handler, auth.ReadUsersMe, tags,
		handler.Secured(),
		handler.ResponseModel(schema.Model[model.AccountUser]()),
	), m.Auth.RequireAuth)
	t.GET("/secure/items/", "read_own_items", handler.Handle(auth.Handler, auth.ReadOwnItems, tags,
		handler.Secured(),
	), m.Auth.RequireAuth)
}

func registerUploadRoutes(t *table, h *handler.Handlers) {
	uploads := h.Uploads
	tags := handler.Tags("files")

	t.POST("/files/", "create_file", handler.Handle(uploads.Handler, uploads.CreateFile, tags))
	t.POST("/uploadfile/", "create_upload_file", handler.Handle(uploads.Handler, uploads.CreateUploadFile, tags))
	t.POST("/uploadfiles/", "create_upload_files", handler.Handle(uploads.Handler, uploads.CreateUploadFiles, tags))
	t.POST("/files-form/", "create_files_form", handler.Handle(uploads.Handler, uploads.CreateFilesForm, tags))
}

func registerErrorRoutes(t *table, h *handler.Handlers) {
	unicorns := h.Errors

	t.GET("/unicorns/{name}", "read_unicorn", handler.Handle(unicorns.Handler, unicorns.ReadUnicorn, handler.Tags("errors")))
}
