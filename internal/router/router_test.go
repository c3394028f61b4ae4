package router

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/apitour/internal/config"
	"github.com/deppfellow/apitour/internal/handler"
	"github.com/deppfellow/apitour/internal/lib/jsonutil"
	"github.com/deppfellow/apitour/internal/logger"
	"github.com/deppfellow/apitour/internal/repository"
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := config.Default()
	cfg.Primary.Env = "test"
	require.NoError(t, cfg.Finalize())

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	require.NoError(t, err)

	log := zerolog.Nop()
	srv, err := server.New(cfg, &log, loggerService)
	require.NoError(t, err)

	repos, err := repository.NewRepositories(context.Background(), srv)
	require.NoError(t, err)

	services, err := service.NewServices(srv, repos)
	require.NoError(t, err)

	r, err := NewRouter(srv, handler.NewHandlers(srv, services), services)
	require.NoError(t, err)
	return r
}

func do(t *testing.T, r *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, r *echo.Echo, target string) *httptest.ResponseRecorder {
	return do(t, r, httptest.NewRequest(http.MethodGet, target, nil))
}

func sendJSON(t *testing.T, r *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return do(t, r, req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) any {
	t.Helper()
	var out any
	require.NoError(t, jsonutil.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// detail returns the first validation error of a 422 response.
func detail(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body := decode(t, rec).(map[string]any)
	errors := body["detail"].([]any)
	require.NotEmpty(t, errors)
	return errors[0].(map[string]any)
}

func TestRoot(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Hello World"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := do(t, r, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))
}

func TestUnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))

	rec = do(t, r, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, rec.Body.String())
}

func TestSlashRedirect(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/items?skip=1")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/items/?skip=1", rec.Header().Get(echo.HeaderLocation))
}

func TestReadItemsWindow(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/items/")
	assert.JSONEq(t, `[{"item_name":"Foo"},{"item_name":"Bar"},{"item_name":"Baz"}]`, rec.Body.String())

	rec = get(t, r, "/items/?skip=1&limit=1")
	assert.JSONEq(t, `[{"item_name":"Bar"}]`, rec.Body.String())

	rec = get(t, r, "/items/?skip=10")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestReadItemsNegativeWindow(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/items/?skip=-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[{"item_name":"Baz"}]`, rec.Body.String())

	rec = get(t, r, "/items/?limit=-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[{"item_name":"Foo"},{"item_name":"Bar"}]`, rec.Body.String())

	rec = get(t, r, "/dependencies/items/?skip=-2&limit=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"items":[{"item_name":"Bar"}]}`, rec.Body.String())

	rec = get(t, r, "/store/items/?skip=-10&limit=-5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPathParameters(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/items/5")
	assert.JSONEq(t, `{"item_id":5}`, rec.Body.String())

	e := detail(t, get(t, r, "/items/foo"))
	assert.Equal(t, []any{"path", "item_id"}, e["loc"])
	assert.Equal(t, "value is not a valid integer", e["msg"])
	assert.Equal(t, "type_error.integer", e["type"])

	rec = get(t, r, "/items/optional/bool/foo?optional_str=bar&include_description=yes")
	assert.JSONEq(t, `{"item_id":"foo","optional_str":"bar","description":"This item includes a description"}`, rec.Body.String())

	rec = get(t, r, "/users/me")
	assert.JSONEq(t, `{"user_id":"the current user"}`, rec.Body.String())

	rec = get(t, r, "/users/42/items/abc")
	assert.JSONEq(t, `{"item_id":"abc","owner_id":42}`, rec.Body.String())
}

func TestPathValidation(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/items_path_validation/3?required_str=x")
	assert.JSONEq(t, `{"item_id":3,"required_str":"x"}`, rec.Body.String())

	e := detail(t, get(t, r, "/items_path_validation/10?required_str=x"))
	assert.Equal(t, "ensure this value is less than 10", e["msg"])
	assert.Equal(t, "value_error.number.not_lt", e["type"])
}

func TestModelEnum(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/models/alexnet")
	assert.JSONEq(t, `{"model_name":"alexnet","message":"Deep Learning FTW!"}`, rec.Body.String())

	rec = get(t, r, "/models/lenet")
	assert.JSONEq(t, `{"model_name":"lenet","message":"LeCNN all the images"}`, rec.Body.String())

	rec = get(t, r, "/models/resnet")
	assert.JSONEq(t, `{"model_name":"resnet","message":"Have some residuals"}`, rec.Body.String())

	e := detail(t, get(t, r, "/models/vgg"))
	assert.Equal(t, "type_error.enum", e["type"])
}

func TestFilePathCapturesSlashes(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/files//home/johndoe/myfile.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"file_path":"/home/johndoe/myfile.txt"}`, rec.Body.String())

	rec = get(t, r, "/files/home/johndoe/myfile.txt")
	assert.JSONEq(t, `{"file_path":"home/johndoe/myfile.txt"}`, rec.Body.String())
}

func TestFilePathIsUnescaped(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/files/a%2Fb%20c")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"file_path":"a/b c"}`, rec.Body.String())

	rec = get(t, r, "/files/a%20c")
	assert.JSONEq(t, `{"file_path":"a c"}`, rec.Body.String())

	rec = get(t, r, "/files/100%25")
	assert.JSONEq(t, `{"file_path":"100%"}`, rec.Body.String())
}

func TestQueryValidation(t *testing.T) {
	r := newTestRouter(t)

	e := detail(t, get(t, r, "/items_params/required_max_length"))
	assert.Equal(t, []any{"query", "required_str"}, e["loc"])
	assert.Equal(t, "field required", e["msg"])
	assert.Equal(t, "value_error.missing", e["type"])

	e = detail(t, get(t, r, "/items_params/required_max_length?required_str=abcd"))
	assert.Equal(t, "ensure this value has at most 3 characters", e["msg"])
	assert.Equal(t, "value_error.any_str.max_length", e["type"])
	assert.EqualValues(t, 3, e["ctx"].(map[string]any)["limit_value"])

	rec := get(t, r, "/items_params/required_max_length?required_str=abc")
	assert.JSONEq(t, `{"items":[{"item_id":"Foo"},{"item_id":"Bar"}],"required_str":"abc"}`, rec.Body.String())

	e = detail(t, get(t, r, "/items_params_optional_regex?optional_str=nope"))
	assert.Equal(t, "value_error.str.regex", e["type"])

	rec = get(t, r, "/items_params_regex_default")
	assert.JSONEq(t, `{"items":[{"item_id":"Foo"},{"item_id":"Bar"}],"optional_str":"fixedoptional_str"}`, rec.Body.String())
}

func TestQueryLists(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/items_params/optional_list")
	assert.JSONEq(t, `{"optional_str":null}`, rec.Body.String())

	rec = get(t, r, "/items_params/optional_list?optional_str=a&optional_str=b")
	assert.JSONEq(t, `{"optional_str":["a","b"]}`, rec.Body.String())

	rec = get(t, r, "/items_params/default_list_typing")
	assert.JSONEq(t, `{"required_str_str":["foo","bar"]}`, rec.Body.String())

	rec = get(t, r, "/items_params/required_str_list_native")
	assert.JSONEq(t, `{"required_str_str":[]}`, rec.Body.String())
}

func TestQueryAliasAndHidden(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/items_params_alias?item-query=x")
	assert.JSONEq(t, `{"items":[{"item_id":"Foo"},{"item_id":"Bar"},{"required_str":"x"}]}`, rec.Body.String())

	e := detail(t, get(t, r, "/items_params_alias?required_str=x"))
	assert.Equal(t, []any{"query", "item-query"}, e["loc"])

	rec = get(t, r, "/items_params_hidden_in_openapi")
	assert.JSONEq(t, `{"hidden_query":"Not found"}`, rec.Body.String())

	rec = get(t, r, "/items_params_hidden_in_openapi?hidden_query=here")
	assert.JSONEq(t, `{"hidden_query":"here"}`, rec.Body.String())
}

func TestHeadersAndCookies(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/items_with_headers/", nil)
	req.Header.Set("User-Agent", "tester")
	assert.JSONEq(t, `{"User-Agent":"tester"}`, do(t, r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/items_with_duplicated_headers/", nil)
	req.Header.Add("X-Token", "foo")
	req.Header.Add("X-Token", "bar")
	assert.JSONEq(t, `{"X-Token values":["foo","bar"]}`, do(t, r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/items_with_cookies/", nil)
	req.AddCookie(&http.Cookie{Name: "ads_id", Value: "xyz"})
	assert.JSONEq(t, `{"ads_id":"xyz"}`, do(t, r, req).Body.String())

	assert.JSONEq(t, `{"ads_id":null}`, get(t, r, "/items_with_cookies/").Body.String())
}

func TestCreateItem(t *testing.T) {
	r := newTestRouter(t)

	rec := sendJSON(t, r, http.MethodPost, "/items/", `{"name":"Foo","price":"35.4"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Foo","description":null,"price":35.4,"tax":null}`, rec.Body.String())

	rec = sendJSON(t, r, http.MethodPost, "/items/derived_attrs", `{"name":"Foo","price":10,"tax":2.5}`)
	assert.JSONEq(t, `{"name":"Foo","description":null,"price":10,"tax":2.5,"price_with_tax":12.5}`, rec.Body.String())
}

func TestBodyValidationCollectsEveryError(t *testing.T) {
	r := newTestRouter(t)

	rec := sendJSON(t, r, http.MethodPost, "/items/", `{"price":"abc"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode(t, rec).(map[string]any)
	errors := body["detail"].([]any)
	require.Len(t, errors, 2)
	assert.Equal(t, []any{"body", "name"}, errors[0].(map[string]any)["loc"])
	assert.Equal(t, []any{"body", "price"}, errors[1].(map[string]any)["loc"])
	assert.Equal(t, map[string]any{"price": "abc"}, body["body"])
}

func TestValidationBodyEchoKeepsKeyOrder(t *testing.T) {
	r := newTestRouter(t)

	rec := sendJSON(t, r, http.MethodPost, "/items/", `{"price":"abc","name":"o","tags":["a"]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"body":{"price":"abc","name":"o","tags":["a"]}`)
}

func TestInvalidJSONBody(t *testing.T) {
	r := newTestRouter(t)

	e := detail(t, sendJSON(t, r, http.MethodPost, "/items/", `{"name":`))
	assert.Equal(t, "value_error.jsondecode", e["type"])
}

func TestStrictItemForbidsExtra(t *testing.T) {
	r := newTestRouter(t)

	e := detail(t, sendJSON(t, r, http.MethodPost, "/items/strict", `{"name":"Foo","price":1,"color":"red"}`))
	assert.Equal(t, []any{"body", "color"}, e["loc"])
	assert.Equal(t, "value_error.extra", e["type"])
}

func TestUpdateItemBodies(t *testing.T) {
	r := newTestRouter(t)

	rec := sendJSON(t, r, http.MethodPut, "/items/5", `{"name":"Foo","price":1}`)
	assert.JSONEq(t, `{"item_id":5,"name":"Foo","description":null,"price":1,"tax":null}`, rec.Body.String())

	rec = sendJSON(t, r, http.MethodPut, "/items_multiple_models/1", `{"item":{"name":"Foo","price":1},"user":{"username":"dave"}}`)
	assert.JSONEq(t, `{"item_id":1,"item":{"name":"Foo","description":null,"price":1,"tax":null},"user":{"username":"dave","full_name":null}}`, rec.Body.String())

	rec = sendJSON(t, r, http.MethodPut, "/items_embedded/1", `{"embedded_item":{"name":"Foo","price":1}}`)
	assert.JSONEq(t, `{"item_id":1,"embedded_item":{"name":"Foo","description":null,"price":1,"tax":null}}`, rec.Body.String())

	e := detail(t, sendJSON(t, r, http.MethodPut, "/items_embedded/1", `{"name":"Foo","price":1}`))
	assert.Equal(t, []any{"body", "embedded_item"}, e["loc"])

	e = detail(t, sendJSON(t, r, http.MethodPut, "/items_extra_body_param/1", `{"item":{"name":"Foo","price":1},"user":{"username":"dave"}}`))
	assert.Equal(t, []any{"body", "extra_required_int_param"}, e["loc"])

	e = detail(t, sendJSON(t, r, http.MethodPut, "/items_with_fields/1", `{"item_with_fields":{"name":"Foo","price":0}}`))
	assert.Equal(t, []any{"body", "item_with_fields", "price"}, e["loc"])
	assert.Equal(t, "value_error.number.not_gt", e["type"])
}

func TestNestedModels(t *testing.T) {
	r := newTestRouter(t)

	e := detail(t, sendJSON(t, r, http.MethodPost, "/images/multiple/", `[{"url":"not a url","name":"a"}]`))
	assert.Equal(t, []any{"body", float64(0), "url"}, e["loc"])

	rec := sendJSON(t, r, http.MethodPost, "/index-weights/", `{"1":2.5,"b":"3"}`)
	assert.JSONEq(t, `{"1":2.5,"b":3}`, rec.Body.String())
}

func TestExtraDatatypes(t *testing.T) {
	r := newTestRouter(t)

	rec := sendJSON(t, r, http.MethodPut, "/items_extra_datatypes/3fa85f64-5717-4562-b3fc-2c963f66afa6", `{
		"start_datetime": "2008-09-15T15:53:00+05:00",
		"end_datetime": "2008-09-15T18:00:00+05:00",
		"repeat_at": "14:23:55",
		"process_after": 3600
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"item_id": "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		"start_datetime": "2008-09-15T15:53:00+05:00",
		"end_datetime": "2008-09-15T18:00:00+05:00",
		"repeat_at": "14:23:55",
		"process_after": "PT1H",
		"start_process": "2008-09-15T16:53:00+05:00",
		"duration": "PT1H7M"
	}`, rec.Body.String())

	e := detail(t, sendJSON(t, r, http.MethodPut, "/items_extra_datatypes/not-a-uuid", `{}`))
	assert.Equal(t, "type_error.uuid", e["type"])

	rec = sendJSON(t, r, http.MethodPut, "/items_extra_datatypes/3fa85f64-5717-4562-b3fc-2c963f66afa6", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserHidesPassword(t *testing.T) {
	r := newTestRouter(t)

	rec := sendJSON(t, r, http.MethodPost, "/user/", `{"username":"dave","password":"secret","email":"dave@example.com"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"username":"dave","email":"dave@example.com","full_name":null}`, rec.Body.String())

	e := detail(t, sendJSON(t, r, http.MethodPost, "/user/", `{"username":"dave","password":"secret","email":"nope"}`))
	assert.Equal(t, []any{"body", "email"}, e["loc"])
}

func TestStoreResponseShaping(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/store/items/foo")
	assert.JSONEq(t, `{"name":"Foo","price":50.2}`, rec.Body.String())

	rec = get(t, r, "/store/items/baz")
	assert.JSONEq(t, `{"name":"Baz","description":null,"price":50.2,"tax":10.5,"tags":[]}`, rec.Body.String())

	rec = get(t, r, "/store/items/bar/name")
	assert.JSONEq(t, `{"name":"Bar","description":"The bartenders"}`, rec.Body.String())

	rec = get(t, r, "/store/items/bar/public")
	assert.JSONEq(t, `{"name":"Bar","description":"The bartenders","price":62,"tags":[]}`, rec.Body.String())

	rec = get(t, r, "/store/items/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Item not found"}`, rec.Body.String())
	assert.Equal(t, "There goes my error", rec.Header().Get("X-Error"))
}

func TestStoreExcludeNone(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/store/items/baz/compact")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"name":"Baz","price":50.2,"tax":10.5,"tags":[]}`, rec.Body.String())

	rec = get(t, r, "/store/items/bar/compact")
	assert.JSONEq(t, `{"name":"Bar","description":"The bartenders","price":62,"tax":20.2,"tags":[]}`, rec.Body.String())

	rec = get(t, r, "/store/items/nope/compact")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreListAndPatch(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/store/items/?skip=1&limit=1")
	assert.JSONEq(t, `[{"name":"Bar","description":"The bartenders","price":62,"tax":20.2,"tags":[]}]`, rec.Body.String())

	rec = sendJSON(t, r, http.MethodPatch, "/store/items/bar", `{"price":99}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"name":"Bar","description":"The bartenders","price":99,"tax":20.2,"tags":[]}`, rec.Body.String())

	rec = get(t, r, "/store/items/bar")
	assert.JSONEq(t, `{"name":"Bar","description":"The bartenders","price":99,"tax":20.2,"tags":[]}`, rec.Body.String())

	rec = sendJSON(t, r, http.MethodPatch, "/store/items/nope", `{"price":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVehicleUnion(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/vehicles/item1")
	assert.JSONEq(t, `{"description":"All my friends drive a low rider","type":"car"}`, rec.Body.String())

	rec = get(t, r, "/vehicles/item2")
	assert.JSONEq(t, `{"description":"Music is my aeroplane, it's my aeroplane","type":"plane","size":5}`, rec.Body.String())

	assert.JSONEq(t, `{"foo":2.3,"bar":3.4}`, get(t, r, "/keyword-weights/").Body.String())
}

func TestDependencies(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/dependencies/items/?q=x&limit=2")
	assert.JSONEq(t, `{"q":"x","items":[{"item_name":"Foo"},{"item_name":"Bar"}]}`, rec.Body.String())

	rec = get(t, r, "/protected/items/")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, decode(t, rec).(map[string]any)["detail"], 2)

	req := httptest.NewRequest(http.MethodGet, "/protected/items/", nil)
	req.Header.Set("X-Token", "wrong")
	req.Header.Set("X-Key", "fake-super-secret-key")
	rec = do(t, r, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"X-Token header invalid"}`, rec.Body.String())

	req.Header.Set("X-Token", "fake-super-secret-token")
	rec = do(t, r, req)
	assert.JSONEq(t, `[{"item":"Foo"},{"item":"Bar"}]`, rec.Body.String())
}

func login(t *testing.T, r *echo.Echo, username, password string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return do(t, r, req)
}

func withBearer(target, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := login(t, r, "johndoe", "secret")
	assert.JSONEq(t, `{"access_token":"johndoe","token_type":"bearer"}`, rec.Body.String())

	rec = login(t, r, "johndoe", "wrong")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Incorrect username or password"}`, rec.Body.String())

	rec = get(t, r, "/secure/users/me")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Not authenticated"}`, rec.Body.String())
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	rec = do(t, r, withBearer("/secure/users/me", "johndoe"))
	assert.JSONEq(t, `{"username":"johndoe","email":"johndoe@example.com","full_name":"John Doe","disabled":false}`, rec.Body.String())

	rec = do(t, r, withBearer("/secure/items/", "johndoe"))
	assert.JSONEq(t, `[{"item_id":"Foo","owner":"johndoe"}]`, rec.Body.String())

	rec = do(t, r, withBearer("/secure/users/me", "alice"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail":"Inactive user"}`, rec.Body.String())

	rec = do(t, r, withBearer("/secure/users/me", "mallory"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"detail":"Invalid authentication credentials"}`, rec.Body.String())
}

func multipartRequest(t *testing.T, target string, files map[string][]string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, names := range files {
		for _, name := range names {
			part, err := w.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = part.Write([]byte("hello"))
			require.NoError(t, err)
		}
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploads(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, multipartRequest(t, "/files/", map[string][]string{"file": {"a.txt"}}, nil))
	assert.JSONEq(t, `{"file_size":5}`, rec.Body.String())

	rec = do(t, r, multipartRequest(t, "/uploadfile/", map[string][]string{"file": {"a.txt"}}, nil))
	assert.JSONEq(t, `{"filename":"a.txt","content_type":"application/octet-stream"}`, rec.Body.String())

	rec = do(t, r, multipartRequest(t, "/uploadfiles/", map[string][]string{"files": {"a.txt", "b.txt"}}, nil))
	assert.JSONEq(t, `{"filenames":["a.txt","b.txt"]}`, rec.Body.String())

	rec = do(t, r, multipartRequest(t, "/files-form/", map[string][]string{"file": {"a.txt"}, "fileb": {"b.txt"}}, map[string]string{"token": "t"}))
	assert.JSONEq(t, `{"file_size":5,"token":"t","fileb_content_type":"application/octet-stream"}`, rec.Body.String())

	e := detail(t, do(t, r, multipartRequest(t, "/uploadfile/", nil, map[string]string{"other": "x"})))
	assert.Equal(t, []any{"body", "file"}, e["loc"])
}

func TestUnicornHandler(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/unicorns/yolo")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"message":"Oops! yolo did something. There goes a rainbow..."}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))

	rec = get(t, r, "/unicorns/sparkle")
	assert.JSONEq(t, `{"unicorn_name":"sparkle"}`, rec.Body.String())
}

func TestSystemRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec).(map[string]any)["status"])

	rec = get(t, r, "/docs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swagger-ui")

	get(t, r, "/")
	rec = get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "apitour_http_requests_total")
}

func TestOpenAPIDocument(t *testing.T) {
	r := newTestRouter(t)

	rec := get(t, r, "/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decode(t, rec).(map[string]any)
	assert.Equal(t, "3.0.3", doc["openapi"])

	paths := doc["paths"].(map[string]any)
	assert.Contains(t, paths, "/files/{file_path}")
	assert.NotContains(t, paths, "/status")

	op := paths["/items/{item_id}"].(map[string]any)["get"].(map[string]any)
	assert.Equal(t, "read_item_items__item_id__get", op["operationId"])
	assert.Equal(t, "Read Item", op["summary"])

	hidden := paths["/items_params_hidden_in_openapi"].(map[string]any)["get"].(map[string]any)
	assert.Empty(t, hidden["parameters"])

	alias := paths["/items_params_alias"].(map[string]any)["get"].(map[string]any)
	param := alias["parameters"].([]any)[0].(map[string]any)
	assert.Equal(t, "item-query", param["name"])
	assert.Equal(t, true, param["required"])

	secured := paths["/secure/users/me"].(map[string]any)["get"].(map[string]any)
	assert.NotEmpty(t, secured["security"])
}
