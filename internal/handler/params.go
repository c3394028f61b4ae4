package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
)

// ParamsHandler hosts the query, cookie and header parameter endpoints.
type ParamsHandler struct {
	Handler
}

func NewParamsHandler(s *server.Server) *ParamsHandler {
	return &ParamsHandler{
		Handler: NewHandler(s),
	}
}

func fixtureItems() []any {
	return []any{
		schema.NewObject().Set("item_id", "Foo"),
		schema.NewObject().Set("item_id", "Bar"),
	}
}

type RequiredMaxLengthRequest struct {
	RequiredStr string `query:"required_str" validate:"max=3"`
}

func (h *ParamsHandler) RequiredMaxLength(c echo.Context, req *RequiredMaxLengthRequest) (any, error) {
	return schema.NewObject().
		Set("items", fixtureItems()).
		Set("required_str", req.RequiredStr), nil
}

type OptionalMaxLengthRequest struct {
	OptionalStr *string `query:"optional_str" validate:"max=3"`
}

func (h *ParamsHandler) OptionalMaxLength(c echo.Context, req *OptionalMaxLengthRequest) (any, error) {
	return withOptionalStr(req.OptionalStr), nil
}

type OptionalRegexRequest struct {
	OptionalStr *string `query:"optional_str" validate:"min=3,max=50" pattern:"^fixedoptional_str$"`
}

func (h *ParamsHandler) OptionalRegex(c echo.Context, req *OptionalRegexRequest) (any, error) {
	return withOptionalStr(req.OptionalStr), nil
}

type RegexDefaultRequest struct {
	OptionalStr *string `query:"optional_str" default:"fixedoptional_str" validate:"min=3,max=50" pattern:"^fixedoptional_str$"`
}

func (h *ParamsHandler) RegexDefault(c echo.Context, req *RegexDefaultRequest) (any, error) {
	return withOptionalStr(req.OptionalStr), nil
}

func withOptionalStr(s *string) *schema.Object {
	out := schema.NewObject().Set("items", fixtureItems())
	if nonEmpty(s) {
		out.Set("optional_str", *s)
	}
	return out
}

type OptionalListRequest struct {
	OptionalStr *[]string `query:"optional_str"`
}

func (h *ParamsHandler) OptionalList(c echo.Context, req *OptionalListRequest) (any, error) {
	return schema.NewObject().Set("optional_str", req.OptionalStr), nil
}

type DefaultListRequest struct {
	RequiredStrStr []string `query:"required_str_str" default:"foo,bar"`
}

func (h *ParamsHandler) DefaultListTyping(c echo.Context, req *DefaultListRequest) (any, error) {
	return schema.NewObject().Set("required_str_str", req.RequiredStrStr), nil
}

type NativeListRequest struct {
	RequiredStrStr []string `query:"required_str_str" default:""`
}

func (h *ParamsHandler) RequiredStrListNative(c echo.Context, req *NativeListRequest) (any, error) {
	return schema.NewObject().Set("required_str_str", req.RequiredStrStr), nil
}

type MetadataRequest struct {
	RequiredStr string `query:"required_str" title:"Query string" description:"Query string for the items to search in the database that have a good match"`
}

func (h *ParamsHandler) MetadataAndValidation(c echo.Context, req *MetadataRequest) (any, error) {
	return withRequiredStr(req.RequiredStr), nil
}

type AliasRequest struct {
	RequiredStr string `query:"required_str" alias:"item-query"`
}

func (h *ParamsHandler) Alias(c echo.Context, req *AliasRequest) (any, error) {
	return withRequiredStr(req.RequiredStr), nil
}

type DeprecatedRequest struct {
	RequiredStr string `query:"required_str" deprecated:"true"`
}

func (h *ParamsHandler) Deprecated(c echo.Context, req *DeprecatedRequest) (any, error) {
	return withRequiredStr(req.RequiredStr), nil
}

func withRequiredStr(s string) *schema.Object {
	items := append(fixtureItems(), schema.NewObject().Set("required_str", s))
	return schema.NewObject().Set("items", items)
}

type HiddenRequest struct {
	HiddenQuery *string `query:"hidden_query" hidden:"true"`
}

func (h *ParamsHandler) HiddenInOpenAPI(c echo.Context, req *HiddenRequest) (any, error) {
	if nonEmpty(req.HiddenQuery) {
		return schema.NewObject().Set("hidden_query", *req.HiddenQuery), nil
	}
	return schema.NewObject().Set("hidden_query", "Not found"), nil
}

type CookieRequest struct {
	AdsID *string `cookie:"ads_id"`
}

func (h *ParamsHandler) ReadItemsWithCookies(c echo.Context, req *CookieRequest) (any, error) {
	return schema.NewObject().Set("ads_id", req.AdsID), nil
}

type UserAgentRequest struct {
	UserAgent *string `header:"user_agent" hidden:"true"`
}

// ReadItemsWithHeaders reads User-Agent through the underscore to hyphen
// conversion.
func (h *ParamsHandler) ReadItemsWithHeaders(c echo.Context, req *UserAgentRequest) (any, error) {
	return schema.NewObject().Set("User-Agent", req.UserAgent), nil
}

type StrangeHeaderRequest struct {
	StrangeHeader *string `header:"strange_header" convert:"false"`
}

func (h *ParamsHandler) ReadItemsHeadersWithoutConversion(c echo.Context, req *StrangeHeaderRequest) (any, error) {
	return schema.NewObject().Set("strange_header", req.StrangeHeader), nil
}

type DuplicatedHeadersRequest struct {
	XToken *[]string `header:"x_token"`
}

func (h *ParamsHandler) ReadItemsWithDuplicatedHeaders(c echo.Context, req *DuplicatedHeadersRequest) (any, error) {
	return schema.NewObject().Set("X-Token values", req.XToken), nil
}
