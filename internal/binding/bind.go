package binding

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/lib/jsonutil"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/validation"
)

const maxMultipartMemory = 32 << 20

// request caches what Bind reads from the request so each source is parsed
// once.
type request struct {
	c echo.Context

	bodyRead bool
	bodyRaw  []byte
	body     any
	bodyErr  error

	formRead bool
	form     *multipart.Form
	values   url.Values
}

// Bind fills dst (a pointer to the plan's struct type) from c. Schema
// failures are returned together as *errs.RequestValidationError; errors from
// Resolve hooks and I/O are returned as they are.
func (p *Plan) Bind(c echo.Context, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Type() != p.typ {
		return errors.Errorf("binding: Bind wants *%s, got %T", p.typ, dst)
	}
	target := rv.Elem()

	req := &request{c: c}
	var issues []errs.FieldError

	for _, spec := range p.params {
		v, fieldIssues, err := p.bindOne(req, spec)
		if err != nil {
			return err
		}
		if len(fieldIssues) > 0 {
			issues = append(issues, fieldIssues...)
			continue
		}
		if v.IsValid() {
			target.FieldByIndex(spec.index).Set(v)
		}
	}

	if len(issues) > 0 {
		return &errs.RequestValidationError{Errors: issues, Body: req.echo(len(p.FormParams()) > 0)}
	}

	for _, index := range p.resolvers {
		resolver := target.FieldByIndex(index).Addr().Interface().(Resolver)
		if err := resolver.Resolve(c); err != nil {
			return err
		}
	}

	return nil
}

func (p *Plan) bindOne(req *request, spec ParameterSpec) (reflect.Value, []errs.FieldError, error) {
	loc := errs.Loc{spec.Source.location(), spec.Alias}

	var raw any
	present := false

	switch spec.Source {
	case SourcePath:
		raw, present = req.c.Param(spec.Alias), true

	case SourceQuery:
		raw, present = pick(spec, req.c.QueryParams()[spec.Alias])

	case SourceHeader:
		raw, present = pick(spec, req.c.Request().Header.Values(spec.Alias))

	case SourceCookie:
		if cookie, err := req.c.Cookie(spec.Alias); err == nil {
			raw, present = cookie.Value, true
		}

	case SourceForm:
		values, err := req.formValues()
		if err != nil {
			return reflect.Value{}, nil, err
		}
		raw, present = pick(spec, values[spec.Alias])

	case SourceFile:
		return req.bindFile(spec, loc)

	case SourceBody:
		return p.bindBody(req, spec)
	}

	return finish(spec, raw, present, loc)
}

// finish applies defaults, coercion and rule checks to a located value.
func finish(spec ParameterSpec, raw any, present bool, loc errs.Loc) (reflect.Value, []errs.FieldError, error) {
	if !present {
		switch {
		case spec.Default != nil:
			v, issues := schema.CoerceDefault(spec.Type, *spec.Default, loc)
			return v, issues, nil
		case spec.Required:
			return reflect.Value{}, []errs.FieldError{validation.Missing(loc)}, nil
		}
		return reflect.Zero(spec.Type), nil, nil
	}

	v, issues := schema.Coerce(spec.Type, raw, loc)
	if len(issues) > 0 {
		return reflect.Value{}, issues, nil
	}

	checkIssues, err := schema.Check(v, spec.Rules, spec.Pattern, loc)
	if err != nil {
		return reflect.Value{}, nil, err
	}
	if len(checkIssues) > 0 {
		return reflect.Value{}, checkIssues, nil
	}

	return v, nil, nil
}

// pick returns every occurrence for list parameters and the last one
// otherwise.
func pick(spec ParameterSpec, values []string) (any, bool) {
	if len(values) == 0 {
		return nil, false
	}
	if spec.IsList() {
		return values, true
	}
	return values[len(values)-1], true
}

func (p *Plan) bindBody(req *request, spec ParameterSpec) (reflect.Value, []errs.FieldError, error) {
	body, err := req.jsonBody()
	if err != nil {
		return reflect.Value{}, nil, err
	}

	if req.bodyErr != nil {
		// Reported once, on the first body parameter.
		if !sameIndex(spec.index, p.BodyParams()[0].index) {
			return reflect.Value{}, nil, nil
		}
		return reflect.Value{}, []errs.FieldError{validation.JSONDecode(0, req.bodyErr)}, nil
	}

	if p.WholeBody() {
		return finish(spec, body, body != nil, errs.Loc{"body"})
	}

	loc := errs.Loc{"body", spec.Alias}
	obj, ok := body.(map[string]any)
	if !ok {
		return finish(spec, nil, false, loc)
	}
	raw, present := obj[spec.Alias]
	return finish(spec, raw, present, loc)
}

func sameIndex(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (req *request) bindFile(spec ParameterSpec, loc errs.Loc) (reflect.Value, []errs.FieldError, error) {
	if err := req.parseForm(); err != nil {
		return reflect.Value{}, nil, err
	}

	var parts []*multipart.FileHeader
	if req.form != nil {
		parts = req.form.File[spec.Alias]
	}

	if len(parts) == 0 {
		if _, sentAsText := req.values[spec.Alias]; sentAsText {
			return reflect.Value{}, []errs.FieldError{validation.Error(validation.KindFile, loc)}, nil
		}
		return finish(spec, nil, false, loc)
	}

	v, err := fileValue(spec.Type, parts)
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return v, nil, nil
}

func (req *request) jsonBody() (any, error) {
	if req.bodyRead {
		return req.body, nil
	}
	req.bodyRead = true

	r := req.c.Request()
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read request body")
	}
	req.bodyRaw = data

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	body, err := jsonutil.DecodeLoose(data)
	if err != nil {
		req.bodyErr = err
		return nil, nil
	}
	req.body = body
	return body, nil
}

func (req *request) parseForm() error {
	if req.formRead {
		return nil
	}
	req.formRead = true

	r := req.c.Request()
	contentType := r.Header.Get(echo.HeaderContentType)

	switch {
	case strings.HasPrefix(contentType, echo.MIMEMultipartForm):
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return errs.NewBadRequestError("There was an error parsing the body")
		}
		req.form = r.MultipartForm
		req.values = url.Values(r.MultipartForm.Value)

	case strings.HasPrefix(contentType, echo.MIMEApplicationForm):
		if err := r.ParseForm(); err != nil {
			return errs.NewBadRequestError("There was an error parsing the body")
		}
		req.values = r.PostForm

	default:
		req.values = url.Values{}
	}
	return nil
}

func (req *request) formValues() (url.Values, error) {
	if err := req.parseForm(); err != nil {
		return nil, err
	}
	return req.values, nil
}

// echo reproduces the received payload for validation error responses.
func (req *request) echo(form bool) any {
	if form {
		if len(req.values) == 0 && req.form == nil {
			return nil
		}
		out := map[string]any{}
		for k, v := range req.values {
			if len(v) == 1 {
				out[k] = v[0]
			} else {
				out[k] = v
			}
		}
		if req.form != nil {
			for k, parts := range req.form.File {
				names := make([]string, len(parts))
				for i, fh := range parts {
					names[i] = fh.Filename
				}
				out[k] = names
			}
		}
		return out
	}

	if req.bodyErr != nil {
		return string(req.bodyRaw)
	}
	if req.body == nil {
		return nil
	}
	if ordered, err := schema.DecodeOrdered(req.bodyRaw); err == nil {
		return ordered
	}
	return req.body
}
