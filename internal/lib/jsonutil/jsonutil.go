// Package jsonutil wraps sonic behind the encoding/json shaped API used across
// the service, and adapts it to echo's JSONSerializer.
package jsonutil

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var (
	api = sonic.ConfigStd

	loose = sonic.Config{
		EscapeHTML:       true,
		SortMapKeys:      true,
		CompactMarshaler: true,
		CopyString:       true,
		ValidateString:   true,
		UseNumber:        true,
	}.Froze()
)

func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	return api.NewEncoder(w).Encode(v)
}

func Decode(r io.Reader, v any) error {
	return api.NewDecoder(r).Decode(v)
}

// DecodeLoose parses arbitrary JSON keeping numbers as json.Number so that
// later coercion can tell 62 from 62.0 and avoid float rounding of ints.
func DecodeLoose(data []byte) (any, error) {
	var out any
	if err := loose.Unmarshal(data, &out); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// Serializer implements echo.JSONSerializer on top of sonic.
type Serializer struct{}

func (Serializer) Serialize(c echo.Context, i any, indent string) error {
	enc := api.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (Serializer) Deserialize(c echo.Context, i any) error {
	err := api.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(400, "Invalid JSON body").SetInternal(err)
	}
	return nil
}
