package extract

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode maps parsed data onto out, a pointer to a struct tagged with `json`
// and `validate` tags. Scalars are weakly typed, so "85" fills a float field and
// a lone string fills a []string. A result that is not Parsed is returned
// unchanged; any decoding or validation failure yields SchemaInvalid.
func Decode(r Result, out any) Result {
	if r.Status != Parsed {
		return r
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringifyHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return schemaInvalid(r, fmt.Errorf("build decoder: %w", err))
	}

	if err := decoder.Decode(r.Data); err != nil {
		return schemaInvalid(r, fmt.Errorf("decode model output: %w", err))
	}

	if err := validate.Struct(out); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			return schemaInvalid(r, fmt.Errorf("model output failed schema: %w", invalid))
		}
		return schemaInvalid(r, err)
	}

	return r
}

func schemaInvalid(r Result, cause error) Result {
	return Result{Status: SchemaInvalid, Raw: r.Raw, Attempts: r.Attempts, Cause: cause}
}

// stringifyHook lets objects and lists land in string fields as JSON text.
func stringifyHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice:
		return coerceString(data), nil
	default:
		return data, nil
	}
}
