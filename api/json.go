package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "mapstructure"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, len(errs))
	for i, fe := range errs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}

// decodeBody reads exactly one JSON object into dst, rejecting unknown
// fields and trailing data, then validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var (
			syntaxErr *json.SyntaxError
			typeErr   *json.UnmarshalTypeError
			maxErr    *http.MaxBytesError
		)
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("request body must not be empty", nil)
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return badRequest("malformed JSON", err)
		case errors.As(err, &typeErr):
			return badRequest(fmt.Sprintf("%s must be %s", typeErr.Field, typeErr.Type), err)
		case errors.As(err, &maxErr):
			return badRequest("request body too large", err)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return badRequest(strings.TrimPrefix(err.Error(), "json: "), err)
		}
		return badRequest("invalid request body", err)
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object", nil)
	}

	if err := validate.Struct(dst); err != nil {
		return badRequest("invalid request body", err)
	}
	return nil
}

// decodeQuery maps query parameters onto a filter struct through its
// mapstructure tags. Values arrive as strings, so decoding is weakly typed;
// unknown keys are rejected.
func decodeQuery(q url.Values, dst any) error {
	raw := make(map[string]any, len(q))
	for k, vs := range q {
		raw[k] = vs[len(vs)-1]
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return badRequest("invalid query string", err)
	}
	if err := validate.Struct(dst); err != nil {
		return badRequest("invalid query string", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
