// Package bind decodes an HTTP request body (JSON or HTML form) into a struct
// and validates it with go-playground/validator.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"

	"github.com/cupcakery/storefront/config"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Field names in errors use the json
// tag, falling back to the form tag.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// maxBodyBytes returns the configured request body size limit (default 4 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

// Request decodes r into dest according to its Content-Type and validates it.
// Returns (errs, nil) on validation failures and (nil, err) when the body
// cannot be decoded.
func Request(r *http.Request, dest interface{}) (map[string]string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return JSON(r, dest)
	}
	return Form(r, dest)
}

// JSON decodes r.Body as JSON into dest and runs validation. The body is
// capped at MAX_BODY_BYTES.
func JSON(r *http.Request, dest interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return Struct(dest), nil
}

var formDecoder = newFormDecoder()

// newFormDecoder reads `form` tags. Bools follow checkbox rules: a present
// key is true unless its last value is "false", "0" or "off".
func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.RegisterCustomTypeFunc(func(vals []string) (interface{}, error) {
		return checked(vals), nil
	}, false)
	return d
}

// Form decodes url-encoded or multipart form values into the `form`-tagged
// fields of dest and runs validation. dest is reset first, so a field whose
// key is absent ends up at its zero value (an unticked checkbox is false).
// Values are trimmed.
func Form(r *http.Request, dest interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, errors.New("bind: dest must be a pointer to struct")
	}
	rv.Elem().SetZero()

	values := make(url.Values, len(r.Form))
	for k, vs := range r.Form {
		for _, v := range vs {
			values.Add(k, strings.TrimSpace(v))
		}
	}

	if err := formDecoder.Decode(dest, values); err != nil {
		var derrs form.DecodeErrors
		if !errors.As(err, &derrs) {
			return nil, fmt.Errorf("invalid form: %w", err)
		}
		errs := make(map[string]string, len(derrs))
		for field := range derrs {
			errs[field] = "valor inválido"
		}
		return errs, nil
	}

	return Struct(dest), nil
}

func checked(values []string) bool {
	if len(values) == 0 {
		return true
	}
	switch strings.ToLower(values[len(values)-1]) {
	case "false", "0", "off":
		return false
	}
	return true
}

// Struct validates v and returns a field → message map, nil when valid.
func Struct(v interface{}) map[string]string {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "e-mail inválido"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("mínimo de %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no mínimo %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("máximo de %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no máximo %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("deve ser um de: %s", fe.Param())
	case "numeric":
		return "deve conter apenas números"
	case "len":
		return fmt.Sprintf("deve ter %s caracteres", fe.Param())
	default:
		return "valor inválido"
	}
}
