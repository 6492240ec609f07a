package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance for request structs.
// Field names in validation errors use the struct's json tag so that
// per-field error keys match the wire format clients sent.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// FieldErrors converts a validator error into per-field message lists,
// keyed by the json field name. Non-validator errors produce a single
// generic entry under "body".
func FieldErrors(err error) map[string][]string {
	fieldErrors := make(map[string][]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fieldErrors["body"] = []string{"The request body is invalid."}
		return fieldErrors
	}

	for _, fe := range verrs {
		field := fieldErrorKey(fe)
		fieldErrors[field] = append(fieldErrors[field], fieldErrorMessage(field, fe))
	}

	return fieldErrors
}

// fieldErrorKey renders the error key for a field, converting validator's
// namespace format (Request.tasks[0].id) to a dotted path (tasks.0.id)
// with the top-level struct name stripped.
func fieldErrorKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	ns = strings.ReplaceAll(ns, "]", "")
	return ns
}

// fieldErrorMessage maps a validation tag to a human-readable message.
func fieldErrorMessage(field string, fe validator.FieldError) string {
	// Use the leaf field name in messages for nested fields.
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "required_without":
		return fmt.Sprintf("The %s field is required when %s is not present.",
			field, strings.ToLower(fe.Param()))
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "datetime":
		return fmt.Sprintf("The %s field must match the format %s.", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("The %s field is out of range.", field)
	case "uuid":
		return fmt.Sprintf("The %s field must be a valid UUID.", field)
	case "dive":
		return fmt.Sprintf("The %s field is invalid.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
