package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors turns a binding error into per-field messages.
// model is the struct that was bound; its json or form tags name the fields.
// Errors that are not about a field yield an empty slice.
func FormatValidationErrors(err error, model any) []ValidationErrorResponse {
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorResponse{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Expected %s, got %s", typeErr.Type, typeErr.Value),
		}}
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return []ValidationErrorResponse{{
			Field:   "",
			Message: fmt.Sprintf("%q is not a number", numErr.Num),
		}}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	structType := reflect.TypeOf(model)
	for structType != nil && structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	out := make([]ValidationErrorResponse, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationErrorResponse{
			Field:   externalFieldName(structType, fe.StructField()),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "max":
		return fmt.Sprintf("Must not exceed %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "mobile":
		return "Invalid mobile number"
	case "contains":
		return fmt.Sprintf("Must contain %q", fe.Param())
	case "dive":
		return "One of the values is invalid"
	default:
		return "Invalid value"
	}
}

// externalFieldName prefers the json tag, then the form tag.
func externalFieldName(structType reflect.Type, name string) string {
	if structType == nil || structType.Kind() != reflect.Struct {
		return name
	}

	field, ok := structType.FieldByName(name)
	if !ok {
		return name
	}

	for _, tagKey := range []string{"json", "form"} {
		if tag, _, _ := strings.Cut(field.Tag.Get(tagKey), ","); tag != "" && tag != "-" {
			return tag
		}
	}
	return name
}
