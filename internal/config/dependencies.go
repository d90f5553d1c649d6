package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"tasktracker/internal/apperr"
)

// Validate is the validator shared by every request struct. Field errors are
// reported under the field's JSON name.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs Validate on s and converts failures into an
// *apperr.ValidationError.
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &apperr.ValidationError{Message: "The given data was invalid."}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("the %s field is required", field)
	case "email":
		return fmt.Sprintf("the %s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("the selected %s is invalid (allowed: %s)", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("the %s is not a valid date (expected YYYY-MM-DD)", field)
	case "eqfield":
		return "the password confirmation does not match"
	case "max":
		return fmt.Sprintf("the %s may not be greater than %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("the %s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("the %s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("the %s is invalid", field)
	}
}
