// Package validation configures the validator used by Gin's binding layer
// and converts binding failures into the apperr.ValidationError shape the
// API returns.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tonearm/tonearm/pkg/apperr"
)

// Init configures the global validator used by Gin's binding:
// - errors use JSON tag names, not Go field names;
// - `username` and `pwd` aliases carry the account policy.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("usernamechars", usernameChars)
		_ = v.RegisterValidation("halfstep", halfStepRating)
		v.RegisterAlias("username", "min=3,max=30,usernamechars")
		v.RegisterAlias("pwd", "min=6,max=128")
	}
}

// usernameChars restricts usernames to letters, digits, period, underscore.
func usernameChars(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_':
		default:
			return false
		}
	}
	return true
}

// halfStepRating accepts ratings on the 0.5..5.0 scale in half steps.
func halfStepRating(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	if v < 0.5 || v > 5.0 {
		return false
	}
	doubled := v * 2
	return doubled == float64(int64(doubled))
}

// ToFieldErrors converts a binding error into the ordered field list carried
// by apperr.ValidationError. Non-validator errors (syntax, type mismatch)
// collapse into a single "body" entry.
func ToFieldErrors(err error) []apperr.FieldError {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return []apperr.FieldError{{Field: "body", Message: "invalid json"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]apperr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, apperr.FieldError{Field: fe.Field(), Message: messageFor(fe)})
		}
		return out
	}

	return []apperr.FieldError{{Field: "body", Message: "invalid payload"}}
}

// ToValidationError wraps ToFieldErrors in the domain error type.
func ToValidationError(err error) *apperr.ValidationError {
	return &apperr.ValidationError{Fields: ToFieldErrors(err)}
}

func messageFor(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters long"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters long"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "eqfield":
		return "must match " + param
	case "usernamechars":
		return "may only contain letters, digits, periods and underscores"
	case "halfstep":
		return "must be between 0.5 and 5.0 in half steps"
	case "username":
		return "must be 3-30 characters of letters, digits, periods and underscores"
	case "pwd":
		return "must be 6-128 characters long"
	case "url":
		return "must be a valid URL"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", fe.Tag(), param)
		}
		return fmt.Sprintf("validation failed for '%s'", fe.Tag())
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
