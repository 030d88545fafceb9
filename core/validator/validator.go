package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json names rather than Go field names
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

func (r *ValidationResult) HasError() bool {
	return len(r.Errors) > 0
}

func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// First returns the first error message, or "" when valid.
func (r *ValidationResult) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

func Validate(s any) *ValidationResult {
	result := &ValidationResult{}

	err := instance().Struct(s)
	if err == nil {
		return result
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.AddError("", err.Error())
		return result
	}

	for _, fe := range errs {
		result.AddError(fe.Field(), message(fe))
	}
	return result
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
