package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Validator instances cache
// struct metadata, so a single instance is reused across requests.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct validation and converts the result into a
// ValidationError carrying one message per violated field.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	ve := &ValidationError{}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		ve.Fields = append(ve.Fields, FieldError{
			Field:   field,
			Message: fieldMessage(field, fe),
		})
	}
	return ve
}

// fieldMessage renders a human-readable message for a single violation.
func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
