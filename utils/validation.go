package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is the singleton validator instance
	validate *validator.Validate

	// israeliIDRegex matches a 9-digit national ID number
	israeliIDRegex = regexp.MustCompile(`^\d{9}$`)

	// localPhoneRegex matches a local phone number, optionally hyphenated
	localPhoneRegex = regexp.MustCompile(`^0\d{1,2}-?\d{7}$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("israeli_id", func(fl validator.FieldLevel) bool {
		return israeliIDRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("il_phone", func(fl validator.FieldLevel) bool {
		return localPhoneRegex.MatchString(strings.ReplaceAll(fl.Field().String(), " ", ""))
	})
}

// ValidateStruct validates a struct using go-playground/validator
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// ValidationError wraps validation errors with structured details
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		tag := err.Tag()

		switch tag {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "min":
			fields[field] = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "oneof":
			fields[field] = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case "israeli_id":
			fields[field] = fmt.Sprintf("%s is not a valid ID number", field)
		case "il_phone":
			fields[field] = fmt.Sprintf("%s is not a valid phone number", field)
		case "eq":
			fields[field] = fmt.Sprintf("%s must equal %s", field, err.Param())
		default:
			fields[field] = fmt.Sprintf("%s validation failed on '%s' tag", field, tag)
		}
	}

	return &ValidationError{
		Message: "Validation failed",
		Fields:  fields,
	}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// GetValidationFields extracts field errors from a ValidationError
func GetValidationFields(err error) map[string]string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}
	return nil
}
