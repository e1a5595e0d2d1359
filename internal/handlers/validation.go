package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance for all request DTOs.
var validate = validator.New()

// ValidateRequest validates a request struct and returns the first failure as
// a user-facing error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}

	fe := ve[0]
	return fmt.Errorf("validation failed: %s: %s", fe.Field(), fieldErrorMessage(fe))
}

// fieldErrorMessage converts a FieldError to a user-facing message.
func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte", "lte":
		return rangeMessage(fe)
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// rangeMessage phrases range failures. The gte/lte tags only appear on the
// coordinate payload, so those fields get coordinate wording.
func rangeMessage(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Latitude":
		return "latitude must be between -90 and 90"
	case "Longitude":
		return "longitude must be between -180 and 180"
	case "AccuracyMeters":
		return "accuracy cannot be negative"
	}
	if fe.Tag() == "gte" {
		return fmt.Sprintf("must be %s or greater", fe.Param())
	}
	return fmt.Sprintf("must be %s or less", fe.Param())
}
