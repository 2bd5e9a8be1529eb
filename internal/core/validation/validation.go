// Package validation turns go-playground/validator failures into
// *domain.ValidationError values shared by the API and the services.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/clubroster/membership/internal/core/domain"
)

// FromError converts the first failing field in err. An empty field names the
// error after the lower-cased struct field. Errors that are not validation
// failures are returned unchanged, and nil stays nil.
func FromError(err error, field string) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	if field == "" {
		field = strings.ToLower(fe.Field())
	}
	return domain.NewValidationError(field, Reason(fe))
}

// Reason is the user-facing explanation for a single failed tag.
func Reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte", "lte":
		return "is out of range"
	default:
		return "is invalid"
	}
}
