package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/clubroster/membership/internal/core/validation"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validator.New()}
}

// Validate reports the first failing field as a *domain.ValidationError.
func (ev *echoValidator) Validate(i any) error {
	return validation.FromError(ev.v.Struct(i), "")
}
