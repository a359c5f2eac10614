package validator

import (
	"github.com/quizforge/scorm-engine/internal/errors"
)

// Use shared validation errors from errors package
type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) error {
	converted := errors.ToValidationErrors(err)
	if len(converted) == 0 {
		return err
	}
	return converted
}
