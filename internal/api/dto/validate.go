package dto

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/docdesk/pkg/util/errorutil"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks payload against its struct tags and returns a
// validation DomainError listing the failing fields.
func Validate(payload any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(payload); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			details := make(map[string]any, len(fieldErrors))
			for _, fe := range fieldErrors {
				details[fe.Field()] = fe.Tag()
			}
			return apperrors.NewValidationError("invalid request payload", details)
		}
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return nil
}
