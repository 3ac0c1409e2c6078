package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validationFailure maps validator field errors onto user-facing errors:
// a missing field wins over an out-of-range one.
func validationFailure(err error, missing, invalid *ValidationError) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return missing
		}
	}
	return invalid
}
