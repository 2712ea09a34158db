package serverutils

import (
	"fmt"
	"strings"

	"ai-casefile-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks the struct's `validate` tags and converts failures
// into a ValidationError the error middleware maps to 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var invalid validator.ValidationErrors
		if ok := isValidationErrors(err, &invalid); ok {
			fields := make([]string, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return apperror.Validation("invalid request: " + strings.Join(fields, ", "))
		}
		return apperror.Validation("invalid request body")
	}
	return nil
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		*target = ve
		return true
	}
	return false
}
