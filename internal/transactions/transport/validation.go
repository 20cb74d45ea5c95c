package transport

import (
	"dealdesk_backend/internal/transactions/domain"
	"dealdesk_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidations adds the transaction-specific tags used by request DTOs.
func RegisterValidations(val *validator.Validator) error {
	return val.RegisterValidation("txstage", func(fl playground.FieldLevel) bool {
		return domain.IsKnown(domain.Stage(fl.Field().String()))
	})
}
