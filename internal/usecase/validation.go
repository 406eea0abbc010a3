package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"ridi-pay/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct validation and maps failures to domain.ErrInvalidArgument.
// Only field names and rules are reported; values may be card data and never leave here.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+":"+fe.Tag())
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(fields, ", "))
}
