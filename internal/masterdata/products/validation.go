package products

import (
	"errors"
	"fmt"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
	internalShared "github.com/pharmadist/pharmadist/internal/shared"
)

func (s *Service) validate(input Input) error {
	errs := []error{
		shared.Required("product name", input.Name),
		shared.Required("product sku", input.SKU),
		shared.Required("product unit", input.Unit),
	}
	if input.PurchasePrice.IsNegative() || input.SalePrice.IsNegative() {
		errs = append(errs, fmt.Errorf("%w: prices cannot be negative", internalShared.ErrValidation))
	}
	if input.MinStock < 0 {
		errs = append(errs, fmt.Errorf("%w: min stock cannot be negative", internalShared.ErrValidation))
	}
	return errors.Join(errs...)
}
