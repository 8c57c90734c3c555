package transfers

import (
	"fmt"

	"github.com/pharmadist/pharmadist/internal/shared"
)

func validateInput(input CreateInput) error {
	if !input.TransferType.Valid() {
		return fmt.Errorf("%w: unknown transfer type %q", shared.ErrValidation, input.TransferType)
	}
	switch input.PartnerType {
	case "":
		if input.PartnerID != nil {
			return fmt.Errorf("%w: partner type is required with a partner", shared.ErrValidation)
		}
	case PartnerSupplier, PartnerCustomer:
		if input.PartnerID == nil || *input.PartnerID <= 0 {
			return fmt.Errorf("%w: partner is required", shared.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown partner type %q", shared.ErrValidation, input.PartnerType)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}
	for i, it := range input.Items {
		if it.ProductID <= 0 {
			return fmt.Errorf("%w: item %d: product is required", shared.ErrValidation, i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", shared.ErrValidation, i+1)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d: unit price cannot be negative", shared.ErrValidation, i+1)
		}
	}
	return nil
}
