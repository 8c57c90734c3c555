package procurement

import (
	"fmt"
	"strings"

	"github.com/pharmadist/pharmadist/internal/shared"
)

func validateInput(input CreateInput) error {
	if input.SupplierID <= 0 {
		return fmt.Errorf("%w: supplier is required", shared.ErrValidation)
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

func validateReceive(input ReceiveInput) error {
	if input.PurchaseOrderID <= 0 {
		return fmt.Errorf("%w: purchase order is required", shared.ErrValidation)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}
	for i := range input.Items {
		line := &input.Items[i]
		line.BatchNumber = strings.TrimSpace(line.BatchNumber)
		if line.ReceivedQuantity <= 0 {
			return fmt.Errorf("%w: line %d: received quantity must be positive", shared.ErrValidation, i+1)
		}
		if line.BatchNumber == "" {
			return fmt.Errorf("%w: line %d: batch number is required", shared.ErrValidation, i+1)
		}
		if line.ExpiryDate.IsZero() {
			return fmt.Errorf("%w: line %d: expiry date is required", shared.ErrValidation, i+1)
		}
	}
	return nil
}
