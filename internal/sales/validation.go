package sales

import (
	"fmt"

	"github.com/pharmadist/pharmadist/internal/shared"
)

func validateInput(input CreateInput) error {
	if input.CustomerID <= 0 {
		return fmt.Errorf("%w: customer is required", shared.ErrValidation)
	}
	if input.SalesmanID != nil && *input.SalesmanID <= 0 {
		return fmt.Errorf("%w: invalid salesman", shared.ErrValidation)
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
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d: unit price cannot be negative", shared.ErrValidation, i+1)
		}
	}
	return nil
}

func validateFulfill(input FulfillInput) error {
	if input.SalesOrderID <= 0 {
		return fmt.Errorf("%w: sales order is required", shared.ErrValidation)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", shared.ErrValidation)
	}
	for i, line := range input.Items {
		if line.FulfilledQuantity <= 0 {
			return fmt.Errorf("%w: line %d: fulfilled quantity must be positive", shared.ErrValidation, i+1)
		}
	}
	return nil
}
