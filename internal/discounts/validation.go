package discounts

import (
	"fmt"
	"strings"

	"github.com/pharmadist/pharmadist/internal/shared"
)

func validateRuleInput(in *RuleInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.CreatedByStaff = strings.TrimSpace(in.CreatedByStaff)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if !in.DiscountType.Valid() {
		return fmt.Errorf("%w: unknown discount type %q", shared.ErrValidation, in.DiscountType)
	}
	if in.SalesmanID == nil || *in.SalesmanID <= 0 {
		return fmt.Errorf("%w: salesman is required", shared.ErrValidation)
	}
	if in.CustomerID != nil && *in.CustomerID <= 0 {
		in.CustomerID = nil
	}
	if in.ProductID != nil && *in.ProductID <= 0 {
		in.ProductID = nil
	}
	in.DiscountPercent = ClampPercent(in.DiscountPercent)
	return nil
}
