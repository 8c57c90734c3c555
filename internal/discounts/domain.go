package discounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type labels a discount rule. The literals are stored verbatim.
type Type string

const (
	TypeDoctor   Type = "Doctor"
	TypeHospital Type = "hospital"
	TypePayment  Type = "payment"
	TypeSalesman Type = "Salesman"
	TypeManager  Type = "Manager"
)

// Valid reports whether t is one of the known rule types.
func (t Type) Valid() bool {
	switch t {
	case TypeDoctor, TypeHospital, TypePayment, TypeSalesman, TypeManager:
		return true
	}
	return false
}

// Rule is a percent discount a salesman grants, optionally narrowed to one
// customer and/or one product.
type Rule struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	DiscountType    Type            `json:"discount_type"`
	CustomerID      *int64          `json:"customer_id,omitempty"`
	ProductID       *int64          `json:"product_id,omitempty"`
	SalesmanID      int64           `json:"salesman_id"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	CreatedByStaff  string          `json:"created_by_staff"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Resolution is the discount that applies to one product of an order.
type Resolution struct {
	TotalPercent decimal.Decimal `json:"total_percent"`
	Rules        []Rule          `json:"rules"`
}

// Labels returns the distinct rule types that contributed, in rule order.
func (r Resolution) Labels() []string {
	labels := make([]string, 0, len(r.Rules))
	seen := make(map[Type]bool, len(r.Rules))
	for _, rule := range r.Rules {
		if seen[rule.DiscountType] {
			continue
		}
		seen[rule.DiscountType] = true
		labels = append(labels, string(rule.DiscountType))
	}
	return labels
}

// RuleInput is the create/update payload for a rule.
type RuleInput struct {
	Name            string          `json:"name" validate:"required"`
	DiscountType    Type            `json:"discount_type" validate:"required"`
	CustomerID      *int64          `json:"customer_id,omitempty"`
	ProductID       *int64          `json:"product_id,omitempty"`
	SalesmanID      *int64          `json:"salesman_id"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	CreatedByStaff  string          `json:"created_by_staff,omitempty"`
	IsActive        *bool           `json:"is_active,omitempty"`
}

// RuleFilter narrows rule listings.
type RuleFilter struct {
	SalesmanID *int64
	CustomerID *int64
	ProductID  *int64
	IsActive   *bool
}

// ApplicableRequest asks for the discounts of an order being drafted.
type ApplicableRequest struct {
	CustomerID int64   `json:"customer_id" validate:"required,gt=0"`
	SalesmanID *int64  `json:"salesman_id,omitempty"`
	ProductIDs []int64 `json:"product_ids"`
}
