package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadist/pharmadist/internal/shared"
)

// Status is the sales order lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Fulfillable reports whether stock may be shipped against an order in s.
func (s Status) Fulfillable() bool {
	return s == StatusPending || s == StatusPartial
}

// SalesOrder is a customer order. Discounts are frozen into its items when
// the order is created or edited.
type SalesOrder struct {
	ID             int64           `json:"id"`
	OrderNumber    string          `json:"order_number"`
	CustomerID     int64           `json:"customer_id"`
	SalesmanID     *int64          `json:"salesman_id,omitempty"`
	Status         Status          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes,omitempty"`
	OrderDate      time.Time       `json:"order_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []Item          `json:"items,omitempty"`
}

// Item is a sales order line priced net of discount.
type Item struct {
	ID                int64           `json:"id"`
	SalesOrderID      int64           `json:"sales_order_id"`
	ProductID         int64           `json:"product_id"`
	Quantity          int64           `json:"quantity"`
	BaseUnitPrice     decimal.Decimal `json:"base_unit_price"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	AppliedDiscounts  []string        `json:"applied_discounts"`
	FulfilledQuantity int64           `json:"fulfilled_quantity"`
}

// LineTotal is the discounted amount of the line.
func (it Item) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
}

// FullyFulfilled reports whether every line shipped at least its quantity.
func (o SalesOrder) FullyFulfilled() bool {
	for _, it := range o.Items {
		if it.FulfilledQuantity < it.Quantity {
			return false
		}
	}
	return true
}

// AnyFulfilled reports whether stock was shipped on any line.
func (o SalesOrder) AnyFulfilled() bool {
	for _, it := range o.Items {
		if it.FulfilledQuantity > 0 {
			return true
		}
	}
	return false
}

// ProductRef is the catalog data the sales flow needs per product.
type ProductRef struct {
	ID        int64
	Name      string
	SalePrice decimal.Decimal
}

// CreateInput is the sales order payload used by create and update.
type CreateInput struct {
	CustomerID int64       `json:"customer_id" validate:"required,gt=0"`
	SalesmanID *int64      `json:"salesman_id,omitempty"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
	Notes      string      `json:"notes,omitempty"`
	Submit     bool        `json:"submit,omitempty"`
}

// ItemInput is one ordered line. UnitPrice overrides the product sale price.
type ItemInput struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// FulfillInput ships stock against an order.
type FulfillInput struct {
	SalesOrderID   int64         `json:"sales_order_id"`
	Items          []FulfillLine `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey string        `json:"-"`
}

// FulfillLine is the quantity shipped for one order item.
type FulfillLine struct {
	ItemID            int64 `json:"item_id" validate:"required,gt=0"`
	FulfilledQuantity int64 `json:"fulfilled_quantity" validate:"required,gt=0"`
}

// ListFilter narrows order listings.
type ListFilter struct {
	CustomerID *int64
	SalesmanID *int64
	Status     Status
	Limit      int
	Offset     int
}

var (
	// ErrOrderNotFound is returned when a sales order id matches nothing.
	ErrOrderNotFound = fmt.Errorf("sales order %w", shared.ErrNotFound)
	// ErrItemNotFound is returned when a fulfil line names an item outside the order.
	ErrItemNotFound = fmt.Errorf("sales order item %w", shared.ErrNotFound)
)
