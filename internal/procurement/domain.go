package procurement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadist/pharmadist/internal/shared"
)

// Status is the purchase order lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// Receivable reports whether goods may be received against an order in s.
func (s Status) Receivable() bool {
	return s == StatusPending || s == StatusPartial
}

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	ID           int64           `json:"id"`
	OrderNumber  string          `json:"order_number"`
	SupplierID   int64           `json:"supplier_id"`
	Status       Status          `json:"status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Notes        string          `json:"notes,omitempty"`
	OrderDate    time.Time       `json:"order_date"`
	ExpectedDate *time.Time      `json:"expected_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Items        []Item          `json:"items,omitempty"`
}

// Item is a purchase order line.
type Item struct {
	ID               int64           `json:"id"`
	PurchaseOrderID  int64           `json:"purchase_order_id"`
	ProductID        int64           `json:"product_id"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReceivedQuantity int64           `json:"received_quantity"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
}

// Outstanding is the quantity still expected on the line, never negative.
func (it Item) Outstanding() int64 {
	return max(it.Quantity-it.ReceivedQuantity, 0)
}

// FullyReceived reports whether every line received at least its quantity.
func (o PurchaseOrder) FullyReceived() bool {
	for _, it := range o.Items {
		if it.ReceivedQuantity < it.Quantity {
			return false
		}
	}
	return true
}

// AnyReceived reports whether goods were received on any line.
func (o PurchaseOrder) AnyReceived() bool {
	for _, it := range o.Items {
		if it.ReceivedQuantity > 0 {
			return true
		}
	}
	return false
}

// CreateInput is the purchase order payload used by create and update.
type CreateInput struct {
	SupplierID   int64       `json:"supplier_id" validate:"required,gt=0"`
	Items        []ItemInput `json:"items" validate:"required,min=1,dive"`
	Notes        string      `json:"notes,omitempty"`
	ExpectedDate *time.Time  `json:"expected_date,omitempty"`
	Submit       bool        `json:"submit,omitempty"`
}

// ItemInput is one requested line.
type ItemInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ReceiveInput records goods arriving against an order.
type ReceiveInput struct {
	PurchaseOrderID int64         `json:"purchase_order_id"`
	Items           []ReceiveLine `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey  string        `json:"-"`
}

// ReceiveLine is the quantity received for one order item.
type ReceiveLine struct {
	ItemID           int64     `json:"item_id" validate:"required,gt=0"`
	ReceivedQuantity int64     `json:"received_quantity" validate:"required,gt=0"`
	BatchNumber      string    `json:"batch_number" validate:"required"`
	ExpiryDate       time.Time `json:"expiry_date" validate:"required"`
}

// ListFilter narrows order listings.
type ListFilter struct {
	SupplierID *int64
	Status     Status
	Limit      int
	Offset     int
}

var (
	// ErrOrderNotFound is returned when a purchase order id matches nothing.
	ErrOrderNotFound = fmt.Errorf("purchase order %w", shared.ErrNotFound)
	// ErrItemNotFound is returned when a receive line names an item outside the order.
	ErrItemNotFound = fmt.Errorf("purchase order item %w", shared.ErrNotFound)
)
