package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadist/pharmadist/internal/shared"
)

// Batch is a quantity of one product sharing a batch number and expiry.
type Batch struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	BatchNumber     string          `json:"batch_number"`
	Quantity        int64           `json:"quantity"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	SupplierID      *int64          `json:"supplier_id,omitempty"`
	PurchaseOrderID *int64          `json:"purchase_order_id,omitempty"`
	StockTransferID *int64          `json:"stock_transfer_id,omitempty"`
	Location        string          `json:"location,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewBatch carries the columns of a batch insert.
type NewBatch struct {
	ProductID       int64
	BatchNumber     string
	Quantity        int64
	ExpiryDate      time.Time
	PurchasePrice   decimal.Decimal
	SupplierID      *int64
	PurchaseOrderID *int64
	StockTransferID *int64
	Location        string
}

// BatchUpdate holds the editable batch fields. Nil fields are left unchanged.
type BatchUpdate struct {
	Quantity   *int64
	ExpiryDate *time.Time
	Location   *string
}

// Allocation is the share of a deduction taken from one batch.
type Allocation struct {
	BatchID     int64  `json:"batch_id"`
	BatchNumber string `json:"batch_number"`
	Quantity    int64  `json:"quantity"`
}

// BatchFilter narrows batch listings.
type BatchFilter struct {
	ProductID    *int64
	IncludeEmpty bool
	Limit        int
}

// ExpiringBatch is a batch with stock left that expires inside the warning window.
type ExpiringBatch struct {
	Batch
	ProductName string `json:"product_name"`
	DaysLeft    int    `json:"days_left"`
}

// StockLevel totals the batches of one product.
type StockLevel struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Quantity    int64  `json:"quantity"`
	MinStock    int64  `json:"min_stock"`
	Low         bool   `json:"low"`
}

// CreateBatchInput is the manual batch entry payload.
type CreateBatchInput struct {
	ProductID     int64           `json:"product_id" validate:"required,gt=0"`
	BatchNumber   string          `json:"batch_number" validate:"required"`
	Quantity      int64           `json:"quantity" validate:"gte=0"`
	ExpiryDate    time.Time       `json:"expiry_date" validate:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SupplierID    *int64          `json:"supplier_id,omitempty"`
	Location      string          `json:"location,omitempty"`
}

// UpdateBatchInput corrects an existing batch.
type UpdateBatchInput struct {
	Quantity   *int64     `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Location   *string    `json:"location,omitempty"`
}

// ErrBatchNotFound is returned by batch lookups that match nothing.
var ErrBatchNotFound = fmt.Errorf("inventory batch %w", shared.ErrNotFound)

// ErrNegativeStock is returned when an adjustment would take a batch below zero.
var ErrNegativeStock = fmt.Errorf("%w: batch quantity cannot go negative", shared.ErrInsufficientStock)

// InsufficientStockError reports a deduction larger than the stock on hand.
type InsufficientStockError struct {
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}
