package transfers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadist/pharmadist/internal/shared"
)

// Type is the stock transfer kind. It selects the document prefix and the
// direction stock moves on confirm.
type Type string

const (
	TypeImport            Type = "import"
	TypeImportReturn      Type = "import_return"
	TypeExport            Type = "export"
	TypeExportReturn      Type = "export_return"
	TypeExportGift        Type = "export_gift"
	TypeExportDestruction Type = "export_destruction"
)

var prefixes = map[Type]string{
	TypeImport:            "PN",
	TypeImportReturn:      "PNH",
	TypeExport:            "PX",
	TypeExportReturn:      "PXT",
	TypeExportGift:        "PXTG",
	TypeExportDestruction: "PXH",
}

// Valid reports whether t is a known transfer type.
func (t Type) Valid() bool {
	_, ok := prefixes[t]
	return ok
}

// Prefix is the transfer number prefix for t.
func (t Type) Prefix() string {
	return prefixes[t]
}

// Status is the transfer lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// PartnerType names the counterparty table a transfer refers to.
type PartnerType string

const (
	PartnerSupplier PartnerType = "supplier"
	PartnerCustomer PartnerType = "customer"
)

// StockTransfer is an inventory movement outside the order flows.
type StockTransfer struct {
	ID              int64       `json:"id"`
	TransferNumber  string      `json:"transfer_number"`
	TransferType    Type        `json:"transfer_type"`
	Status          Status      `json:"status"`
	PartnerID       *int64      `json:"partner_id,omitempty"`
	PartnerType     PartnerType `json:"partner_type,omitempty"`
	PurchaseOrderID *int64      `json:"purchase_order_id,omitempty"`
	SalesOrderID    *int64      `json:"sales_order_id,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	TransferDate    time.Time   `json:"transfer_date"`
	ConfirmedAt     *time.Time  `json:"confirmed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []Item      `json:"items,omitempty"`
}

// SupplierID returns the partner id when the partner is a supplier.
func (t StockTransfer) SupplierID() *int64 {
	if t.PartnerType != PartnerSupplier || t.PartnerID == nil {
		return nil
	}
	id := *t.PartnerID
	return &id
}

// Item is one transfer line. Outbound lines point at the batch they draw from.
type Item struct {
	ID               int64           `json:"id"`
	StockTransferID  int64           `json:"stock_transfer_id"`
	ProductID        int64           `json:"product_id"`
	InventoryBatchID *int64          `json:"inventory_batch_id,omitempty"`
	BatchNumber      string          `json:"batch_number"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ExpiryDate       time.Time       `json:"expiry_date"`
	Reason           string          `json:"reason,omitempty"`
}

// CreateInput is the transfer payload used by create and update.
type CreateInput struct {
	TransferType    Type        `json:"transfer_type" validate:"required"`
	PartnerID       *int64      `json:"partner_id,omitempty"`
	PartnerType     PartnerType `json:"partner_type,omitempty"`
	PurchaseOrderID *int64      `json:"purchase_order_id,omitempty"`
	SalesOrderID    *int64      `json:"sales_order_id,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	TransferDate    *time.Time  `json:"transfer_date,omitempty"`
	Items           []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// ItemInput is one requested line. Inbound lines carry batch number and
// expiry; outbound lines name the source batch instead.
type ItemInput struct {
	ProductID        int64           `json:"product_id" validate:"required,gt=0"`
	InventoryBatchID *int64          `json:"inventory_batch_id,omitempty"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	Quantity         int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	Reason           string          `json:"reason,omitempty"`
}

// ListFilter narrows transfer listings.
type ListFilter struct {
	TransferType Type
	Status       Status
	Limit        int
	Offset       int
}

var (
	// ErrTransferNotFound is returned when a transfer id matches nothing.
	ErrTransferNotFound = fmt.Errorf("stock transfer %w", shared.ErrNotFound)
)
