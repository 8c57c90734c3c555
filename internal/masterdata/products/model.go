package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	CategoryID    *int64          `json:"category_id,omitempty"`
	Unit          string          `json:"unit"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	MinStock      int64           `json:"min_stock"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Input is the create/update payload.
type Input struct {
	Name          string          `json:"name" validate:"required,max=200"`
	SKU           string          `json:"sku" validate:"required,max=64"`
	CategoryID    *int64          `json:"category_id,omitempty"`
	Unit          string          `json:"unit" validate:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	MinStock      int64           `json:"min_stock" validate:"gte=0"`
	IsActive      *bool           `json:"is_active,omitempty"`
}
