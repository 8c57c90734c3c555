package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// Overview is the landing page summary.
type Overview struct {
	Products         int64           `json:"products"`
	Customers        int64           `json:"customers"`
	Suppliers        int64           `json:"suppliers"`
	PendingPurchases int64           `json:"pending_purchase_orders"`
	PendingSales     int64           `json:"pending_sales_orders"`
	LowStockProducts int             `json:"low_stock_products"`
	ExpiringBatches  int             `json:"expiring_batches"`
	MonthToDateSales decimal.Decimal `json:"month_to_date_sales"`
	ExpiryWindowDays int             `json:"expiry_window_days"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// Counts are the catalog and open document totals.
type Counts struct {
	Products         int64
	Customers        int64
	Suppliers        int64
	PendingPurchases int64
	PendingSales     int64
}
