package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads the aggregate counters from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Counts returns active catalog sizes and open order counts.
func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx, `SELECT
  (SELECT COUNT(*) FROM products WHERE is_active),
  (SELECT COUNT(*) FROM customers WHERE is_active),
  (SELECT COUNT(*) FROM suppliers WHERE is_active),
  (SELECT COUNT(*) FROM purchase_orders WHERE status IN ('pending','partial')),
  (SELECT COUNT(*) FROM sales_orders WHERE status IN ('pending','partial'))`).
		Scan(&c.Products, &c.Customers, &c.Suppliers, &c.PendingPurchases, &c.PendingSales)
	return c, err
}

// SalesSince sums non-cancelled sales orders dated at or after from.
func (r *Repository) SalesSince(ctx context.Context, from time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM sales_orders
WHERE order_date >= $1 AND status NOT IN ('draft','cancelled')`, from).Scan(&total)
	return total, err
}
