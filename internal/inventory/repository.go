package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/platform/db"
)

// Repository persists inventory batches in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewTxLedger(tx))
	})
}

func (r *Repository) GetBatch(ctx context.Context, id int64) (Batch, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+batchColumns+` FROM inventory_batches WHERE id=$1`, id)
	return scanBatchOrNotFound(row)
}

func (r *Repository) ListBatches(ctx context.Context, filter BatchFilter) ([]Batch, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT `+batchColumns+` FROM inventory_batches
WHERE ($1::bigint IS NULL OR product_id = $1) AND ($2 OR quantity > 0)
ORDER BY product_id ASC, expiry_date ASC, id ASC
LIMIT $3`, filter.ProductID, filter.IncludeEmpty, limit)
	if err != nil {
		return nil, err
	}
	return collectBatches(rows)
}

func (r *Repository) ListExpiring(ctx context.Context, until time.Time) ([]ExpiringBatch, error) {
	rows, err := r.pool.Query(ctx, `SELECT b.id, b.product_id, b.batch_number, b.quantity, b.expiry_date, b.purchase_price, b.supplier_id, b.purchase_order_id, b.stock_transfer_id, b.location, b.created_at, b.updated_at, p.name
FROM inventory_batches b
JOIN products p ON p.id = b.product_id
WHERE b.quantity > 0 AND b.expiry_date <= $1
ORDER BY b.expiry_date ASC, b.id ASC`, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []ExpiringBatch{}
	for rows.Next() {
		var e ExpiringBatch
		b := &e.Batch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.BatchNumber, &b.Quantity, &b.ExpiryDate, &b.PurchasePrice,
			&b.SupplierID, &b.PurchaseOrderID, &b.StockTransferID, &b.Location, &b.CreatedAt, &b.UpdatedAt, &e.ProductName); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *Repository) StockSummary(ctx context.Context) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.sku, COALESCE(SUM(b.quantity), 0)::bigint, p.min_stock
FROM products p
LEFT JOIN inventory_batches b ON b.product_id = p.id
WHERE p.is_active
GROUP BY p.id, p.name, p.sku, p.min_stock
ORDER BY p.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	levels := []StockLevel{}
	for rows.Next() {
		var lvl StockLevel
		if err := rows.Scan(&lvl.ProductID, &lvl.ProductName, &lvl.SKU, &lvl.Quantity, &lvl.MinStock); err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return levels, rows.Err()
}

func (r *Repository) ProductExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}
