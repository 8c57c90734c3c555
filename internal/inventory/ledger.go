package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pharmadist/pharmadist/internal/platform/db"
	"github.com/pharmadist/pharmadist/internal/shared"
)

// Ledger is the set of batch primitives the order and transfer flows run
// inside their own transaction.
type Ledger interface {
	InsertBatch(ctx context.Context, batch NewBatch) (Batch, error)
	FindBatchForUpdate(ctx context.Context, productID int64, batchNumber string) (Batch, error)
	GetBatchForUpdate(ctx context.Context, id int64) (Batch, error)
	ListAvailableForUpdate(ctx context.Context, productID int64) ([]Batch, error)
	AdjustQuantity(ctx context.Context, id int64, delta int64) (Batch, error)
}

// TxRepository extends Ledger with the manual batch maintenance operations.
type TxRepository interface {
	Ledger
	UpdateBatch(ctx context.Context, id int64, upd BatchUpdate) (Batch, error)
	DeleteBatch(ctx context.Context, id int64) error
}

const batchColumns = `id, product_id, batch_number, quantity, expiry_date, purchase_price, supplier_id, purchase_order_id, stock_transfer_id, location, created_at, updated_at`

// TxLedger implements TxRepository against a pgx transaction or pool.
type TxLedger struct {
	q db.Querier
}

// NewTxLedger binds the ledger to q, normally the caller's pgx.Tx.
func NewTxLedger(q db.Querier) *TxLedger {
	return &TxLedger{q: q}
}

func (l *TxLedger) InsertBatch(ctx context.Context, b NewBatch) (Batch, error) {
	row := l.q.QueryRow(ctx, `INSERT INTO inventory_batches (product_id, batch_number, quantity, expiry_date, purchase_price, supplier_id, purchase_order_id, stock_transfer_id, location, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
RETURNING `+batchColumns, b.ProductID, b.BatchNumber, b.Quantity, b.ExpiryDate, b.PurchasePrice, b.SupplierID, b.PurchaseOrderID, b.StockTransferID, b.Location)
	batch, err := scanBatch(row)
	if err != nil {
		return Batch{}, fmt.Errorf("inventory: insert batch: %w", err)
	}
	return batch, nil
}

func (l *TxLedger) FindBatchForUpdate(ctx context.Context, productID int64, batchNumber string) (Batch, error) {
	row := l.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM inventory_batches
WHERE product_id=$1 AND batch_number=$2
ORDER BY id ASC LIMIT 1 FOR UPDATE`, productID, batchNumber)
	return scanBatchOrNotFound(row)
}

func (l *TxLedger) GetBatchForUpdate(ctx context.Context, id int64) (Batch, error) {
	row := l.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM inventory_batches WHERE id=$1 FOR UPDATE`, id)
	return scanBatchOrNotFound(row)
}

func (l *TxLedger) ListAvailableForUpdate(ctx context.Context, productID int64) ([]Batch, error) {
	rows, err := l.q.Query(ctx, `SELECT `+batchColumns+` FROM inventory_batches
WHERE product_id=$1 AND quantity > 0
ORDER BY expiry_date ASC, id ASC FOR UPDATE`, productID)
	if err != nil {
		return nil, err
	}
	return collectBatches(rows)
}

func (l *TxLedger) AdjustQuantity(ctx context.Context, id int64, delta int64) (Batch, error) {
	row := l.q.QueryRow(ctx, `UPDATE inventory_batches SET quantity = quantity + $2, updated_at = NOW()
WHERE id=$1 AND quantity + $2 >= 0
RETURNING `+batchColumns, id, delta)
	batch, err := scanBatch(row)
	if err == nil {
		return batch, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Batch{}, err
	}
	var exists bool
	if err := l.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_batches WHERE id=$1)`, id).Scan(&exists); err != nil {
		return Batch{}, err
	}
	if !exists {
		return Batch{}, ErrBatchNotFound
	}
	return Batch{}, ErrNegativeStock
}

func (l *TxLedger) UpdateBatch(ctx context.Context, id int64, upd BatchUpdate) (Batch, error) {
	row := l.q.QueryRow(ctx, `UPDATE inventory_batches SET
quantity = COALESCE($2, quantity),
expiry_date = COALESCE($3, expiry_date),
location = COALESCE($4, location),
updated_at = NOW()
WHERE id=$1
RETURNING `+batchColumns, id, upd.Quantity, upd.ExpiryDate, upd.Location)
	return scanBatchOrNotFound(row)
}

func (l *TxLedger) DeleteBatch(ctx context.Context, id int64) error {
	tag, err := l.q.Exec(ctx, `DELETE FROM inventory_batches WHERE id=$1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("inventory: batch %d referenced by transfer items: %w", id, shared.ErrInUse)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBatchNotFound
	}
	return nil
}

func scanBatch(row pgx.Row) (Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.ProductID, &b.BatchNumber, &b.Quantity, &b.ExpiryDate, &b.PurchasePrice,
		&b.SupplierID, &b.PurchaseOrderID, &b.StockTransferID, &b.Location, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func scanBatchOrNotFound(row pgx.Row) (Batch, error) {
	b, err := scanBatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Batch{}, ErrBatchNotFound
	}
	return b, err
}

func collectBatches(rows pgx.Rows) ([]Batch, error) {
	defer rows.Close()
	batches := []Batch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}
