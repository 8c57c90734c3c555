package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/platform/db"
	"github.com/pharmadist/pharmadist/internal/sequence"
)

const orderColumns = `id, order_number, supplier_id, status, total_amount, notes, order_date, expected_date, created_at, updated_at`

const itemColumns = `id, purchase_order_id, product_id, quantity, unit_price, received_quantity, batch_number, expiry_date`

// Repository persists purchase orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx     pgx.Tx
	ledger *inventory.TxLedger
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("procurement repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, ledger: inventory.NewTxLedger(tx)})
	})
}

func (r *Repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return getOrder(ctx, r.pool, id, false)
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]PurchaseOrder, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	var status any
	if f.Status != "" {
		status = string(f.Status)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM purchase_orders
WHERE ($1::bigint IS NULL OR supplier_id = $1) AND ($2::text IS NULL OR status = $2)
ORDER BY order_date DESC, id DESC
LIMIT $3 OFFSET $4`, f.SupplierID, status, limit, max(f.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []PurchaseOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (t *txRepository) Ledger() inventory.Ledger {
	return t.ledger
}

func (t *txRepository) NextNumber(ctx context.Context, at time.Time) (string, error) {
	seq, err := sequence.Next(ctx, t.tx, sequence.PurchaseOrder, at)
	if err != nil {
		return "", err
	}
	return sequence.Format("PO", at, seq), nil
}

func (t *txRepository) SupplierExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (t *txRepository) ProductExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (t *txRepository) InsertOrder(ctx context.Context, o PurchaseOrder) (PurchaseOrder, error) {
	row := t.tx.QueryRow(ctx, `INSERT INTO purchase_orders (order_number, supplier_id, status, total_amount, notes, order_date, expected_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
RETURNING `+orderColumns, o.OrderNumber, o.SupplierID, string(o.Status), o.TotalAmount, o.Notes, o.OrderDate, o.ExpectedDate)
	created, err := scanOrder(row)
	if err != nil {
		return PurchaseOrder{}, fmt.Errorf("procurement: insert order: %w", err)
	}
	return created, nil
}

func (t *txRepository) UpdateOrder(ctx context.Context, o PurchaseOrder) error {
	_, err := t.tx.Exec(ctx, `UPDATE purchase_orders SET supplier_id=$2, status=$3, total_amount=$4, notes=$5, expected_date=$6, updated_at=NOW() WHERE id=$1`,
		o.ID, o.SupplierID, string(o.Status), o.TotalAmount, o.Notes, o.ExpectedDate)
	return err
}

func (t *txRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	_, err := t.tx.Exec(ctx, `UPDATE purchase_orders SET status=$2, updated_at=NOW() WHERE id=$1`, id, string(status))
	return err
}

func (t *txRepository) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM purchase_orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (t *txRepository) ReplaceItems(ctx context.Context, orderID int64, items []Item) ([]Item, error) {
	if _, err := t.tx.Exec(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id=$1`, orderID); err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		row := t.tx.QueryRow(ctx, `INSERT INTO purchase_order_items (purchase_order_id, product_id, quantity, unit_price, received_quantity, batch_number, expiry_date)
VALUES ($1,$2,$3,$4,0,'',NULL)
RETURNING `+itemColumns, orderID, it.ProductID, it.Quantity, it.UnitPrice)
		created, err := scanItem(row)
		if err != nil {
			return nil, fmt.Errorf("procurement: insert item: %w", err)
		}
		out = append(out, created)
	}
	return out, nil
}

func (t *txRepository) UpdateReceived(ctx context.Context, it Item) error {
	_, err := t.tx.Exec(ctx, `UPDATE purchase_order_items SET received_quantity=$2, batch_number=$3, expiry_date=$4 WHERE id=$1`,
		it.ID, it.ReceivedQuantity, it.BatchNumber, it.ExpiryDate)
	return err
}

func (t *txRepository) GetForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	return getOrder(ctx, t.tx, id, true)
}

func getOrder(ctx context.Context, q db.Querier, id int64, lock bool) (PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id=$1`
	if lock {
		query += ` FOR UPDATE`
	}
	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, ErrOrderNotFound
		}
		return PurchaseOrder{}, err
	}
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM purchase_order_items WHERE purchase_order_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return PurchaseOrder{}, err
		}
		order.Items = append(order.Items, it)
	}
	return order, rows.Err()
}

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var o PurchaseOrder
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.SupplierID, &status, &o.TotalAmount, &o.Notes, &o.OrderDate, &o.ExpectedDate, &o.CreatedAt, &o.UpdatedAt)
	o.Status = Status(status)
	return o, err
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.ReceivedQuantity, &it.BatchNumber, &it.ExpiryDate)
	return it, err
}
