package sales

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

const orderColumns = `id, order_number, customer_id, salesman_id, status, total_amount, discount_amount, notes, order_date, created_at, updated_at`

const itemColumns = `id, sales_order_id, product_id, quantity, base_unit_price, unit_price, discount_percent, discount_amount, applied_discounts, fulfilled_quantity`

// Repository persists sales orders in PostgreSQL.
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
		return errors.New("sales repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, ledger: inventory.NewTxLedger(tx)})
	})
}

func (r *Repository) Get(ctx context.Context, id int64) (SalesOrder, error) {
	return getOrder(ctx, r.pool, id, false)
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]SalesOrder, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	var status any
	if f.Status != "" {
		status = string(f.Status)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM sales_orders
WHERE ($1::bigint IS NULL OR customer_id = $1)
AND ($2::bigint IS NULL OR salesman_id = $2)
AND ($3::text IS NULL OR status = $3)
ORDER BY order_date DESC, id DESC
LIMIT $4 OFFSET $5`, f.CustomerID, f.SalesmanID, status, limit, max(f.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []SalesOrder{}
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
	seq, err := sequence.Next(ctx, t.tx, sequence.SalesOrder, at)
	if err != nil {
		return "", err
	}
	return sequence.Format("SO", at, seq), nil
}

func (t *txRepository) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (t *txRepository) SalesmanExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salesmen WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (t *txRepository) Products(ctx context.Context, ids []int64) (map[int64]ProductRef, error) {
	rows, err := t.tx.Query(ctx, `SELECT id, name, sale_price FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]ProductRef, len(ids))
	for rows.Next() {
		var p ProductRef
		if err := rows.Scan(&p.ID, &p.Name, &p.SalePrice); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (t *txRepository) InsertOrder(ctx context.Context, o SalesOrder) (SalesOrder, error) {
	row := t.tx.QueryRow(ctx, `INSERT INTO sales_orders (order_number, customer_id, salesman_id, status, total_amount, discount_amount, notes, order_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
RETURNING `+orderColumns, o.OrderNumber, o.CustomerID, o.SalesmanID, string(o.Status), o.TotalAmount, o.DiscountAmount, o.Notes, o.OrderDate)
	created, err := scanOrder(row)
	if err != nil {
		return SalesOrder{}, fmt.Errorf("sales: insert order: %w", err)
	}
	return created, nil
}

func (t *txRepository) UpdateOrder(ctx context.Context, o SalesOrder) error {
	_, err := t.tx.Exec(ctx, `UPDATE sales_orders SET customer_id=$2, salesman_id=$3, status=$4, total_amount=$5, discount_amount=$6, notes=$7, updated_at=NOW() WHERE id=$1`,
		o.ID, o.CustomerID, o.SalesmanID, string(o.Status), o.TotalAmount, o.DiscountAmount, o.Notes)
	return err
}

func (t *txRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	_, err := t.tx.Exec(ctx, `UPDATE sales_orders SET status=$2, updated_at=NOW() WHERE id=$1`, id, string(status))
	return err
}

func (t *txRepository) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM sales_orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (t *txRepository) ReplaceItems(ctx context.Context, orderID int64, items []Item) ([]Item, error) {
	if _, err := t.tx.Exec(ctx, `DELETE FROM sales_order_items WHERE sales_order_id=$1`, orderID); err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		labels := it.AppliedDiscounts
		if labels == nil {
			labels = []string{}
		}
		row := t.tx.QueryRow(ctx, `INSERT INTO sales_order_items (sales_order_id, product_id, quantity, base_unit_price, unit_price, discount_percent, discount_amount, applied_discounts, fulfilled_quantity)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0)
RETURNING `+itemColumns, orderID, it.ProductID, it.Quantity, it.BaseUnitPrice, it.UnitPrice, it.DiscountPercent, it.DiscountAmount, labels)
		created, err := scanItem(row)
		if err != nil {
			return nil, fmt.Errorf("sales: insert item: %w", err)
		}
		out = append(out, created)
	}
	return out, nil
}

func (t *txRepository) UpdateFulfilled(ctx context.Context, it Item) error {
	_, err := t.tx.Exec(ctx, `UPDATE sales_order_items SET fulfilled_quantity=$2 WHERE id=$1`, it.ID, it.FulfilledQuantity)
	return err
}

func (t *txRepository) GetForUpdate(ctx context.Context, id int64) (SalesOrder, error) {
	return getOrder(ctx, t.tx, id, true)
}

func getOrder(ctx context.Context, q db.Querier, id int64, lock bool) (SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE id=$1`
	if lock {
		query += ` FOR UPDATE`
	}
	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SalesOrder{}, ErrOrderNotFound
		}
		return SalesOrder{}, err
	}
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM sales_order_items WHERE sales_order_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return SalesOrder{}, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return SalesOrder{}, err
		}
		order.Items = append(order.Items, it)
	}
	return order, rows.Err()
}

func scanOrder(row pgx.Row) (SalesOrder, error) {
	var o SalesOrder
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.SalesmanID, &status, &o.TotalAmount, &o.DiscountAmount, &o.Notes, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt)
	o.Status = Status(status)
	return o, err
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.SalesOrderID, &it.ProductID, &it.Quantity, &it.BaseUnitPrice, &it.UnitPrice,
		&it.DiscountPercent, &it.DiscountAmount, &it.AppliedDiscounts, &it.FulfilledQuantity)
	return it, err
}
