package transfers

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

const transferColumns = `id, transfer_number, transfer_type, status, partner_id, partner_type, purchase_order_id, sales_order_id, notes, transfer_date, confirmed_at, created_at, updated_at`

const itemColumns = `id, stock_transfer_id, product_id, inventory_batch_id, batch_number, quantity, unit_price, expiry_date, reason`

// Repository persists stock transfers in PostgreSQL.
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
		return errors.New("transfers repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, ledger: inventory.NewTxLedger(tx)})
	})
}

func (r *Repository) Get(ctx context.Context, id int64) (StockTransfer, error) {
	return getTransfer(ctx, r.pool, id, false)
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]StockTransfer, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	var transferType, status any
	if f.TransferType != "" {
		transferType = string(f.TransferType)
	}
	if f.Status != "" {
		status = string(f.Status)
	}
	rows, err := r.pool.Query(ctx, `SELECT `+transferColumns+` FROM stock_transfers
WHERE ($1::text IS NULL OR transfer_type = $1) AND ($2::text IS NULL OR status = $2)
ORDER BY transfer_date DESC, id DESC
LIMIT $3 OFFSET $4`, transferType, status, limit, max(f.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	transfers := []StockTransfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (t *txRepository) Ledger() inventory.Ledger {
	return t.ledger
}

func (t *txRepository) NextNumber(ctx context.Context, kind Type, at time.Time) (string, error) {
	seq, err := sequence.Next(ctx, t.tx, sequence.StockTransfer+":"+string(kind), at)
	if err != nil {
		return "", err
	}
	return sequence.Format(kind.Prefix(), at, seq), nil
}

func (t *txRepository) ProductExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (t *txRepository) PartnerExists(ctx context.Context, partnerType PartnerType, id int64) (bool, error) {
	var query string
	switch partnerType {
	case PartnerSupplier:
		query = `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id=$1)`
	case PartnerCustomer:
		query = `SELECT EXISTS (SELECT 1 FROM customers WHERE id=$1)`
	default:
		return false, fmt.Errorf("transfers: unknown partner type %q", partnerType)
	}
	var ok bool
	err := t.tx.QueryRow(ctx, query, id).Scan(&ok)
	return ok, err
}

func (t *txRepository) InsertTransfer(ctx context.Context, st StockTransfer) (StockTransfer, error) {
	row := t.tx.QueryRow(ctx, `INSERT INTO stock_transfers (transfer_number, transfer_type, status, partner_id, partner_type, purchase_order_id, sales_order_id, notes, transfer_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
RETURNING `+transferColumns, st.TransferNumber, string(st.TransferType), string(st.Status), st.PartnerID, partnerColumn(st.PartnerType),
		st.PurchaseOrderID, st.SalesOrderID, st.Notes, st.TransferDate)
	created, err := scanTransfer(row)
	if err != nil {
		return StockTransfer{}, fmt.Errorf("transfers: insert transfer: %w", err)
	}
	return created, nil
}

func (t *txRepository) UpdateTransfer(ctx context.Context, st StockTransfer) error {
	_, err := t.tx.Exec(ctx, `UPDATE stock_transfers SET partner_id=$2, partner_type=$3, purchase_order_id=$4, sales_order_id=$5, notes=$6, transfer_date=$7, updated_at=NOW() WHERE id=$1`,
		st.ID, st.PartnerID, partnerColumn(st.PartnerType), st.PurchaseOrderID, st.SalesOrderID, st.Notes, st.TransferDate)
	return err
}

func (t *txRepository) UpdateStatus(ctx context.Context, id int64, status Status, confirmedAt *time.Time) error {
	_, err := t.tx.Exec(ctx, `UPDATE stock_transfers SET status=$2, confirmed_at=COALESCE($3, confirmed_at), updated_at=NOW() WHERE id=$1`,
		id, string(status), confirmedAt)
	return err
}

func (t *txRepository) DeleteTransfer(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM stock_transfers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

func (t *txRepository) ReplaceItems(ctx context.Context, transferID int64, items []Item) ([]Item, error) {
	if _, err := t.tx.Exec(ctx, `DELETE FROM stock_transfer_items WHERE stock_transfer_id=$1`, transferID); err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		row := t.tx.QueryRow(ctx, `INSERT INTO stock_transfer_items (stock_transfer_id, product_id, inventory_batch_id, batch_number, quantity, unit_price, expiry_date, reason)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING `+itemColumns, transferID, it.ProductID, it.InventoryBatchID, it.BatchNumber, it.Quantity, it.UnitPrice, it.ExpiryDate, it.Reason)
		created, err := scanItem(row)
		if err != nil {
			return nil, fmt.Errorf("transfers: insert item: %w", err)
		}
		out = append(out, created)
	}
	return out, nil
}

func (t *txRepository) GetForUpdate(ctx context.Context, id int64) (StockTransfer, error) {
	return getTransfer(ctx, t.tx, id, true)
}

func getTransfer(ctx context.Context, q db.Querier, id int64, lock bool) (StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE id=$1`
	if lock {
		query += ` FOR UPDATE`
	}
	transfer, err := scanTransfer(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockTransfer{}, ErrTransferNotFound
		}
		return StockTransfer{}, err
	}
	rows, err := q.Query(ctx, `SELECT `+itemColumns+` FROM stock_transfer_items WHERE stock_transfer_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return StockTransfer{}, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return StockTransfer{}, err
		}
		transfer.Items = append(transfer.Items, it)
	}
	return transfer, rows.Err()
}

func partnerColumn(p PartnerType) *string {
	if p == "" {
		return nil
	}
	s := string(p)
	return &s
}

func scanTransfer(row pgx.Row) (StockTransfer, error) {
	var (
		st           StockTransfer
		kind, status string
		partnerType  *string
	)
	err := row.Scan(&st.ID, &st.TransferNumber, &kind, &status, &st.PartnerID, &partnerType, &st.PurchaseOrderID, &st.SalesOrderID,
		&st.Notes, &st.TransferDate, &st.ConfirmedAt, &st.CreatedAt, &st.UpdatedAt)
	st.TransferType = Type(kind)
	st.Status = Status(status)
	if partnerType != nil {
		st.PartnerType = PartnerType(*partnerType)
	}
	return st, err
}

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.StockTransferID, &it.ProductID, &it.InventoryBatchID, &it.BatchNumber, &it.Quantity, &it.UnitPrice, &it.ExpiryDate, &it.Reason)
	return it, err
}
