package products

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

const columns = `id, name, sku, category_id, unit, purchase_price, sale_price, min_stock, is_active, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
	UnitExists(ctx context.Context, value string) (bool, error)
	HasBatches(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	var where shared.Where
	where.Search(filters.Search, "name", "sku")
	where.Active(filters.IsActive)
	if filters.CategoryID != nil {
		where.Add("category_id = ?", *filters.CategoryID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := where.Paged(filters)
	order := shared.OrderBy(filters, map[string]string{
		"name": "name", "sku": "sku", "price": "sale_price", "created": "created_at",
	}, "name")
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM products`+where.SQL()+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id=$1`, id))
	return p, shared.MapWriteError(err, "product")
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO products (name, sku, category_id, unit, purchase_price, sale_price, min_stock, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW()) RETURNING `+columns,
		p.Name, p.SKU, p.CategoryID, p.Unit, p.PurchasePrice, p.SalePrice, p.MinStock, p.IsActive))
	return created, shared.MapWriteError(err, "product")
}

func (r *repository) Update(ctx context.Context, p Product) (Product, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE products SET name=$2, sku=$3, category_id=$4, unit=$5, purchase_price=$6, sale_price=$7, min_stock=$8, is_active=$9, updated_at=NOW()
WHERE id=$1 RETURNING `+columns,
		p.ID, p.Name, p.SKU, p.CategoryID, p.Unit, p.PurchasePrice, p.SalePrice, p.MinStock, p.IsActive))
	return updated, shared.MapWriteError(err, "product")
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return shared.MapDeleteError(err, "product")
	}
	if tag.RowsAffected() == 0 {
		return shared.MapWriteError(pgx.ErrNoRows, "product")
	}
	return nil
}

func (r *repository) UnitExists(ctx context.Context, value string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM units WHERE value=$1)`, value).Scan(&ok)
	return ok, err
}

func (r *repository) HasBatches(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_batches WHERE product_id=$1)`, id).Scan(&ok)
	return ok, err
}

func scan(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.CategoryID, &p.Unit, &p.PurchasePrice, &p.SalePrice, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
