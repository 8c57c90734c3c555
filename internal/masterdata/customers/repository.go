package customers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

const columns = `id, code, name, customer_type, phone, email, address, is_active, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, v Customer) (Customer, error)
	Update(ctx context.Context, v Customer) (Customer, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	var where shared.Where
	where.Search(filters.Search, "code", "name", "email")
	where.Active(filters.IsActive)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := where.Paged(filters)
	order := shared.OrderBy(filters, map[string]string{"code": "code", "name": "name", "created": "created_at"}, "name")
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM customers`+where.SQL()+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Customer, error) {
	v, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM customers WHERE id=$1`, id))
	return v, shared.MapWriteError(err, "customer")
}

func (r *repository) Create(ctx context.Context, v Customer) (Customer, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO customers (code, name, customer_type, phone, email, address, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW()) RETURNING `+columns, v.Code, v.Name, v.CustomerType, v.Phone, v.Email, v.Address, v.IsActive))
	return created, shared.MapWriteError(err, "customer")
}

func (r *repository) Update(ctx context.Context, v Customer) (Customer, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE customers SET code=$2, name=$3, customer_type=$4, phone=$5, email=$6, address=$7, is_active=$8, updated_at=NOW()
WHERE id=$1 RETURNING `+columns, v.ID, v.Code, v.Name, v.CustomerType, v.Phone, v.Email, v.Address, v.IsActive))
	return updated, shared.MapWriteError(err, "customer")
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return shared.MapDeleteError(err, "customer")
	}
	if tag.RowsAffected() == 0 {
		return shared.MapWriteError(pgx.ErrNoRows, "customer")
	}
	return nil
}

func scan(row pgx.Row) (Customer, error) {
	var v Customer
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.CustomerType, &v.Phone, &v.Email, &v.Address, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}
