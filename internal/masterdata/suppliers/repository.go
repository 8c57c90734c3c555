package suppliers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

const columns = `id, code, name, contact, phone, email, address, is_active, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, v Supplier) (Supplier, error)
	Update(ctx context.Context, v Supplier) (Supplier, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	var where shared.Where
	where.Search(filters.Search, "code", "name", "email")
	where.Active(filters.IsActive)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := where.Paged(filters)
	order := shared.OrderBy(filters, map[string]string{"code": "code", "name": "name", "created": "created_at"}, "name")
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM suppliers`+where.SQL()+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Supplier
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	v, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM suppliers WHERE id=$1`, id))
	return v, shared.MapWriteError(err, "supplier")
}

func (r *repository) Create(ctx context.Context, v Supplier) (Supplier, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO suppliers (code, name, contact, phone, email, address, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW()) RETURNING `+columns, v.Code, v.Name, v.Contact, v.Phone, v.Email, v.Address, v.IsActive))
	return created, shared.MapWriteError(err, "supplier")
}

func (r *repository) Update(ctx context.Context, v Supplier) (Supplier, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE suppliers SET code=$2, name=$3, contact=$4, phone=$5, email=$6, address=$7, is_active=$8, updated_at=NOW()
WHERE id=$1 RETURNING `+columns, v.ID, v.Code, v.Name, v.Contact, v.Phone, v.Email, v.Address, v.IsActive))
	return updated, shared.MapWriteError(err, "supplier")
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id=$1`, id)
	if err != nil {
		return shared.MapDeleteError(err, "supplier")
	}
	if tag.RowsAffected() == 0 {
		return shared.MapWriteError(pgx.ErrNoRows, "supplier")
	}
	return nil
}

func scan(row pgx.Row) (Supplier, error) {
	var v Supplier
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.Contact, &v.Phone, &v.Email, &v.Address, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}
