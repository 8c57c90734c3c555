package salesmen

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

const columns = `id, code, name, phone, email, is_active, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Salesman, int, error)
	Get(ctx context.Context, id int64) (Salesman, error)
	Create(ctx context.Context, v Salesman) (Salesman, error)
	Update(ctx context.Context, v Salesman) (Salesman, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Salesman, int, error) {
	var where shared.Where
	where.Search(filters.Search, "code", "name", "email")
	where.Active(filters.IsActive)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM salesmen`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := where.Paged(filters)
	order := shared.OrderBy(filters, map[string]string{"code": "code", "name": "name", "created": "created_at"}, "name")
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM salesmen`+where.SQL()+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Salesman
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Salesman, error) {
	v, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM salesmen WHERE id=$1`, id))
	return v, shared.MapWriteError(err, "salesman")
}

func (r *repository) Create(ctx context.Context, v Salesman) (Salesman, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO salesmen (code, name, phone, email, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING `+columns, v.Code, v.Name, v.Phone, v.Email, v.IsActive))
	return created, shared.MapWriteError(err, "salesman")
}

func (r *repository) Update(ctx context.Context, v Salesman) (Salesman, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE salesmen SET code=$2, name=$3, phone=$4, email=$5, is_active=$6, updated_at=NOW()
WHERE id=$1 RETURNING `+columns, v.ID, v.Code, v.Name, v.Phone, v.Email, v.IsActive))
	return updated, shared.MapWriteError(err, "salesman")
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM salesmen WHERE id=$1`, id)
	if err != nil {
		return shared.MapDeleteError(err, "salesman")
	}
	if tag.RowsAffected() == 0 {
		return shared.MapWriteError(pgx.ErrNoRows, "salesman")
	}
	return nil
}

func scan(row pgx.Row) (Salesman, error) {
	var v Salesman
	err := row.Scan(&v.ID, &v.Code, &v.Name, &v.Phone, &v.Email, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}
