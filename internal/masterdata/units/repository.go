package units

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

const columns = `id, value, label, is_active, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Unit, int, error)
	Get(ctx context.Context, id int64) (Unit, error)
	Create(ctx context.Context, unit Unit) (Unit, error)
	Update(ctx context.Context, unit Unit) (Unit, error)
	Delete(ctx context.Context, id int64) error
	// InUse reports whether any product is measured in the unit.
	InUse(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Unit, int, error) {
	var where shared.Where
	where.Search(filters.Search, "value", "label")
	where.Active(filters.IsActive)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM units`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := where.Paged(filters)
	order := shared.OrderBy(filters, map[string]string{"value": "value", "label": "label"}, "label")
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM units`+where.SQL()+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var units []Unit
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		units = append(units, u)
	}
	return units, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Unit, error) {
	u, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM units WHERE id=$1`, id))
	return u, shared.MapWriteError(err, "unit")
}

func (r *repository) Create(ctx context.Context, u Unit) (Unit, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO units (value, label, is_active, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW()) RETURNING `+columns, u.Value, u.Label, u.IsActive))
	return created, shared.MapWriteError(err, "unit")
}

func (r *repository) Update(ctx context.Context, u Unit) (Unit, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE units SET value=$2, label=$3, is_active=$4, updated_at=NOW()
WHERE id=$1 RETURNING `+columns, u.ID, u.Value, u.Label, u.IsActive))
	return updated, shared.MapWriteError(err, "unit")
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id=$1`, id)
	if err != nil {
		return shared.MapDeleteError(err, "unit")
	}
	if tag.RowsAffected() == 0 {
		return shared.MapWriteError(pgx.ErrNoRows, "unit")
	}
	return nil
}

func (r *repository) InUse(ctx context.Context, id int64) (bool, error) {
	var used bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM products p JOIN units u ON u.value = p.unit WHERE u.id=$1)`, id).Scan(&used)
	return used, err
}

func scan(row pgx.Row) (Unit, error) {
	var u Unit
	err := row.Scan(&u.ID, &u.Value, &u.Label, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
