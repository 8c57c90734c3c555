package categories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

const columns = `id, name, description, is_active, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	var where shared.Where
	where.Search(filters.Search, "name", "description")
	where.Active(filters.IsActive)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := where.Paged(filters)
	order := shared.OrderBy(filters, map[string]string{"name": "name", "created": "created_at"}, "name")
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM categories`+where.SQL()+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var categories []Category
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	c, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id=$1`, id))
	return c, shared.MapWriteError(err, "category")
}

func (r *repository) Create(ctx context.Context, c Category) (Category, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO categories (name, description, is_active, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW()) RETURNING `+columns, c.Name, c.Description, c.IsActive))
	return created, shared.MapWriteError(err, "category")
}

func (r *repository) Update(ctx context.Context, c Category) (Category, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE categories SET name=$2, description=$3, is_active=$4, updated_at=NOW()
WHERE id=$1 RETURNING `+columns, c.ID, c.Name, c.Description, c.IsActive))
	return updated, shared.MapWriteError(err, "category")
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return shared.MapDeleteError(err, "category")
	}
	if tag.RowsAffected() == 0 {
		return shared.MapWriteError(pgx.ErrNoRows, "category")
	}
	return nil
}

func scan(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
