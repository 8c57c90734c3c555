package employees

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

const columns = `id, code, name, position, phone, email, COALESCE(password_hash, ''), is_active, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Employee, int, error)
	Get(ctx context.Context, id int64) (Employee, error)
	GetByCode(ctx context.Context, code string) (Employee, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	// Update writes e. An empty password hash keeps the stored one.
	Update(ctx context.Context, e Employee) (Employee, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Employee, int, error) {
	var where shared.Where
	where.Search(filters.Search, "code", "name", "position")
	where.Active(filters.IsActive)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, args := where.Paged(filters)
	order := shared.OrderBy(filters, map[string]string{"code": "code", "name": "name", "position": "position"}, "name")
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM employees`+where.SQL()+order+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Employee, error) {
	e, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM employees WHERE id=$1`, id))
	return e, shared.MapWriteError(err, "employee")
}

func (r *repository) GetByCode(ctx context.Context, code string) (Employee, error) {
	e, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM employees WHERE code=$1`, code))
	return e, shared.MapWriteError(err, "employee")
}

func (r *repository) Create(ctx context.Context, e Employee) (Employee, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO employees (code, name, position, phone, email, password_hash, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,NOW(),NOW()) RETURNING `+columns,
		e.Code, e.Name, e.Position, e.Phone, e.Email, e.passwordHash, e.IsActive))
	return created, shared.MapWriteError(err, "employee")
}

func (r *repository) Update(ctx context.Context, e Employee) (Employee, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE employees SET code=$2, name=$3, position=$4, phone=$5, email=$6,
password_hash=COALESCE(NULLIF($7,''), password_hash), is_active=$8, updated_at=NOW()
WHERE id=$1 RETURNING `+columns,
		e.ID, e.Code, e.Name, e.Position, e.Phone, e.Email, e.passwordHash, e.IsActive))
	return updated, shared.MapWriteError(err, "employee")
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return shared.MapDeleteError(err, "employee")
	}
	if tag.RowsAffected() == 0 {
		return shared.MapWriteError(pgx.ErrNoRows, "employee")
	}
	return nil
}

func scan(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Position, &e.Phone, &e.Email, &e.passwordHash, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	e.HasPassword = e.passwordHash != ""
	return e, err
}
