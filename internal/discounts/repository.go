package discounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadist/pharmadist/internal/platform/db"
	"github.com/pharmadist/pharmadist/internal/shared"
)

// ErrRuleNotFound is returned when a rule id matches nothing.
var ErrRuleNotFound = fmt.Errorf("discount rule %w", shared.ErrNotFound)

const ruleColumns = `id, name, discount_type, customer_id, product_id, salesman_id, discount_percent, created_by_staff, is_active, created_at, updated_at`

// Repository persists discount rules in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListActiveBySalesman(ctx context.Context, salesmanID int64) ([]Rule, error) {
	return r.List(ctx, RuleFilter{SalesmanID: &salesmanID, IsActive: ptr(true)})
}

func (r *Repository) List(ctx context.Context, f RuleFilter) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ruleColumns+` FROM discount_rules
WHERE ($1::bigint IS NULL OR salesman_id = $1)
AND ($2::bigint IS NULL OR customer_id = $2)
AND ($3::bigint IS NULL OR product_id = $3)
AND ($4::boolean IS NULL OR is_active = $4)
ORDER BY id ASC`, f.SalesmanID, f.CustomerID, f.ProductID, f.IsActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rules := []Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (Rule, error) {
	return scanRuleOrNotFound(r.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM discount_rules WHERE id=$1`, id))
}

func (r *Repository) Create(ctx context.Context, rule Rule) (Rule, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO discount_rules (name, discount_type, customer_id, product_id, salesman_id, discount_percent, created_by_staff, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
RETURNING `+ruleColumns, rule.Name, string(rule.DiscountType), rule.CustomerID, rule.ProductID, rule.SalesmanID, rule.DiscountPercent, rule.CreatedByStaff, rule.IsActive)
	created, err := scanRule(row)
	if err != nil {
		return Rule{}, mapWriteError(err)
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, rule Rule) (Rule, error) {
	row := r.pool.QueryRow(ctx, `UPDATE discount_rules SET name=$2, discount_type=$3, customer_id=$4, product_id=$5, salesman_id=$6, discount_percent=$7, created_by_staff=$8, is_active=$9, updated_at=NOW()
WHERE id=$1
RETURNING `+ruleColumns, rule.ID, rule.Name, string(rule.DiscountType), rule.CustomerID, rule.ProductID, rule.SalesmanID, rule.DiscountPercent, rule.CreatedByStaff, rule.IsActive)
	updated, err := scanRuleOrNotFound(row)
	if err != nil {
		return Rule{}, mapWriteError(err)
	}
	return updated, nil
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) (Rule, error) {
	return scanRuleOrNotFound(r.pool.QueryRow(ctx, `UPDATE discount_rules SET is_active=$2, updated_at=NOW() WHERE id=$1 RETURNING `+ruleColumns, id, active))
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discount_rules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *Repository) SalesmanExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salesmen WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func scanRule(row pgx.Row) (Rule, error) {
	var rule Rule
	var typ string
	err := row.Scan(&rule.ID, &rule.Name, &typ, &rule.CustomerID, &rule.ProductID, &rule.SalesmanID,
		&rule.DiscountPercent, &rule.CreatedByStaff, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	rule.DiscountType = Type(typ)
	return rule, err
}

func scanRuleOrNotFound(row pgx.Row) (Rule, error) {
	rule, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrRuleNotFound
	}
	return rule, err
}

func mapWriteError(err error) error {
	switch {
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("discount rule references a missing customer, product or salesman: %w", shared.ErrNotFound)
	case db.IsCheckViolation(err):
		return fmt.Errorf("%w: discount percent out of range", shared.ErrValidation)
	}
	return err
}

func ptr[T any](v T) *T { return &v }
