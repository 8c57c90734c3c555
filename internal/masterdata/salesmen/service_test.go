package salesmen

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
	internalShared "github.com/pharmadist/pharmadist/internal/shared"
)

// memoryRepo tracks which tables still point at a salesman.
type memoryRepo struct {
	rows       map[int64]Salesman
	referenced map[int64][]string
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Salesman, int, error) {
	return nil, 0, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Salesman, error) {
	s, ok := m.rows[id]
	if !ok {
		return Salesman{}, shared.MapWriteError(pgx.ErrNoRows, "salesman")
	}
	return s, nil
}

func (m *memoryRepo) Create(_ context.Context, s Salesman) (Salesman, error) {
	for _, existing := range m.rows {
		if existing.Code == s.Code {
			return Salesman{}, shared.MapWriteError(&pgconn.PgError{Code: "23505"}, "salesman")
		}
	}
	s.ID = int64(len(m.rows) + 1)
	m.rows[s.ID] = s
	return s, nil
}

func (m *memoryRepo) Update(_ context.Context, s Salesman) (Salesman, error) {
	m.rows[s.ID] = s
	return s, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if tables := m.referenced[id]; len(tables) > 0 {
		return shared.MapDeleteError(&pgconn.PgError{Code: "23503", TableName: tables[0]}, "salesman")
	}
	delete(m.rows, id)
	return nil
}

func TestDuplicateSalesmanCode(t *testing.T) {
	repo := &memoryRepo{rows: map[int64]Salesman{}, referenced: map[int64][]string{}}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Code: "sm-01", Name: "Andi"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Code: " SM-01", Name: "Andi Again"})
	require.ErrorIs(t, err, internalShared.ErrDuplicate)
}

func TestDeleteBlockedByOrdersOrDiscountRules(t *testing.T) {
	for _, table := range []string{"sales_orders", "discount_rules"} {
		t.Run(table, func(t *testing.T) {
			repo := &memoryRepo{rows: map[int64]Salesman{}, referenced: map[int64][]string{}}
			svc := NewService(repo)
			ctx := context.Background()

			s, err := svc.Create(ctx, Input{Code: "SM-02", Name: "Sari"})
			require.NoError(t, err)
			repo.referenced[s.ID] = []string{table}

			require.ErrorIs(t, svc.Delete(ctx, s.ID), internalShared.ErrInUse)
			kept, err := svc.Get(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, "Sari", kept.Name)

			delete(repo.referenced, s.ID)
			require.NoError(t, svc.Delete(ctx, s.ID))
		})
	}
}
