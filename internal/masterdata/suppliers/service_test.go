package suppliers

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

type memoryRepo struct {
	rows           map[int64]Supplier
	purchaseOrders map[int64]bool
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Supplier, int, error) {
	return nil, 0, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Supplier, error) {
	s, ok := m.rows[id]
	if !ok {
		return Supplier{}, shared.MapWriteError(pgx.ErrNoRows, "supplier")
	}
	return s, nil
}

func (m *memoryRepo) Create(_ context.Context, s Supplier) (Supplier, error) {
	for _, existing := range m.rows {
		if existing.Code == s.Code {
			return Supplier{}, shared.MapWriteError(&pgconn.PgError{Code: "23505"}, "supplier")
		}
	}
	s.ID = int64(len(m.rows) + 1)
	m.rows[s.ID] = s
	return s, nil
}

func (m *memoryRepo) Update(_ context.Context, s Supplier) (Supplier, error) {
	m.rows[s.ID] = s
	return s, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if m.purchaseOrders[id] {
		return shared.MapDeleteError(&pgconn.PgError{Code: "23503", TableName: "purchase_orders"}, "supplier")
	}
	delete(m.rows, id)
	return nil
}

func TestSupplierGuards(t *testing.T) {
	repo := &memoryRepo{rows: map[int64]Supplier{}, purchaseOrders: map[int64]bool{}}
	svc := NewService(repo)
	ctx := context.Background()

	kf, err := svc.Create(ctx, Input{Code: "kf", Name: " Kimia Farma ", Contact: "Budi"})
	require.NoError(t, err)
	assert.Equal(t, "KF", kf.Code)
	assert.Equal(t, "Kimia Farma", kf.Name)

	_, err = svc.Create(ctx, Input{Code: "KF ", Name: "Duplicate"})
	require.ErrorIs(t, err, internalShared.ErrDuplicate)
	assert.Len(t, repo.rows, 1)

	repo.purchaseOrders[kf.ID] = true
	require.ErrorIs(t, svc.Delete(ctx, kf.ID), internalShared.ErrInUse)
	_, err = svc.Get(ctx, kf.ID)
	require.NoError(t, err)

	repo.purchaseOrders[kf.ID] = false
	require.NoError(t, svc.Delete(ctx, kf.ID))
	_, err = svc.Get(ctx, kf.ID)
	require.ErrorIs(t, err, internalShared.ErrNotFound)
}
