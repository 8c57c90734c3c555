package units

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
	internalShared "github.com/pharmadist/pharmadist/internal/shared"
)

type memoryRepo struct {
	rows map[int64]Unit
	used map[int64]bool
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Unit, int, error) {
	return nil, 0, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Unit, error) {
	u, ok := m.rows[id]
	if !ok {
		return Unit{}, internalShared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) Create(_ context.Context, u Unit) (Unit, error) {
	u.ID = int64(len(m.rows) + 1)
	m.rows[u.ID] = u
	return u, nil
}

func (m *memoryRepo) Update(_ context.Context, u Unit) (Unit, error) {
	m.rows[u.ID] = u
	return u, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func (m *memoryRepo) InUse(_ context.Context, id int64) (bool, error) {
	return m.used[id], nil
}

func TestUnitInUseGuards(t *testing.T) {
	repo := &memoryRepo{rows: map[int64]Unit{}, used: map[int64]bool{}}
	svc := NewService(repo)
	ctx := context.Background()

	box, err := svc.Create(ctx, Input{Value: " BOX", Label: "Box"})
	require.NoError(t, err)
	assert.Equal(t, "box", box.Value)
	repo.used[box.ID] = true

	_, err = svc.Update(ctx, box.ID, Input{Value: "carton", Label: "Carton"})
	require.ErrorIs(t, err, internalShared.ErrInUse)

	relabelled, err := svc.Update(ctx, box.ID, Input{Value: "box", Label: "Box of 10"})
	require.NoError(t, err)
	assert.Equal(t, "Box of 10", relabelled.Label)

	require.ErrorIs(t, svc.Delete(ctx, box.ID), internalShared.ErrInUse)
	repo.used[box.ID] = false
	require.NoError(t, svc.Delete(ctx, box.ID))
}
