package employees

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
	internalShared "github.com/pharmadist/pharmadist/internal/shared"
)

type memoryRepo struct {
	rows   map[int64]Employee
	nextID int64
}

func (m *memoryRepo) List(_ context.Context, _ shared.ListFilters) ([]Employee, int, error) {
	out := make([]Employee, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Employee, error) {
	e, ok := m.rows[id]
	if !ok {
		return Employee{}, internalShared.ErrNotFound
	}
	return e, nil
}

func (m *memoryRepo) GetByCode(_ context.Context, code string) (Employee, error) {
	for _, e := range m.rows {
		if e.Code == code {
			return e, nil
		}
	}
	return Employee{}, internalShared.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, e Employee) (Employee, error) {
	for _, existing := range m.rows {
		if existing.Code == e.Code {
			return Employee{}, internalShared.ErrDuplicate
		}
	}
	m.nextID++
	e.ID = m.nextID
	m.rows[e.ID] = e
	return e, nil
}

func (m *memoryRepo) Update(_ context.Context, e Employee) (Employee, error) {
	current, ok := m.rows[e.ID]
	if !ok {
		return Employee{}, internalShared.ErrNotFound
	}
	if e.passwordHash == "" {
		e.passwordHash = current.passwordHash
		e.HasPassword = current.HasPassword
	}
	m.rows[e.ID] = e
	return e, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func newService() (*Service, *memoryRepo) {
	repo := &memoryRepo{rows: map[int64]Employee{}}
	svc := NewService(repo)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestCreateHashesPassword(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	e, err := svc.Create(ctx, Input{Code: " apt-01 ", Name: "Rina", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "APT-01", e.Code)
	assert.True(t, e.HasPassword)
	assert.NotEqual(t, "s3cret-pass", repo.rows[e.ID].passwordHash)

	verified, err := svc.VerifyPassword(ctx, "apt-01", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, e.ID, verified.ID)

	_, err = svc.VerifyPassword(ctx, "APT-01", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.VerifyPassword(ctx, "NOBODY", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateWithoutPasswordKeepsHash(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	e, err := svc.Create(ctx, Input{Code: "E1", Name: "Budi", Password: "first-pass"})
	require.NoError(t, err)
	hash := repo.rows[e.ID].passwordHash

	_, err = svc.Update(ctx, e.ID, Input{Code: "E1", Name: "Budi S", Position: "Warehouse"})
	require.NoError(t, err)
	assert.Equal(t, hash, repo.rows[e.ID].passwordHash)

	inactive := false
	_, err = svc.Update(ctx, e.ID, Input{Code: "E1", Name: "Budi S", IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.VerifyPassword(ctx, "E1", "first-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEmployeeWithoutPasswordCannotVerify(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), Input{Code: "E2", Name: "Sari"})
	require.NoError(t, err)
	_, err = svc.VerifyPassword(context.Background(), "E2", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidation(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), Input{Code: "", Name: ""})
	require.ErrorIs(t, err, internalShared.ErrValidation)
	assert.Contains(t, err.Error(), "employee code is required")
	assert.Contains(t, err.Error(), "employee name is required")

	_, err = svc.Create(context.Background(), Input{Code: "E3", Name: "Dewi", Password: "short"})
	require.ErrorIs(t, err, internalShared.ErrValidation)
}
