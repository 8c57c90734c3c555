package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/inventory/inventorytest"
	"github.com/pharmadist/pharmadist/internal/shared"
)

type recordingObserver struct {
	changes []shared.LedgerChange
}

func (o *recordingObserver) LedgerChanged(_ context.Context, change shared.LedgerChange) {
	o.changes = append(o.changes, change)
}

func newService(t *testing.T) (*inventory.Service, *inventorytest.MemoryRepository, *shared.MemoryAudit, *recordingObserver) {
	t.Helper()
	repo := inventorytest.NewMemoryRepository(inventorytest.NewMemoryLedger())
	repo.Products[1] = inventorytest.Product{Name: "Paracetamol 500mg", SKU: "PCT-500", MinStock: 20}
	repo.Products[2] = inventorytest.Product{Name: "Amoxicillin 250mg", SKU: "AMX-250", MinStock: 5}
	audit := &shared.MemoryAudit{}
	obs := &recordingObserver{}
	svc := inventory.NewService(repo, audit, obs, inventory.ServiceConfig{ExpiryWarningDays: 90})
	return svc, repo, audit, obs
}

func TestCreateBatch(t *testing.T) {
	svc, repo, audit, obs := newService(t)
	ctx := shared.ContextWithActor(context.Background(), shared.Actor{ID: 7})

	batch, err := svc.CreateBatch(ctx, inventory.CreateBatchInput{
		ProductID:     1,
		BatchNumber:   " LOT-1 ",
		Quantity:      12,
		ExpiryDate:    date(2026, time.March, 1),
		PurchasePrice: decimal.RequireFromString("1500"),
	})
	require.NoError(t, err)
	assert.Equal(t, "LOT-1", batch.BatchNumber)
	assert.Equal(t, int64(12), repo.Total(1))

	require.Len(t, audit.Logs, 1)
	assert.Equal(t, int64(7), audit.Logs[0].ActorID)
	assert.Equal(t, "inventory.batch.create", audit.Logs[0].Action)
	require.Len(t, obs.changes, 1)
	assert.Equal(t, 1, obs.changes[0].BatchesCreated)
}

func TestCreateBatchValidation(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()
	exp := date(2026, time.March, 1)

	_, err := svc.CreateBatch(ctx, inventory.CreateBatchInput{ProductID: 1, Quantity: 1, ExpiryDate: exp})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateBatch(ctx, inventory.CreateBatchInput{ProductID: 1, BatchNumber: "L", Quantity: -1, ExpiryDate: exp})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateBatch(ctx, inventory.CreateBatchInput{ProductID: 1, BatchNumber: "L", Quantity: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateBatch(ctx, inventory.CreateBatchInput{ProductID: 99, BatchNumber: "L", Quantity: 1, ExpiryDate: exp})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateAndRemoveBatch(t *testing.T) {
	svc, repo, _, obs := newService(t)
	ctx := context.Background()
	b := repo.Seed(inventory.Batch{ProductID: 1, BatchNumber: "L1", Quantity: 10, ExpiryDate: date(2026, time.March, 1)})

	qty := int64(4)
	loc := "Rack A"
	updated, err := svc.UpdateBatch(ctx, b.ID, inventory.UpdateBatchInput{Quantity: &qty, Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.Quantity)
	assert.Equal(t, "Rack A", updated.Location)
	require.Len(t, obs.changes, 1)
	assert.Equal(t, int64(6), obs.changes[0].UnitsOut)

	neg := int64(-1)
	_, err = svc.UpdateBatch(ctx, b.ID, inventory.UpdateBatchInput{Quantity: &neg})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateBatch(ctx, 404, inventory.UpdateBatchInput{Location: &loc})
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, svc.RemoveBatch(ctx, b.ID))
	_, err = svc.GetBatch(ctx, b.ID)
	require.ErrorIs(t, err, inventory.ErrBatchNotFound)
}

func TestListExpiringUsesWarningWindow(t *testing.T) {
	svc, repo, _, _ := newService(t)
	now := time.Now().UTC()
	soon := repo.Seed(inventory.Batch{ProductID: 1, BatchNumber: "SOON", Quantity: 3, ExpiryDate: now.AddDate(0, 0, 30)})
	repo.Seed(inventory.Batch{ProductID: 1, BatchNumber: "LATER", Quantity: 3, ExpiryDate: now.AddDate(0, 0, 200)})
	repo.Seed(inventory.Batch{ProductID: 2, BatchNumber: "EMPTY", Quantity: 0, ExpiryDate: now.AddDate(0, 0, 10)})

	expiring, err := svc.ListExpiring(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, soon.ID, expiring[0].ID)
	assert.Equal(t, "Paracetamol 500mg", expiring[0].ProductName)
	assert.InDelta(t, 30, expiring[0].DaysLeft, 1)

	expiring, err = svc.ListExpiring(context.Background(), 365)
	require.NoError(t, err)
	assert.Len(t, expiring, 2)
}

func TestStockSummaryFlagsLowStock(t *testing.T) {
	svc, repo, _, _ := newService(t)
	repo.Seed(inventory.Batch{ProductID: 1, BatchNumber: "A", Quantity: 5, ExpiryDate: date(2026, time.March, 1)})
	repo.Seed(inventory.Batch{ProductID: 1, BatchNumber: "B", Quantity: 6, ExpiryDate: date(2026, time.April, 1)})
	repo.Seed(inventory.Batch{ProductID: 2, BatchNumber: "C", Quantity: 9, ExpiryDate: date(2026, time.April, 1)})

	levels, err := svc.StockSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 2)

	byID := map[int64]inventory.StockLevel{}
	for _, lvl := range levels {
		byID[lvl.ProductID] = lvl
	}
	assert.Equal(t, int64(11), byID[1].Quantity)
	assert.True(t, byID[1].Low)
	assert.Equal(t, int64(9), byID[2].Quantity)
	assert.False(t, byID[2].Low)
}
