package transfers

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/shared"
)

var may2025 = time.Date(2025, time.May, 14, 9, 0, 0, 0, time.UTC)

type recordingObserver struct {
	changes []shared.LedgerChange
}

func (o *recordingObserver) LedgerChanged(_ context.Context, change shared.LedgerChange) {
	o.changes = append(o.changes, change)
}

func newTestService() (*Service, *memoryRepo, *recordingObserver) {
	repo := newMemoryRepo()
	observer := &recordingObserver{}
	svc := NewService(repo, &shared.MemoryAudit{}, observer)
	svc.now = func() time.Time { return may2025 }
	return svc, repo, observer
}

func expiry(months int) *time.Time {
	t := may2025.AddDate(0, months, 0)
	return &t
}

func id64(v int64) *int64 { return &v }

func TestTransferNumbersUseTypePrefix(t *testing.T) {
	svc, repo, _ := newTestService()
	batch := repo.ledger.Seed(inventory.Batch{ProductID: 10, BatchNumber: "LOT1", Quantity: 50, ExpiryDate: *expiry(12)})
	ctx := context.Background()

	cases := []struct {
		kind Type
		want string
	}{
		{TypeImport, "PN202505-0001"},
		{TypeImportReturn, "PNH202505-0001"},
		{TypeExport, "PX202505-0001"},
		{TypeExportReturn, "PXT202505-0001"},
		{TypeExportGift, "PXTG202505-0001"},
		{TypeExportDestruction, "PXH202505-0001"},
		{TypeImport, "PN202505-0002"},
	}
	for _, tc := range cases {
		item := ItemInput{ProductID: 10, Quantity: 1, BatchNumber: "NEW", ExpiryDate: expiry(6)}
		if dir, _ := DirectionOf(tc.kind); !dir.Inbound() {
			item = ItemInput{ProductID: 10, Quantity: 1, InventoryBatchID: &batch.ID}
		}
		transfer, err := svc.Create(ctx, CreateInput{TransferType: tc.kind, Items: []ItemInput{item}})
		require.NoError(t, err)
		assert.Equal(t, tc.want, transfer.TransferNumber)
		assert.Equal(t, StatusDraft, transfer.Status)
	}
	assert.Equal(t, int64(50), repo.ledger.Total(10), "drafts never touch stock")
}

func TestConfirmImportMergesByBatchNumber(t *testing.T) {
	svc, repo, observer := newTestService()
	existing := repo.ledger.Seed(inventory.Batch{ProductID: 10, BatchNumber: "LOT1", Quantity: 5, ExpiryDate: *expiry(12)})
	ctx := context.Background()

	transfer, err := svc.Create(ctx, CreateInput{
		TransferType: TypeImport,
		PartnerType:  PartnerSupplier,
		PartnerID:    id64(1),
		Items: []ItemInput{
			{ProductID: 10, BatchNumber: "LOT1", Quantity: 10, ExpiryDate: expiry(12), UnitPrice: decimal.NewFromInt(700)},
			{ProductID: 10, BatchNumber: " LOT2 ", Quantity: 4, ExpiryDate: expiry(18), UnitPrice: decimal.NewFromInt(750)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "LOT2", transfer.Items[1].BatchNumber)

	confirmed, err := svc.Confirm(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	merged, _ := repo.ledger.Batch(existing.ID)
	assert.Equal(t, int64(15), merged.Quantity)

	batches := repo.ledger.All()
	require.Len(t, batches, 2)
	created := batches[1]
	assert.Equal(t, "LOT2", created.BatchNumber)
	assert.Equal(t, int64(4), created.Quantity)
	assert.True(t, created.PurchasePrice.Equal(decimal.NewFromInt(750)))
	require.NotNil(t, created.SupplierID)
	assert.Equal(t, int64(1), *created.SupplierID)
	require.NotNil(t, created.StockTransferID)
	assert.Equal(t, transfer.ID, *created.StockTransferID)

	require.Len(t, observer.changes, 1)
	assert.Equal(t, shared.LedgerChange{Flow: shared.FlowTransferIn, BatchesCreated: 1, UnitsIn: 14}, observer.changes[0])

	_, err = svc.Confirm(ctx, transfer.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestConfirmImportReturnFromCustomerDoesNotTagSupplier(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	transfer, err := svc.Create(ctx, CreateInput{
		TransferType: TypeImportReturn,
		PartnerType:  PartnerCustomer,
		PartnerID:    id64(2),
		Items:        []ItemInput{{ProductID: 11, BatchNumber: "R1", Quantity: 3, ExpiryDate: expiry(3)}},
	})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, transfer.ID)
	require.NoError(t, err)

	batches := repo.ledger.All()
	require.Len(t, batches, 1)
	assert.Nil(t, batches[0].SupplierID)
}

func TestConfirmExportDecrementsSelectedBatch(t *testing.T) {
	svc, repo, observer := newTestService()
	batch := repo.ledger.Seed(inventory.Batch{ProductID: 10, BatchNumber: "LOT9", Quantity: 8, ExpiryDate: *expiry(2)})
	ctx := context.Background()

	transfer, err := svc.Create(ctx, CreateInput{
		TransferType: TypeExportDestruction,
		Items:        []ItemInput{{ProductID: 10, InventoryBatchID: &batch.ID, Quantity: 6, Reason: "damaged"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "LOT9", transfer.Items[0].BatchNumber)
	assert.Equal(t, batch.ExpiryDate, transfer.Items[0].ExpiryDate)

	_, err = svc.Confirm(ctx, transfer.ID)
	require.NoError(t, err)
	left, _ := repo.ledger.Batch(batch.ID)
	assert.Equal(t, int64(2), left.Quantity)
	assert.Equal(t, shared.LedgerChange{Flow: shared.FlowTransferOut, UnitsOut: 6}, observer.changes[0])
}

func TestConfirmExportInsufficientStockLeavesLedgerUntouched(t *testing.T) {
	svc, repo, observer := newTestService()
	plenty := repo.ledger.Seed(inventory.Batch{ProductID: 11, BatchNumber: "OK", Quantity: 10, ExpiryDate: *expiry(6)})
	short := repo.ledger.Seed(inventory.Batch{ProductID: 10, BatchNumber: "LOT4", Quantity: 4, ExpiryDate: *expiry(6)})
	ctx := context.Background()

	transfer, err := svc.Create(ctx, CreateInput{
		TransferType: TypeExport,
		PartnerType:  PartnerCustomer,
		PartnerID:    id64(2),
		Items: []ItemInput{
			{ProductID: 11, InventoryBatchID: &plenty.ID, Quantity: 3},
			{ProductID: 10, InventoryBatchID: &short.ID, Quantity: 5},
		},
	})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, transfer.ID)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "LOT4")

	b, _ := repo.ledger.Batch(short.ID)
	assert.Equal(t, int64(4), b.Quantity)
	b, _ = repo.ledger.Batch(plenty.ID)
	assert.Equal(t, int64(10), b.Quantity)
	stored, err := svc.Get(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, stored.Status)
	assert.Nil(t, stored.ConfirmedAt)
	assert.Empty(t, observer.changes)
}

func TestCreateValidation(t *testing.T) {
	svc, repo, _ := newTestService()
	other := repo.ledger.Seed(inventory.Batch{ProductID: 11, BatchNumber: "X", Quantity: 1, ExpiryDate: *expiry(1)})
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInput
		want  error
	}{
		{"unknown type", CreateInput{TransferType: "swap", Items: []ItemInput{{ProductID: 10, Quantity: 1}}}, shared.ErrValidation},
		{"no items", CreateInput{TransferType: TypeImport}, shared.ErrValidation},
		{"inbound without batch number", CreateInput{TransferType: TypeImport, Items: []ItemInput{{ProductID: 10, Quantity: 1, ExpiryDate: expiry(1)}}}, shared.ErrValidation},
		{"inbound without expiry", CreateInput{TransferType: TypeImport, Items: []ItemInput{{ProductID: 10, Quantity: 1, BatchNumber: "A"}}}, shared.ErrValidation},
		{"outbound without batch", CreateInput{TransferType: TypeExport, Items: []ItemInput{{ProductID: 10, Quantity: 1}}}, shared.ErrValidation},
		{"outbound batch of other product", CreateInput{TransferType: TypeExportGift, Items: []ItemInput{{ProductID: 10, Quantity: 1, InventoryBatchID: &other.ID}}}, shared.ErrValidation},
		{"outbound missing batch", CreateInput{TransferType: TypeExport, Items: []ItemInput{{ProductID: 10, Quantity: 1, InventoryBatchID: id64(999)}}}, shared.ErrNotFound},
		{"unknown product", CreateInput{TransferType: TypeImport, Items: []ItemInput{{ProductID: 404, Quantity: 1, BatchNumber: "A", ExpiryDate: expiry(1)}}}, shared.ErrNotFound},
		{"unknown partner", CreateInput{TransferType: TypeImport, PartnerType: PartnerSupplier, PartnerID: id64(9), Items: []ItemInput{{ProductID: 10, Quantity: 1, BatchNumber: "A", ExpiryDate: expiry(1)}}}, shared.ErrNotFound},
		{"partner without type", CreateInput{TransferType: TypeImport, PartnerID: id64(1), Items: []ItemInput{{ProductID: 10, Quantity: 1, BatchNumber: "A", ExpiryDate: expiry(1)}}}, shared.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDraftLifecycle(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	input := CreateInput{TransferType: TypeImport, Items: []ItemInput{{ProductID: 10, Quantity: 2, BatchNumber: "A", ExpiryDate: expiry(4)}}}

	transfer, err := svc.Create(ctx, input)
	require.NoError(t, err)

	input.Notes = "  recount  "
	input.Items = append(input.Items, ItemInput{ProductID: 11, Quantity: 1, BatchNumber: "B", ExpiryDate: expiry(5)})
	updated, err := svc.Update(ctx, transfer.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "recount", updated.Notes)
	assert.Len(t, updated.Items, 2)
	assert.Equal(t, transfer.TransferNumber, updated.TransferNumber)

	input.TransferType = TypeImportReturn
	_, err = svc.Update(ctx, transfer.ID, input)
	require.ErrorIs(t, err, shared.ErrValidation)

	cancelled, err := svc.Cancel(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Empty(t, repo.ledger.All())

	_, err = svc.Confirm(ctx, transfer.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = svc.Cancel(ctx, transfer.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.ErrorIs(t, svc.Delete(ctx, transfer.ID), shared.ErrInvalidState)

	draft, err := svc.Create(ctx, CreateInput{TransferType: TypeImport, Items: []ItemInput{{ProductID: 10, Quantity: 1, BatchNumber: "C", ExpiryDate: expiry(1)}}})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, draft.ID))
	_, err = svc.Get(ctx, draft.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	listed, err := svc.List(ctx, ListFilter{Status: StatusCancelled})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, transfer.ID, listed[0].ID)
}
