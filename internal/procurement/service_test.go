package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmadist/pharmadist/internal/shared"
)

var march2024 = time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC)

func newTestService() (*Service, *memoryRepo, *shared.MemoryAudit) {
	repo := newMemoryRepo()
	audit := &shared.MemoryAudit{}
	svc := NewService(repo, audit, shared.NewMemoryIdempotency(), nil)
	svc.now = func() time.Time { return march2024 }
	return svc, repo, audit
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pendingOrder(t *testing.T, svc *Service, qty int64) PurchaseOrder {
	t.Helper()
	order, err := svc.Create(context.Background(), CreateInput{
		SupplierID: 1,
		Items:      []ItemInput{{ProductID: 10, Quantity: qty, UnitPrice: money("1250.50")}},
		Submit:     true,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	return order
}

func receive(svc *Service, order PurchaseOrder, qty int64, batch string) (PurchaseOrder, error) {
	return svc.ReceiveItems(context.Background(), ReceiveInput{
		PurchaseOrderID: order.ID,
		Items: []ReceiveLine{{
			ItemID:           order.Items[0].ID,
			ReceivedQuantity: qty,
			BatchNumber:      batch,
			ExpiryDate:       time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		}},
	})
}

func TestCreateNumbersOrdersPerMonth(t *testing.T) {
	svc, _, audit := newTestService()
	ctx := context.Background()
	input := CreateInput{
		SupplierID: 1,
		Items: []ItemInput{
			{ProductID: 10, Quantity: 4, UnitPrice: money("100")},
			{ProductID: 11, Quantity: 3, UnitPrice: money("2.5")},
		},
	}

	first, err := svc.Create(ctx, input)
	require.NoError(t, err)
	second, err := svc.Create(ctx, input)
	require.NoError(t, err)

	assert.Equal(t, "PO202403-0001", first.OrderNumber)
	assert.Equal(t, "PO202403-0002", second.OrderNumber)
	assert.Equal(t, StatusDraft, first.Status)
	assert.True(t, first.TotalAmount.Equal(money("407.5")), first.TotalAmount.String())
	require.Len(t, first.Items, 2)
	assert.Len(t, audit.Logs, 2)

	svc.now = func() time.Time { return march2024.AddDate(0, 1, 0) }
	april, err := svc.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "PO202404-0001", april.OrderNumber)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{SupplierID: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 10, Quantity: 0}}})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 10, Quantity: 1, UnitPrice: money("-1")}}})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateInput{SupplierID: 9, Items: []ItemInput{{ProductID: 10, Quantity: 1}}})
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Create(ctx, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 99, Quantity: 1}}})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReceiveAccumulatesUntilReceived(t *testing.T) {
	svc, repo, _ := newTestService()
	order := pendingOrder(t, svc, 10)

	got, err := receive(svc, order, 3, "LOT-A")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Items[0].ReceivedQuantity)
	assert.Equal(t, StatusPartial, got.Status)

	got, err = receive(svc, order, 4, "LOT-B")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Items[0].ReceivedQuantity)
	assert.Equal(t, StatusPartial, got.Status)
	assert.Equal(t, "LOT-B", got.Items[0].BatchNumber)

	got, err = receive(svc, order, 3, "LOT-C")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Items[0].ReceivedQuantity)
	assert.Equal(t, StatusReceived, got.Status)

	batches := repo.ledger.All()
	require.Len(t, batches, 3, "every receive books a new batch")
	assert.Equal(t, int64(10), repo.ledger.Total(10))
	for _, b := range batches {
		require.NotNil(t, b.SupplierID)
		assert.Equal(t, int64(1), *b.SupplierID)
		require.NotNil(t, b.PurchaseOrderID)
		assert.Equal(t, order.ID, *b.PurchaseOrderID)
		assert.True(t, b.PurchasePrice.Equal(money("1250.50")))
	}

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, stored.Status)
}

func TestReceiveAllowsOverReceipt(t *testing.T) {
	svc, repo, _ := newTestService()
	order := pendingOrder(t, svc, 5)

	got, err := receive(svc, order, 8, "LOT-X")
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, got.Status)
	assert.Equal(t, int64(0), got.Items[0].Outstanding())
	assert.Equal(t, int64(8), repo.ledger.Total(10))
}

func TestReceiveRequiresPendingOrPartial(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	draft, err := svc.Create(ctx, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 10, Quantity: 2}}})
	require.NoError(t, err)

	_, err = receive(svc, draft, 1, "L")
	require.ErrorIs(t, err, shared.ErrInvalidState)

	order := pendingOrder(t, svc, 2)
	_, err = receive(svc, order, 2, "L")
	require.NoError(t, err)
	_, err = receive(svc, order, 1, "L")
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestReceiveUnknownItemFailsWholeCall(t *testing.T) {
	svc, repo, _ := newTestService()
	order := pendingOrder(t, svc, 10)
	exp := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.ReceiveItems(context.Background(), ReceiveInput{
		PurchaseOrderID: order.ID,
		Items: []ReceiveLine{
			{ItemID: order.Items[0].ID, ReceivedQuantity: 5, BatchNumber: "LOT-A", ExpiryDate: exp},
			{ItemID: 9999, ReceivedQuantity: 1, BatchNumber: "LOT-B", ExpiryDate: exp},
		},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Items[0].ReceivedQuantity)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Empty(t, repo.ledger.All())
}

func TestReceiveValidation(t *testing.T) {
	svc, _, _ := newTestService()
	order := pendingOrder(t, svc, 10)

	_, err := receive(svc, order, 0, "LOT")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = receive(svc, order, 1, "  ")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.ReceiveItems(context.Background(), ReceiveInput{PurchaseOrderID: order.ID})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestReceiveIdempotencyKeyRejectsReplay(t *testing.T) {
	svc, repo, _ := newTestService()
	order := pendingOrder(t, svc, 10)
	input := ReceiveInput{
		PurchaseOrderID: order.ID,
		IdempotencyKey:  "recv-1",
		Items: []ReceiveLine{{
			ItemID: order.Items[0].ID, ReceivedQuantity: 2, BatchNumber: "LOT", ExpiryDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}

	_, err := svc.ReceiveItems(context.Background(), input)
	require.NoError(t, err)
	_, err = svc.ReceiveItems(context.Background(), input)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	assert.Equal(t, int64(2), repo.ledger.Total(10))
}

func TestLifecycleGuards(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	draft, err := svc.Create(ctx, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 10, Quantity: 2}}})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, draft.ID, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 11, Quantity: 6, UnitPrice: money("3")}}})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, int64(11), updated.Items[0].ProductID)
	assert.True(t, updated.TotalAmount.Equal(money("18")))

	submitted, err := svc.Submit(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, submitted.Status)

	_, err = svc.Submit(ctx, draft.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
	_, err = svc.Update(ctx, draft.ID, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 10, Quantity: 1}}})
	require.ErrorIs(t, err, shared.ErrInvalidState)
	require.ErrorIs(t, svc.Delete(ctx, draft.ID), shared.ErrInvalidState)

	partial := pendingOrder(t, svc, 10)
	_, err = receive(svc, partial, 1, "L")
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, partial.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	cancelled, err := svc.Cancel(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	fresh, err := svc.Create(ctx, CreateInput{SupplierID: 1, Items: []ItemInput{{ProductID: 10, Quantity: 2}}})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, fresh.ID))
	_, err = svc.Get(ctx, fresh.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
