package transfers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/shared"
)

// Direction is the ledger rule behind a transfer type.
type Direction interface {
	// Inbound reports whether confirming adds stock.
	Inbound() bool
	// ValidateItem checks a line at creation time and fills the fields the
	// direction derives.
	ValidateItem(ctx context.Context, ledger inventory.Ledger, item *Item) error
	// Settle applies one confirmed line to the ledger.
	Settle(ctx context.Context, ledger inventory.Ledger, transfer StockTransfer, item Item) (Settlement, error)
}

// Settlement describes what confirming one line did to the ledger.
type Settlement struct {
	BatchID int64
	Created bool
	Delta   int64
}

// DirectionOf returns the direction for t.
func DirectionOf(t Type) (Direction, error) {
	switch t {
	case TypeImport, TypeImportReturn:
		return Inbound{}, nil
	case TypeExport, TypeExportReturn, TypeExportGift, TypeExportDestruction:
		return Outbound{}, nil
	}
	return nil, fmt.Errorf("%w: unknown transfer type %q", shared.ErrValidation, t)
}

// Inbound merges stock into the batch with the same product and batch
// number, or opens a new batch.
type Inbound struct{}

func (Inbound) Inbound() bool { return true }

func (Inbound) ValidateItem(_ context.Context, _ inventory.Ledger, item *Item) error {
	item.BatchNumber = strings.TrimSpace(item.BatchNumber)
	if item.BatchNumber == "" {
		return fmt.Errorf("%w: batch number is required", shared.ErrValidation)
	}
	if item.ExpiryDate.IsZero() {
		return fmt.Errorf("%w: expiry date is required", shared.ErrValidation)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	item.InventoryBatchID = nil
	return nil
}

func (Inbound) Settle(ctx context.Context, ledger inventory.Ledger, transfer StockTransfer, item Item) (Settlement, error) {
	existing, err := ledger.FindBatchForUpdate(ctx, item.ProductID, item.BatchNumber)
	switch {
	case err == nil:
		if _, err := ledger.AdjustQuantity(ctx, existing.ID, item.Quantity); err != nil {
			return Settlement{}, err
		}
		return Settlement{BatchID: existing.ID, Delta: item.Quantity}, nil
	case !errors.Is(err, inventory.ErrBatchNotFound):
		return Settlement{}, err
	}
	transferID := transfer.ID
	batch, err := ledger.InsertBatch(ctx, inventory.NewBatch{
		ProductID:       item.ProductID,
		BatchNumber:     item.BatchNumber,
		Quantity:        item.Quantity,
		ExpiryDate:      item.ExpiryDate,
		PurchasePrice:   item.UnitPrice,
		SupplierID:      transfer.SupplierID(),
		StockTransferID: &transferID,
	})
	if err != nil {
		return Settlement{}, err
	}
	return Settlement{BatchID: batch.ID, Created: true, Delta: item.Quantity}, nil
}

// Outbound draws stock from the batch chosen when the transfer was drafted.
type Outbound struct{}

func (Outbound) Inbound() bool { return false }

func (Outbound) ValidateItem(ctx context.Context, ledger inventory.Ledger, item *Item) error {
	if item.InventoryBatchID == nil || *item.InventoryBatchID <= 0 {
		return fmt.Errorf("%w: source batch is required", shared.ErrValidation)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	batch, err := ledger.GetBatchForUpdate(ctx, *item.InventoryBatchID)
	if err != nil {
		return err
	}
	if batch.ProductID != item.ProductID {
		return fmt.Errorf("%w: batch %s does not hold product %d", shared.ErrValidation, batch.BatchNumber, item.ProductID)
	}
	item.BatchNumber = batch.BatchNumber
	item.ExpiryDate = batch.ExpiryDate
	return nil
}

func (Outbound) Settle(ctx context.Context, ledger inventory.Ledger, _ StockTransfer, item Item) (Settlement, error) {
	if item.InventoryBatchID == nil {
		return Settlement{}, fmt.Errorf("%w: line %d has no source batch", shared.ErrValidation, item.ID)
	}
	batch, err := ledger.GetBatchForUpdate(ctx, *item.InventoryBatchID)
	if err != nil {
		return Settlement{}, err
	}
	if batch.Quantity < item.Quantity {
		return Settlement{}, fmt.Errorf("%w in batch %s: requested %d, available %d",
			shared.ErrInsufficientStock, batch.BatchNumber, item.Quantity, batch.Quantity)
	}
	if _, err := ledger.AdjustQuantity(ctx, batch.ID, -item.Quantity); err != nil {
		return Settlement{}, err
	}
	return Settlement{BatchID: batch.ID, Delta: -item.Quantity}, nil
}
