package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/pharmadist/pharmadist/internal/shared"
)

// SortFIFO orders batches earliest expiry first, ties broken by id.
func SortFIFO(batches []Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].ExpiryDate.Equal(batches[j].ExpiryDate) {
			return batches[i].ID < batches[j].ID
		}
		return batches[i].ExpiryDate.Before(batches[j].ExpiryDate)
	})
}

// AllocateFIFO splits qty across batches, draining the earliest-expiring batch
// first. Batches without stock are skipped. The input slice is not modified.
func AllocateFIFO(batches []Batch, qty int64) ([]Allocation, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	}
	ordered := make([]Batch, 0, len(batches))
	var available int64
	for _, b := range batches {
		if b.Quantity > 0 {
			ordered = append(ordered, b)
			available += b.Quantity
		}
	}
	if available < qty {
		return nil, &InsufficientStockError{Requested: qty, Available: available}
	}
	SortFIFO(ordered)

	remaining := qty
	allocations := make([]Allocation, 0, len(ordered))
	for _, b := range ordered {
		if remaining == 0 {
			break
		}
		take := min(b.Quantity, remaining)
		allocations = append(allocations, Allocation{BatchID: b.ID, BatchNumber: b.BatchNumber, Quantity: take})
		remaining -= take
	}
	return allocations, nil
}

// Deplete locks the product's available batches, allocates qty FIFO and
// decrements each allocated batch. Nothing is written when stock is short.
func Deplete(ctx context.Context, ledger Ledger, productID, qty int64) ([]Allocation, error) {
	batches, err := ledger.ListAvailableForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	allocations, err := AllocateFIFO(batches, qty)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		if _, err := ledger.AdjustQuantity(ctx, a.BatchID, -a.Quantity); err != nil {
			return nil, err
		}
	}
	return allocations, nil
}
