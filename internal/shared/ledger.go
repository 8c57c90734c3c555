package shared

import "context"

// Ledger flows reported to observers.
const (
	FlowPurchaseReceive = "purchase_receive"
	FlowSalesFulfil     = "sales_fulfil"
	FlowTransferIn      = "transfer_in"
	FlowTransferOut     = "transfer_out"
	FlowManual          = "manual"
)

// LedgerChange summarises a committed stock mutation.
type LedgerChange struct {
	Flow           string
	BatchesCreated int
	UnitsIn        int64
	UnitsOut       int64
}

// LedgerObserver is notified after a stock mutation commits.
type LedgerObserver interface {
	LedgerChanged(ctx context.Context, change LedgerChange)
}

// LedgerObservers fans a change out to every non-nil observer.
type LedgerObservers []LedgerObserver

// LedgerChanged implements LedgerObserver.
func (o LedgerObservers) LedgerChanged(ctx context.Context, change LedgerChange) {
	for _, obs := range o {
		if obs != nil {
			obs.LedgerChanged(ctx, change)
		}
	}
}
