package transfers

import (
	"context"
	"sort"
	"time"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/inventory/inventorytest"
	"github.com/pharmadist/pharmadist/internal/sequence"
)

type memoryRepo struct {
	transfers map[int64]StockTransfer
	products  map[int64]bool
	partners  map[PartnerType]map[int64]bool
	ledger    *inventorytest.MemoryLedger
	seq       *sequence.Counter
	nextID    int64
	nextItem  int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		transfers: map[int64]StockTransfer{},
		products:  map[int64]bool{10: true, 11: true},
		partners: map[PartnerType]map[int64]bool{
			PartnerSupplier: {1: true},
			PartnerCustomer: {2: true},
		},
		ledger: inventorytest.NewMemoryLedger(),
		seq:    sequence.NewCounter(),
	}
}

func cloneTransfer(t StockTransfer) StockTransfer {
	t.Items = append([]Item(nil), t.Items...)
	return t
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]StockTransfer, len(r.transfers))
	for id, t := range r.transfers {
		snapshot[id] = cloneTransfer(t)
	}
	err := r.ledger.Atomic(func() error { return fn(ctx, &memoryTx{repo: r}) })
	if err != nil {
		r.transfers = snapshot
	}
	return err
}

func (r *memoryRepo) Get(_ context.Context, id int64) (StockTransfer, error) {
	t, ok := r.transfers[id]
	if !ok {
		return StockTransfer{}, ErrTransferNotFound
	}
	return cloneTransfer(t), nil
}

func (r *memoryRepo) List(_ context.Context, f ListFilter) ([]StockTransfer, error) {
	out := []StockTransfer{}
	for _, t := range r.transfers {
		if f.TransferType != "" && t.TransferType != f.TransferType {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		t.Items = nil
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memoryTx) NextNumber(_ context.Context, kind Type, at time.Time) (string, error) {
	return sequence.Format(kind.Prefix(), at, t.repo.seq.Next(sequence.StockTransfer+":"+string(kind), at)), nil
}

func (t *memoryTx) ProductExists(_ context.Context, id int64) (bool, error) {
	return t.repo.products[id], nil
}

func (t *memoryTx) PartnerExists(_ context.Context, partnerType PartnerType, id int64) (bool, error) {
	return t.repo.partners[partnerType][id], nil
}

func (t *memoryTx) InsertTransfer(_ context.Context, st StockTransfer) (StockTransfer, error) {
	t.repo.nextID++
	st.ID = t.repo.nextID
	t.repo.transfers[st.ID] = st
	return st, nil
}

func (t *memoryTx) UpdateTransfer(_ context.Context, st StockTransfer) error {
	existing, ok := t.repo.transfers[st.ID]
	if !ok {
		return ErrTransferNotFound
	}
	st.Items = existing.Items
	t.repo.transfers[st.ID] = st
	return nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, id int64, status Status, confirmedAt *time.Time) error {
	st, ok := t.repo.transfers[id]
	if !ok {
		return ErrTransferNotFound
	}
	st.Status = status
	if confirmedAt != nil {
		st.ConfirmedAt = confirmedAt
	}
	t.repo.transfers[id] = st
	return nil
}

func (t *memoryTx) DeleteTransfer(_ context.Context, id int64) error {
	if _, ok := t.repo.transfers[id]; !ok {
		return ErrTransferNotFound
	}
	delete(t.repo.transfers, id)
	return nil
}

func (t *memoryTx) ReplaceItems(_ context.Context, transferID int64, items []Item) ([]Item, error) {
	st, ok := t.repo.transfers[transferID]
	if !ok {
		return nil, ErrTransferNotFound
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		t.repo.nextItem++
		it.ID = t.repo.nextItem
		it.StockTransferID = transferID
		out = append(out, it)
	}
	st.Items = out
	t.repo.transfers[transferID] = st
	return append([]Item(nil), out...), nil
}

func (t *memoryTx) GetForUpdate(ctx context.Context, id int64) (StockTransfer, error) {
	return t.repo.Get(ctx, id)
}

func (t *memoryTx) Ledger() inventory.Ledger {
	return t.repo.ledger
}
