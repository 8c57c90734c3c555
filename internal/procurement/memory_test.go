package procurement

import (
	"context"
	"sort"
	"time"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/inventory/inventorytest"
	"github.com/pharmadist/pharmadist/internal/sequence"
)

type memoryRepo struct {
	orders    map[int64]PurchaseOrder
	suppliers map[int64]bool
	products  map[int64]bool
	ledger    *inventorytest.MemoryLedger
	seq       *sequence.Counter
	nextOrder int64
	nextItem  int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:    map[int64]PurchaseOrder{},
		suppliers: map[int64]bool{1: true},
		products:  map[int64]bool{10: true, 11: true},
		ledger:    inventorytest.NewMemoryLedger(),
		seq:       sequence.NewCounter(),
	}
}

func cloneOrder(o PurchaseOrder) PurchaseOrder {
	o.Items = append([]Item(nil), o.Items...)
	return o
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]PurchaseOrder, len(r.orders))
	for id, o := range r.orders {
		snapshot[id] = cloneOrder(o)
	}
	err := r.ledger.Atomic(func() error { return fn(ctx, &memoryTx{repo: r}) })
	if err != nil {
		r.orders = snapshot
	}
	return err
}

func (r *memoryRepo) Get(_ context.Context, id int64) (PurchaseOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *memoryRepo) List(_ context.Context, f ListFilter) ([]PurchaseOrder, error) {
	out := []PurchaseOrder{}
	for _, o := range r.orders {
		if f.SupplierID != nil && o.SupplierID != *f.SupplierID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		o.Items = nil
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memoryTx) NextNumber(_ context.Context, at time.Time) (string, error) {
	return sequence.Format("PO", at, t.repo.seq.Next(sequence.PurchaseOrder, at)), nil
}

func (t *memoryTx) SupplierExists(_ context.Context, id int64) (bool, error) {
	return t.repo.suppliers[id], nil
}

func (t *memoryTx) ProductExists(_ context.Context, id int64) (bool, error) {
	return t.repo.products[id], nil
}

func (t *memoryTx) InsertOrder(_ context.Context, o PurchaseOrder) (PurchaseOrder, error) {
	t.repo.nextOrder++
	o.ID = t.repo.nextOrder
	o.CreatedAt, o.UpdatedAt = o.OrderDate, o.OrderDate
	t.repo.orders[o.ID] = o
	return o, nil
}

func (t *memoryTx) UpdateOrder(_ context.Context, o PurchaseOrder) error {
	existing, ok := t.repo.orders[o.ID]
	if !ok {
		return ErrOrderNotFound
	}
	o.Items = existing.Items
	t.repo.orders[o.ID] = o
	return nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, id int64, status Status) error {
	o, ok := t.repo.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	t.repo.orders[id] = o
	return nil
}

func (t *memoryTx) DeleteOrder(_ context.Context, id int64) error {
	if _, ok := t.repo.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(t.repo.orders, id)
	return nil
}

func (t *memoryTx) ReplaceItems(_ context.Context, orderID int64, items []Item) ([]Item, error) {
	o, ok := t.repo.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		t.repo.nextItem++
		it.ID = t.repo.nextItem
		it.PurchaseOrderID = orderID
		out = append(out, it)
	}
	o.Items = out
	t.repo.orders[orderID] = o
	return append([]Item(nil), out...), nil
}

func (t *memoryTx) UpdateReceived(_ context.Context, it Item) error {
	o := t.repo.orders[it.PurchaseOrderID]
	for i := range o.Items {
		if o.Items[i].ID == it.ID {
			o.Items[i] = it
			t.repo.orders[o.ID] = o
			return nil
		}
	}
	return ErrItemNotFound
}

func (t *memoryTx) GetForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	return t.repo.Get(ctx, id)
}

func (t *memoryTx) Ledger() inventory.Ledger {
	return t.repo.ledger
}
