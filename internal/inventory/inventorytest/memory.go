// Package inventorytest provides an in-memory batch ledger for service tests.
package inventorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pharmadist/pharmadist/internal/inventory"
)

// MemoryLedger implements inventory.TxRepository over a map.
type MemoryLedger struct {
	mu      sync.Mutex
	batches map[int64]inventory.Batch
	nextID  int64
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{batches: make(map[int64]inventory.Batch)}
}

// Seed stores b as is, assigning an id when b has none.
func (m *MemoryLedger) Seed(b inventory.Batch) inventory.Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == 0 {
		m.nextID++
		b.ID = m.nextID
	} else if b.ID > m.nextID {
		m.nextID = b.ID
	}
	m.batches[b.ID] = b
	return b
}

// Batch returns the stored batch with id.
func (m *MemoryLedger) Batch(id int64) (inventory.Batch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	return b, ok
}

// All returns every batch ordered by id.
func (m *MemoryLedger) All() []inventory.Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]inventory.Batch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Total sums the quantity of every batch of productID.
func (m *MemoryLedger) Total(productID int64) int64 {
	var total int64
	for _, b := range m.All() {
		if b.ProductID == productID {
			total += b.Quantity
		}
	}
	return total
}

// Atomic runs fn and restores the previous contents when it fails, the way a
// rolled back transaction would.
func (m *MemoryLedger) Atomic(fn func() error) error {
	m.mu.Lock()
	snapshot := make(map[int64]inventory.Batch, len(m.batches))
	for id, b := range m.batches {
		snapshot[id] = b
	}
	nextID := m.nextID
	m.mu.Unlock()

	if err := fn(); err != nil {
		m.mu.Lock()
		m.batches = snapshot
		m.nextID = nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryLedger) InsertBatch(_ context.Context, nb inventory.NewBatch) (inventory.Batch, error) {
	now := time.Now().UTC()
	return m.Seed(inventory.Batch{
		ProductID:       nb.ProductID,
		BatchNumber:     nb.BatchNumber,
		Quantity:        nb.Quantity,
		ExpiryDate:      nb.ExpiryDate,
		PurchasePrice:   nb.PurchasePrice,
		SupplierID:      nb.SupplierID,
		PurchaseOrderID: nb.PurchaseOrderID,
		StockTransferID: nb.StockTransferID,
		Location:        nb.Location,
		CreatedAt:       now,
		UpdatedAt:       now,
	}), nil
}

func (m *MemoryLedger) FindBatchForUpdate(_ context.Context, productID int64, batchNumber string) (inventory.Batch, error) {
	for _, b := range m.All() {
		if b.ProductID == productID && b.BatchNumber == batchNumber {
			return b, nil
		}
	}
	return inventory.Batch{}, inventory.ErrBatchNotFound
}

func (m *MemoryLedger) GetBatchForUpdate(_ context.Context, id int64) (inventory.Batch, error) {
	b, ok := m.Batch(id)
	if !ok {
		return inventory.Batch{}, inventory.ErrBatchNotFound
	}
	return b, nil
}

func (m *MemoryLedger) ListAvailableForUpdate(_ context.Context, productID int64) ([]inventory.Batch, error) {
	out := []inventory.Batch{}
	for _, b := range m.All() {
		if b.ProductID == productID && b.Quantity > 0 {
			out = append(out, b)
		}
	}
	inventory.SortFIFO(out)
	return out, nil
}

func (m *MemoryLedger) AdjustQuantity(_ context.Context, id int64, delta int64) (inventory.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return inventory.Batch{}, inventory.ErrBatchNotFound
	}
	if b.Quantity+delta < 0 {
		return inventory.Batch{}, inventory.ErrNegativeStock
	}
	b.Quantity += delta
	b.UpdatedAt = time.Now().UTC()
	m.batches[id] = b
	return b, nil
}

func (m *MemoryLedger) UpdateBatch(_ context.Context, id int64, upd inventory.BatchUpdate) (inventory.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return inventory.Batch{}, inventory.ErrBatchNotFound
	}
	if upd.Quantity != nil {
		b.Quantity = *upd.Quantity
	}
	if upd.ExpiryDate != nil {
		b.ExpiryDate = *upd.ExpiryDate
	}
	if upd.Location != nil {
		b.Location = *upd.Location
	}
	b.UpdatedAt = time.Now().UTC()
	m.batches[id] = b
	return b, nil
}

func (m *MemoryLedger) DeleteBatch(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.batches[id]; !ok {
		return inventory.ErrBatchNotFound
	}
	delete(m.batches, id)
	return nil
}

// Product is the catalog data MemoryRepository needs for summaries.
type Product struct {
	Name     string
	SKU      string
	MinStock int64
}

// MemoryRepository implements inventory.RepositoryPort on top of a MemoryLedger.
type MemoryRepository struct {
	*MemoryLedger
	Products map[int64]Product
}

// NewMemoryRepository wraps ledger with an empty product catalog.
func NewMemoryRepository(ledger *MemoryLedger) *MemoryRepository {
	return &MemoryRepository{MemoryLedger: ledger, Products: make(map[int64]Product)}
}

func (r *MemoryRepository) WithTx(ctx context.Context, fn func(context.Context, inventory.TxRepository) error) error {
	return r.Atomic(func() error { return fn(ctx, r.MemoryLedger) })
}

func (r *MemoryRepository) GetBatch(_ context.Context, id int64) (inventory.Batch, error) {
	b, ok := r.Batch(id)
	if !ok {
		return inventory.Batch{}, inventory.ErrBatchNotFound
	}
	return b, nil
}

func (r *MemoryRepository) ListBatches(_ context.Context, filter inventory.BatchFilter) ([]inventory.Batch, error) {
	out := []inventory.Batch{}
	for _, b := range r.All() {
		if filter.ProductID != nil && b.ProductID != *filter.ProductID {
			continue
		}
		if !filter.IncludeEmpty && b.Quantity <= 0 {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *MemoryRepository) ListExpiring(_ context.Context, until time.Time) ([]inventory.ExpiringBatch, error) {
	out := []inventory.ExpiringBatch{}
	for _, b := range r.All() {
		if b.Quantity > 0 && !b.ExpiryDate.After(until) {
			out = append(out, inventory.ExpiringBatch{Batch: b, ProductName: r.Products[b.ProductID].Name})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

func (r *MemoryRepository) StockSummary(_ context.Context) ([]inventory.StockLevel, error) {
	levels := make([]inventory.StockLevel, 0, len(r.Products))
	for id, p := range r.Products {
		levels = append(levels, inventory.StockLevel{
			ProductID:   id,
			ProductName: p.Name,
			SKU:         p.SKU,
			Quantity:    r.Total(id),
			MinStock:    p.MinStock,
		})
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].ProductName < levels[j].ProductName })
	return levels, nil
}

func (r *MemoryRepository) ProductExists(_ context.Context, id int64) (bool, error) {
	_, ok := r.Products[id]
	return ok, nil
}

var (
	_ inventory.TxRepository   = (*MemoryLedger)(nil)
	_ inventory.RepositoryPort = (*MemoryRepository)(nil)
)
