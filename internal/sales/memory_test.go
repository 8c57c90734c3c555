package sales

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadist/pharmadist/internal/discounts"
	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/inventory/inventorytest"
	"github.com/pharmadist/pharmadist/internal/sequence"
)

type memoryRepo struct {
	orders    map[int64]SalesOrder
	customers map[int64]bool
	salesmen  map[int64]bool
	products  map[int64]ProductRef
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
		orders:    map[int64]SalesOrder{},
		customers: map[int64]bool{1: true, 2: true},
		salesmen:  map[int64]bool{5: true},
		products: map[int64]ProductRef{
			10: {ID: 10, Name: "Paracetamol 500mg", SalePrice: decimal.NewFromInt(10000)},
			11: {ID: 11, Name: "Amoxicillin 250mg", SalePrice: decimal.NewFromInt(25000)},
		},
		ledger: inventorytest.NewMemoryLedger(),
		seq:    sequence.NewCounter(),
	}
}

func cloneOrder(o SalesOrder) SalesOrder {
	items := make([]Item, len(o.Items))
	for i, it := range o.Items {
		it.AppliedDiscounts = append([]string(nil), it.AppliedDiscounts...)
		items[i] = it
	}
	o.Items = items
	return o
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]SalesOrder, len(r.orders))
	for id, o := range r.orders {
		snapshot[id] = cloneOrder(o)
	}
	err := r.ledger.Atomic(func() error { return fn(ctx, &memoryTx{repo: r}) })
	if err != nil {
		r.orders = snapshot
	}
	return err
}

func (r *memoryRepo) Get(_ context.Context, id int64) (SalesOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return SalesOrder{}, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *memoryRepo) List(_ context.Context, f ListFilter) ([]SalesOrder, error) {
	out := []SalesOrder{}
	for _, o := range r.orders {
		if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
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
	return sequence.Format("SO", at, t.repo.seq.Next(sequence.SalesOrder, at)), nil
}

func (t *memoryTx) CustomerExists(_ context.Context, id int64) (bool, error) {
	return t.repo.customers[id], nil
}

func (t *memoryTx) SalesmanExists(_ context.Context, id int64) (bool, error) {
	return t.repo.salesmen[id], nil
}

func (t *memoryTx) Products(_ context.Context, ids []int64) (map[int64]ProductRef, error) {
	out := map[int64]ProductRef{}
	for _, id := range ids {
		if p, ok := t.repo.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (t *memoryTx) InsertOrder(_ context.Context, o SalesOrder) (SalesOrder, error) {
	t.repo.nextOrder++
	o.ID = t.repo.nextOrder
	t.repo.orders[o.ID] = o
	return o, nil
}

func (t *memoryTx) UpdateOrder(_ context.Context, o SalesOrder) error {
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
		it.SalesOrderID = orderID
		out = append(out, it)
	}
	o.Items = out
	t.repo.orders[orderID] = o
	return cloneOrder(SalesOrder{Items: out}).Items, nil
}

func (t *memoryTx) UpdateFulfilled(_ context.Context, it Item) error {
	o := t.repo.orders[it.SalesOrderID]
	for i := range o.Items {
		if o.Items[i].ID == it.ID {
			o.Items[i].FulfilledQuantity = it.FulfilledQuantity
			t.repo.orders[o.ID] = o
			return nil
		}
	}
	return ErrItemNotFound
}

func (t *memoryTx) GetForUpdate(ctx context.Context, id int64) (SalesOrder, error) {
	return t.repo.Get(ctx, id)
}

func (t *memoryTx) Ledger() inventory.Ledger {
	return t.repo.ledger
}

// ruleBook resolves discounts from an editable rule slice.
type ruleBook struct {
	rules []discounts.Rule
}

func (b *ruleBook) GetApplicableForOrder(_ context.Context, customerID int64, salesmanID *int64, productIDs []int64) (map[int64]discounts.Resolution, error) {
	if salesmanID == nil || len(productIDs) == 0 {
		return map[int64]discounts.Resolution{}, nil
	}
	own := []discounts.Rule{}
	for _, r := range b.rules {
		if r.SalesmanID == *salesmanID {
			own = append(own, r)
		}
	}
	return discounts.ResolveAll(own, customerID, productIDs), nil
}

// discountStore backs a real discounts.Service with in-memory rules.
type discountStore struct {
	rules    map[int64]discounts.Rule
	salesmen map[int64]bool
	nextID   int64
}

func newDiscountStore(salesmen ...int64) *discountStore {
	s := &discountStore{rules: map[int64]discounts.Rule{}, salesmen: map[int64]bool{}}
	for _, id := range salesmen {
		s.salesmen[id] = true
	}
	return s
}

func (s *discountStore) ListActiveBySalesman(ctx context.Context, salesmanID int64) ([]discounts.Rule, error) {
	active := true
	return s.List(ctx, discounts.RuleFilter{SalesmanID: &salesmanID, IsActive: &active})
}

func (s *discountStore) List(_ context.Context, f discounts.RuleFilter) ([]discounts.Rule, error) {
	out := []discounts.Rule{}
	for id := int64(1); id <= s.nextID; id++ {
		rule, ok := s.rules[id]
		if !ok {
			continue
		}
		if f.SalesmanID != nil && rule.SalesmanID != *f.SalesmanID {
			continue
		}
		if f.IsActive != nil && rule.IsActive != *f.IsActive {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

func (s *discountStore) Get(_ context.Context, id int64) (discounts.Rule, error) {
	rule, ok := s.rules[id]
	if !ok {
		return discounts.Rule{}, discounts.ErrRuleNotFound
	}
	return rule, nil
}

func (s *discountStore) Create(_ context.Context, rule discounts.Rule) (discounts.Rule, error) {
	s.nextID++
	rule.ID = s.nextID
	s.rules[rule.ID] = rule
	return rule, nil
}

func (s *discountStore) Update(_ context.Context, rule discounts.Rule) (discounts.Rule, error) {
	s.rules[rule.ID] = rule
	return rule, nil
}

func (s *discountStore) SetActive(ctx context.Context, id int64, active bool) (discounts.Rule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return discounts.Rule{}, err
	}
	rule.IsActive = active
	s.rules[id] = rule
	return rule, nil
}

func (s *discountStore) Delete(_ context.Context, id int64) error {
	delete(s.rules, id)
	return nil
}

func (s *discountStore) SalesmanExists(_ context.Context, id int64) (bool, error) {
	return s.salesmen[id], nil
}
