package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadist/pharmadist/internal/discounts"
	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (SalesOrder, error)
	List(ctx context.Context, filter ListFilter) ([]SalesOrder, error)
}

// TxRepository exposes the statements run inside one transaction.
type TxRepository interface {
	NextNumber(ctx context.Context, at time.Time) (string, error)
	CustomerExists(ctx context.Context, id int64) (bool, error)
	SalesmanExists(ctx context.Context, id int64) (bool, error)
	Products(ctx context.Context, ids []int64) (map[int64]ProductRef, error)
	InsertOrder(ctx context.Context, order SalesOrder) (SalesOrder, error)
	UpdateOrder(ctx context.Context, order SalesOrder) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	DeleteOrder(ctx context.Context, id int64) error
	ReplaceItems(ctx context.Context, orderID int64, items []Item) ([]Item, error)
	UpdateFulfilled(ctx context.Context, item Item) error
	GetForUpdate(ctx context.Context, id int64) (SalesOrder, error)
	Ledger() inventory.Ledger
}

// DiscountResolver resolves the discounts that apply to an order's products.
type DiscountResolver interface {
	GetApplicableForOrder(ctx context.Context, customerID int64, salesmanID *int64, productIDs []int64) (map[int64]discounts.Resolution, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates sales orders and FIFO fulfilment.
type Service struct {
	repo        RepositoryPort
	discounts   DiscountResolver
	audit       AuditPort
	idempotency shared.IdempotencyGuard
	observer    shared.LedgerObserver
	now         func() time.Time
}

// NewService constructs the sales service.
func NewService(repo RepositoryPort, resolver DiscountResolver, audit AuditPort, idem shared.IdempotencyGuard, observer shared.LedgerObserver) *Service {
	return &Service{repo: repo, discounts: resolver, audit: audit, idempotency: idem, observer: observer, now: time.Now}
}

// Create inserts a sales order with a fresh SO number and the salesman's
// discounts frozen into every line.
func (s *Service) Create(ctx context.Context, input CreateInput) (SalesOrder, error) {
	if err := validateInput(input); err != nil {
		return SalesOrder{}, err
	}
	resolutions, err := s.resolve(ctx, input)
	if err != nil {
		return SalesOrder{}, err
	}
	now := s.now()
	status := StatusDraft
	if input.Submit {
		status = StatusPending
	}
	var created SalesOrder
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		products, err := checkReferences(ctx, tx, input)
		if err != nil {
			return err
		}
		number, err := tx.NextNumber(ctx, now)
		if err != nil {
			return err
		}
		items := priceItems(input.Items, products, resolutions)
		total, discount := totals(items)
		order, err := tx.InsertOrder(ctx, SalesOrder{
			OrderNumber:    number,
			CustomerID:     input.CustomerID,
			SalesmanID:     input.SalesmanID,
			Status:         status,
			TotalAmount:    total,
			DiscountAmount: discount,
			Notes:          strings.TrimSpace(input.Notes),
			OrderDate:      now,
		})
		if err != nil {
			return err
		}
		order.Items, err = tx.ReplaceItems(ctx, order.ID, items)
		if err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return SalesOrder{}, err
	}
	s.recordAudit(ctx, "sales_order.create", created.ID, map[string]any{
		"number": created.OrderNumber, "total": created.TotalAmount.String(), "discount": created.DiscountAmount.String(),
	})
	return created, nil
}

// Update re-prices a draft order against the current discount rules.
func (s *Service) Update(ctx context.Context, id int64, input CreateInput) (SalesOrder, error) {
	if err := validateInput(input); err != nil {
		return SalesOrder{}, err
	}
	resolutions, err := s.resolve(ctx, input)
	if err != nil {
		return SalesOrder{}, err
	}
	var updated SalesOrder
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != StatusDraft {
			return fmt.Errorf("%w: sales order %s is %s, only draft orders can be edited", shared.ErrInvalidState, order.OrderNumber, order.Status)
		}
		products, err := checkReferences(ctx, tx, input)
		if err != nil {
			return err
		}
		items := priceItems(input.Items, products, resolutions)
		order.CustomerID = input.CustomerID
		order.SalesmanID = input.SalesmanID
		order.Notes = strings.TrimSpace(input.Notes)
		order.TotalAmount, order.DiscountAmount = totals(items)
		if input.Submit {
			order.Status = StatusPending
		}
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		order.Items, err = tx.ReplaceItems(ctx, order.ID, items)
		if err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return SalesOrder{}, err
	}
	s.recordAudit(ctx, "sales_order.update", updated.ID, map[string]any{"total": updated.TotalAmount.String()})
	return updated, nil
}

// Submit moves a draft order to pending.
func (s *Service) Submit(ctx context.Context, id int64) (SalesOrder, error) {
	return s.transition(ctx, id, "sales_order.submit", func(o SalesOrder) error {
		if o.Status != StatusDraft {
			return fmt.Errorf("%w: sales order %s is %s, only draft orders can be submitted", shared.ErrInvalidState, o.OrderNumber, o.Status)
		}
		return nil
	}, StatusPending)
}

// Cancel abandons a draft or pending order that shipped nothing yet.
func (s *Service) Cancel(ctx context.Context, id int64) (SalesOrder, error) {
	return s.transition(ctx, id, "sales_order.cancel", func(o SalesOrder) error {
		if o.Status != StatusDraft && o.Status != StatusPending {
			return fmt.Errorf("%w: sales order %s is %s and cannot be cancelled", shared.ErrInvalidState, o.OrderNumber, o.Status)
		}
		if o.AnyFulfilled() {
			return fmt.Errorf("%w: sales order %s already shipped stock", shared.ErrInvalidState, o.OrderNumber)
		}
		return nil
	}, StatusCancelled)
}

// Delete removes a draft order together with its items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var number string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != StatusDraft {
			return fmt.Errorf("%w: sales order %s is %s, only draft orders can be deleted", shared.ErrInvalidState, order.OrderNumber, order.Status)
		}
		number = order.OrderNumber
		return tx.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "sales_order.delete", id, map[string]any{"number": number})
	return nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, id int64) (SalesOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns order headers matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]SalesOrder, error) {
	return s.repo.List(ctx, filter)
}

// FulfillItems ships stock for order lines, deducting from the product's
// batches earliest expiry first. The call is all-or-nothing: a line that
// cannot be covered rolls back every line before it.
func (s *Service) FulfillItems(ctx context.Context, input FulfillInput) (SalesOrder, error) {
	if err := validateFulfill(input); err != nil {
		return SalesOrder{}, err
	}
	var (
		result      SalesOrder
		change      = shared.LedgerChange{Flow: shared.FlowSalesFulfil}
		allocations = map[string][]inventory.Allocation{}
	)
	err := shared.RunOnce(ctx, s.idempotency, input.IdempotencyKey, "sales.fulfill", func() error {
		return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			order, err := tx.GetForUpdate(ctx, input.SalesOrderID)
			if err != nil {
				return err
			}
			if !order.Status.Fulfillable() {
				return fmt.Errorf("%w: sales order %s is %s, stock can only be shipped on pending or partial orders", shared.ErrInvalidState, order.OrderNumber, order.Status)
			}
			index := make(map[int64]int, len(order.Items))
			productIDs := make([]int64, 0, len(order.Items))
			for i, it := range order.Items {
				index[it.ID] = i
				productIDs = append(productIDs, it.ProductID)
			}
			products, err := tx.Products(ctx, productIDs)
			if err != nil {
				return err
			}
			ledger := tx.Ledger()
			for _, line := range input.Items {
				pos, ok := index[line.ItemID]
				if !ok {
					return fmt.Errorf("%w: item %d is not on sales order %s", ErrItemNotFound, line.ItemID, order.OrderNumber)
				}
				item := &order.Items[pos]
				allocs, err := inventory.Deplete(ctx, ledger, item.ProductID, line.FulfilledQuantity)
				if err != nil {
					var short *inventory.InsufficientStockError
					if errors.As(err, &short) {
						return fmt.Errorf("%w for product %q: requested %d, available %d",
							shared.ErrInsufficientStock, products[item.ProductID].Name, short.Requested, short.Available)
					}
					return err
				}
				item.FulfilledQuantity += line.FulfilledQuantity
				if err := tx.UpdateFulfilled(ctx, *item); err != nil {
					return err
				}
				key := strconv.FormatInt(item.ID, 10)
				allocations[key] = append(allocations[key], allocs...)
				change.UnitsOut += line.FulfilledQuantity
			}
			order.Status = StatusPartial
			if order.FullyFulfilled() {
				order.Status = StatusCompleted
			}
			if err := tx.UpdateStatus(ctx, order.ID, order.Status); err != nil {
				return err
			}
			result = order
			return nil
		})
	})
	if err != nil {
		return SalesOrder{}, err
	}
	s.recordAudit(ctx, "sales_order.fulfill", result.ID, map[string]any{
		"number": result.OrderNumber, "status": string(result.Status), "allocations": allocations,
	})
	if s.observer != nil {
		s.observer.LedgerChanged(ctx, change)
	}
	return result, nil
}

func (s *Service) resolve(ctx context.Context, input CreateInput) (map[int64]discounts.Resolution, error) {
	if s.discounts == nil {
		return map[int64]discounts.Resolution{}, nil
	}
	ids := make([]int64, 0, len(input.Items))
	for _, it := range input.Items {
		ids = append(ids, it.ProductID)
	}
	return s.discounts.GetApplicableForOrder(ctx, input.CustomerID, input.SalesmanID, ids)
}

func (s *Service) transition(ctx context.Context, id int64, action string, guard func(SalesOrder) error, to Status) (SalesOrder, error) {
	var result SalesOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := guard(order); err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		order.Status = to
		result = order
		return nil
	})
	if err != nil {
		return SalesOrder{}, err
	}
	s.recordAudit(ctx, action, id, map[string]any{"number": result.OrderNumber, "status": string(to)})
	return result, nil
}

func checkReferences(ctx context.Context, tx TxRepository, input CreateInput) (map[int64]ProductRef, error) {
	ok, err := tx.CustomerExists(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", input.CustomerID, shared.ErrNotFound)
	}
	if input.SalesmanID != nil {
		ok, err := tx.SalesmanExists(ctx, *input.SalesmanID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("salesman %d: %w", *input.SalesmanID, shared.ErrNotFound)
		}
	}
	ids := make([]int64, 0, len(input.Items))
	for _, it := range input.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := tx.Products(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
		}
	}
	return products, nil
}

func priceItems(lines []ItemInput, products map[int64]ProductRef, resolutions map[int64]discounts.Resolution) []Item {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		base := products[l.ProductID].SalePrice
		if l.UnitPrice != nil {
			base = *l.UnitPrice
		}
		res, ok := resolutions[l.ProductID]
		if !ok {
			res = discounts.Resolution{TotalPercent: decimal.Zero}
		}
		unit, discount := discounts.PriceLine(base, l.Quantity, res.TotalPercent)
		items = append(items, Item{
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			BaseUnitPrice:    base,
			UnitPrice:        unit,
			DiscountPercent:  res.TotalPercent,
			DiscountAmount:   discount,
			AppliedDiscounts: res.Labels(),
		})
	}
	return items
}

func totals(items []Item) (total, discount decimal.Decimal) {
	total, discount = decimal.Zero, decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
		discount = discount.Add(it.DiscountAmount)
	}
	return total, discount
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx).ID,
		Action:   action,
		Entity:   "sales_order",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
		At:       s.now().UTC(),
	})
}
