package procurement

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, error)
}

// TxRepository exposes the statements run inside one transaction.
type TxRepository interface {
	NextNumber(ctx context.Context, at time.Time) (string, error)
	SupplierExists(ctx context.Context, id int64) (bool, error)
	ProductExists(ctx context.Context, id int64) (bool, error)
	InsertOrder(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error)
	UpdateOrder(ctx context.Context, order PurchaseOrder) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	DeleteOrder(ctx context.Context, id int64) error
	ReplaceItems(ctx context.Context, orderID int64, items []Item) ([]Item, error)
	UpdateReceived(ctx context.Context, item Item) error
	GetForUpdate(ctx context.Context, id int64) (PurchaseOrder, error)
	Ledger() inventory.Ledger
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates purchase orders and goods receiving.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency shared.IdempotencyGuard
	observer    shared.LedgerObserver
	now         func() time.Time
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort, audit AuditPort, idem shared.IdempotencyGuard, observer shared.LedgerObserver) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, observer: observer, now: time.Now}
}

// Create inserts a purchase order with a fresh PO number. The order starts in
// draft unless Submit is set.
func (s *Service) Create(ctx context.Context, input CreateInput) (PurchaseOrder, error) {
	if err := validateInput(input); err != nil {
		return PurchaseOrder{}, err
	}
	now := s.now()
	status := StatusDraft
	if input.Submit {
		status = StatusPending
	}
	var created PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := checkReferences(ctx, tx, input); err != nil {
			return err
		}
		number, err := tx.NextNumber(ctx, now)
		if err != nil {
			return err
		}
		items := buildItems(input.Items)
		order, err := tx.InsertOrder(ctx, PurchaseOrder{
			OrderNumber:  number,
			SupplierID:   input.SupplierID,
			Status:       status,
			TotalAmount:  orderTotal(items),
			Notes:        strings.TrimSpace(input.Notes),
			OrderDate:    now,
			ExpectedDate: input.ExpectedDate,
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
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "purchase_order.create", created.ID, map[string]any{
		"number": created.OrderNumber, "total": created.TotalAmount.String(), "status": string(created.Status),
	})
	return created, nil
}

// Update replaces supplier, notes and lines of a draft order.
func (s *Service) Update(ctx context.Context, id int64, input CreateInput) (PurchaseOrder, error) {
	if err := validateInput(input); err != nil {
		return PurchaseOrder{}, err
	}
	var updated PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != StatusDraft {
			return fmt.Errorf("%w: purchase order %s is %s, only draft orders can be edited", shared.ErrInvalidState, order.OrderNumber, order.Status)
		}
		if err := checkReferences(ctx, tx, input); err != nil {
			return err
		}
		items := buildItems(input.Items)
		order.SupplierID = input.SupplierID
		order.Notes = strings.TrimSpace(input.Notes)
		order.ExpectedDate = input.ExpectedDate
		order.TotalAmount = orderTotal(items)
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
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "purchase_order.update", updated.ID, map[string]any{"total": updated.TotalAmount.String()})
	return updated, nil
}

// Submit moves a draft order to pending.
func (s *Service) Submit(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.transition(ctx, id, "purchase_order.submit", func(o PurchaseOrder) error {
		if o.Status != StatusDraft {
			return fmt.Errorf("%w: purchase order %s is %s, only draft orders can be submitted", shared.ErrInvalidState, o.OrderNumber, o.Status)
		}
		return nil
	}, StatusPending)
}

// Cancel abandons a draft or pending order. Orders that already received
// goods cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.transition(ctx, id, "purchase_order.cancel", func(o PurchaseOrder) error {
		if o.Status != StatusDraft && o.Status != StatusPending {
			return fmt.Errorf("%w: purchase order %s is %s and cannot be cancelled", shared.ErrInvalidState, o.OrderNumber, o.Status)
		}
		if o.AnyReceived() {
			return fmt.Errorf("%w: purchase order %s already received goods", shared.ErrInvalidState, o.OrderNumber)
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
			return fmt.Errorf("%w: purchase order %s is %s, only draft orders can be deleted", shared.ErrInvalidState, order.OrderNumber, order.Status)
		}
		number = order.OrderNumber
		return tx.DeleteOrder(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "purchase_order.delete", id, map[string]any{"number": number})
	return nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns order headers matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, error) {
	return s.repo.List(ctx, filter)
}

// ReceiveItems adds received quantities to order lines and books one new
// inventory batch per line, all in one transaction. A line naming an item
// outside the order fails the whole call.
func (s *Service) ReceiveItems(ctx context.Context, input ReceiveInput) (PurchaseOrder, error) {
	if err := validateReceive(input); err != nil {
		return PurchaseOrder{}, err
	}
	var (
		result  PurchaseOrder
		change  = shared.LedgerChange{Flow: shared.FlowPurchaseReceive}
		batches []int64
	)
	err := shared.RunOnce(ctx, s.idempotency, input.IdempotencyKey, "procurement.receive", func() error {
		return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			order, err := tx.GetForUpdate(ctx, input.PurchaseOrderID)
			if err != nil {
				return err
			}
			if !order.Status.Receivable() {
				return fmt.Errorf("%w: purchase order %s is %s, goods can only be received on pending or partial orders", shared.ErrInvalidState, order.OrderNumber, order.Status)
			}
			index := make(map[int64]int, len(order.Items))
			for i, it := range order.Items {
				index[it.ID] = i
			}
			ledger := tx.Ledger()
			for _, line := range input.Items {
				pos, ok := index[line.ItemID]
				if !ok {
					return fmt.Errorf("%w: item %d is not on purchase order %s", ErrItemNotFound, line.ItemID, order.OrderNumber)
				}
				item := &order.Items[pos]
				expiry := line.ExpiryDate
				item.ReceivedQuantity += line.ReceivedQuantity
				item.BatchNumber = line.BatchNumber
				item.ExpiryDate = &expiry
				if err := tx.UpdateReceived(ctx, *item); err != nil {
					return err
				}
				batch, err := ledger.InsertBatch(ctx, inventory.NewBatch{
					ProductID:       item.ProductID,
					BatchNumber:     line.BatchNumber,
					Quantity:        line.ReceivedQuantity,
					ExpiryDate:      expiry,
					PurchasePrice:   item.UnitPrice,
					SupplierID:      &order.SupplierID,
					PurchaseOrderID: &order.ID,
				})
				if err != nil {
					return err
				}
				batches = append(batches, batch.ID)
				change.BatchesCreated++
				change.UnitsIn += line.ReceivedQuantity
			}
			order.Status = StatusPartial
			if order.FullyReceived() {
				order.Status = StatusReceived
			}
			if err := tx.UpdateStatus(ctx, order.ID, order.Status); err != nil {
				return err
			}
			result = order
			return nil
		})
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "purchase_order.receive", result.ID, map[string]any{
		"number": result.OrderNumber, "status": string(result.Status), "batches": batches, "units": change.UnitsIn,
	})
	if s.observer != nil {
		s.observer.LedgerChanged(ctx, change)
	}
	return result, nil
}

func (s *Service) transition(ctx context.Context, id int64, action string, guard func(PurchaseOrder) error, to Status) (PurchaseOrder, error) {
	var result PurchaseOrder
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
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, action, id, map[string]any{"number": result.OrderNumber, "status": string(to)})
	return result, nil
}

func checkReferences(ctx context.Context, tx TxRepository, input CreateInput) error {
	ok, err := tx.SupplierExists(ctx, input.SupplierID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("supplier %d: %w", input.SupplierID, shared.ErrNotFound)
	}
	for _, it := range input.Items {
		ok, err := tx.ProductExists(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("product %d: %w", it.ProductID, shared.ErrNotFound)
		}
	}
	return nil
}

func buildItems(lines []ItemInput) []Item {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return items
}

func orderTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx).ID,
		Action:   action,
		Entity:   "purchase_order",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
		At:       s.now().UTC(),
	})
}
