package transfers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pharmadist/pharmadist/internal/inventory"
	"github.com/pharmadist/pharmadist/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (StockTransfer, error)
	List(ctx context.Context, filter ListFilter) ([]StockTransfer, error)
}

// TxRepository exposes the statements run inside one transaction.
type TxRepository interface {
	NextNumber(ctx context.Context, t Type, at time.Time) (string, error)
	ProductExists(ctx context.Context, id int64) (bool, error)
	PartnerExists(ctx context.Context, partnerType PartnerType, id int64) (bool, error)
	InsertTransfer(ctx context.Context, transfer StockTransfer) (StockTransfer, error)
	UpdateTransfer(ctx context.Context, transfer StockTransfer) error
	UpdateStatus(ctx context.Context, id int64, status Status, confirmedAt *time.Time) error
	DeleteTransfer(ctx context.Context, id int64) error
	ReplaceItems(ctx context.Context, transferID int64, items []Item) ([]Item, error)
	GetForUpdate(ctx context.Context, id int64) (StockTransfer, error)
	Ledger() inventory.Ledger
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service drafts stock transfers and settles them against the batch ledger.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	observer shared.LedgerObserver
	now      func() time.Time
}

// NewService constructs the transfer service.
func NewService(repo RepositoryPort, audit AuditPort, observer shared.LedgerObserver) *Service {
	return &Service{repo: repo, audit: audit, observer: observer, now: time.Now}
}

// Create drafts a transfer numbered by its type prefix.
func (s *Service) Create(ctx context.Context, input CreateInput) (StockTransfer, error) {
	if err := validateInput(input); err != nil {
		return StockTransfer{}, err
	}
	dir, err := DirectionOf(input.TransferType)
	if err != nil {
		return StockTransfer{}, err
	}
	now := s.now()
	var created StockTransfer
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, err := prepareItems(ctx, tx, dir, input)
		if err != nil {
			return err
		}
		number, err := tx.NextNumber(ctx, input.TransferType, now)
		if err != nil {
			return err
		}
		transfer := fromInput(input, now)
		transfer.TransferNumber = number
		transfer.Status = StatusDraft
		transfer, err = tx.InsertTransfer(ctx, transfer)
		if err != nil {
			return err
		}
		transfer.Items, err = tx.ReplaceItems(ctx, transfer.ID, items)
		if err != nil {
			return err
		}
		created = transfer
		return nil
	})
	if err != nil {
		return StockTransfer{}, err
	}
	s.recordAudit(ctx, "stock_transfer.create", created.ID, map[string]any{
		"number": created.TransferNumber, "type": string(created.TransferType),
	})
	return created, nil
}

// Update replaces the header and lines of a draft transfer. The type cannot
// change since it fixed the document number.
func (s *Service) Update(ctx context.Context, id int64, input CreateInput) (StockTransfer, error) {
	if err := validateInput(input); err != nil {
		return StockTransfer{}, err
	}
	dir, err := DirectionOf(input.TransferType)
	if err != nil {
		return StockTransfer{}, err
	}
	var updated StockTransfer
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return fmt.Errorf("%w: transfer %s is %s, only drafts can be edited", shared.ErrInvalidState, current.TransferNumber, current.Status)
		}
		if current.TransferType != input.TransferType {
			return fmt.Errorf("%w: transfer type cannot change from %s", shared.ErrValidation, current.TransferType)
		}
		items, err := prepareItems(ctx, tx, dir, input)
		if err != nil {
			return err
		}
		transfer := fromInput(input, current.TransferDate)
		transfer.ID = current.ID
		transfer.TransferNumber = current.TransferNumber
		transfer.Status = current.Status
		transfer.CreatedAt = current.CreatedAt
		if err := tx.UpdateTransfer(ctx, transfer); err != nil {
			return err
		}
		transfer.Items, err = tx.ReplaceItems(ctx, transfer.ID, items)
		if err != nil {
			return err
		}
		updated = transfer
		return nil
	})
	if err != nil {
		return StockTransfer{}, err
	}
	s.recordAudit(ctx, "stock_transfer.update", updated.ID, map[string]any{"number": updated.TransferNumber})
	return updated, nil
}

// Delete removes a draft transfer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var number string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		transfer, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if transfer.Status != StatusDraft {
			return fmt.Errorf("%w: transfer %s is %s, only drafts can be deleted", shared.ErrInvalidState, transfer.TransferNumber, transfer.Status)
		}
		number = transfer.TransferNumber
		return tx.DeleteTransfer(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "stock_transfer.delete", id, map[string]any{"number": number})
	return nil
}

// Get returns a transfer with its lines.
func (s *Service) Get(ctx context.Context, id int64) (StockTransfer, error) {
	return s.repo.Get(ctx, id)
}

// List returns transfer headers matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]StockTransfer, error) {
	return s.repo.List(ctx, filter)
}

// Confirm settles every line of a draft transfer against the ledger in one
// transaction. Any failing line leaves the ledger and the transfer untouched.
func (s *Service) Confirm(ctx context.Context, id int64) (StockTransfer, error) {
	var (
		result  StockTransfer
		change  shared.LedgerChange
		batches []int64
	)
	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		transfer, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if transfer.Status != StatusDraft {
			return fmt.Errorf("%w: transfer %s is %s, only drafts can be confirmed", shared.ErrInvalidState, transfer.TransferNumber, transfer.Status)
		}
		dir, err := DirectionOf(transfer.TransferType)
		if err != nil {
			return err
		}
		change = shared.LedgerChange{Flow: shared.FlowTransferOut}
		if dir.Inbound() {
			change.Flow = shared.FlowTransferIn
		}
		ledger := tx.Ledger()
		for _, item := range transfer.Items {
			settled, err := dir.Settle(ctx, ledger, transfer, item)
			if err != nil {
				return err
			}
			batches = append(batches, settled.BatchID)
			if settled.Created {
				change.BatchesCreated++
			}
			if settled.Delta > 0 {
				change.UnitsIn += settled.Delta
			} else {
				change.UnitsOut -= settled.Delta
			}
		}
		confirmedAt := now.UTC()
		if err := tx.UpdateStatus(ctx, id, StatusConfirmed, &confirmedAt); err != nil {
			return err
		}
		transfer.Status = StatusConfirmed
		transfer.ConfirmedAt = &confirmedAt
		result = transfer
		return nil
	})
	if err != nil {
		return StockTransfer{}, err
	}
	s.recordAudit(ctx, "stock_transfer.confirm", result.ID, map[string]any{
		"number": result.TransferNumber, "type": string(result.TransferType), "batches": batches,
	})
	if s.observer != nil {
		s.observer.LedgerChanged(ctx, change)
	}
	return result, nil
}

// Cancel abandons a draft transfer. Drafts never touched the ledger, so
// nothing is reversed.
func (s *Service) Cancel(ctx context.Context, id int64) (StockTransfer, error) {
	var result StockTransfer
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		transfer, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if transfer.Status != StatusDraft {
			return fmt.Errorf("%w: transfer %s is %s, only drafts can be cancelled", shared.ErrInvalidState, transfer.TransferNumber, transfer.Status)
		}
		if err := tx.UpdateStatus(ctx, id, StatusCancelled, nil); err != nil {
			return err
		}
		transfer.Status = StatusCancelled
		result = transfer
		return nil
	})
	if err != nil {
		return StockTransfer{}, err
	}
	s.recordAudit(ctx, "stock_transfer.cancel", id, map[string]any{"number": result.TransferNumber})
	return result, nil
}

func prepareItems(ctx context.Context, tx TxRepository, dir Direction, input CreateInput) ([]Item, error) {
	if input.PartnerType != "" {
		ok, err := tx.PartnerExists(ctx, input.PartnerType, *input.PartnerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s %d: %w", input.PartnerType, *input.PartnerID, shared.ErrNotFound)
		}
	}
	ledger := tx.Ledger()
	items := make([]Item, 0, len(input.Items))
	for i, in := range input.Items {
		ok, err := tx.ProductExists(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("product %d: %w", in.ProductID, shared.ErrNotFound)
		}
		item := Item{
			ProductID:        in.ProductID,
			InventoryBatchID: in.InventoryBatchID,
			BatchNumber:      in.BatchNumber,
			Quantity:         in.Quantity,
			UnitPrice:        in.UnitPrice,
			Reason:           strings.TrimSpace(in.Reason),
		}
		if in.ExpiryDate != nil {
			item.ExpiryDate = *in.ExpiryDate
		}
		if err := dir.ValidateItem(ctx, ledger, &item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func fromInput(input CreateInput, date time.Time) StockTransfer {
	t := StockTransfer{
		TransferType:    input.TransferType,
		PartnerID:       input.PartnerID,
		PartnerType:     input.PartnerType,
		PurchaseOrderID: input.PurchaseOrderID,
		SalesOrderID:    input.SalesOrderID,
		Notes:           strings.TrimSpace(input.Notes),
		TransferDate:    date,
	}
	if input.TransferDate != nil {
		t.TransferDate = *input.TransferDate
	}
	return t
}

func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx).ID,
		Action:   action,
		Entity:   "stock_transfer",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
		At:       s.now().UTC(),
	})
}
