package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pharmadist/pharmadist/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetBatch(ctx context.Context, id int64) (Batch, error)
	ListBatches(ctx context.Context, filter BatchFilter) ([]Batch, error)
	ListExpiring(ctx context.Context, until time.Time) ([]ExpiringBatch, error)
	StockSummary(ctx context.Context) ([]StockLevel, error)
	ProductExists(ctx context.Context, id int64) (bool, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	ExpiryWarningDays int
}

// Service maintains inventory batches outside of the order flows.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	observer shared.LedgerObserver
	warnDays int
	now      func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, observer shared.LedgerObserver, cfg ServiceConfig) *Service {
	days := cfg.ExpiryWarningDays
	if days <= 0 {
		days = 90
	}
	return &Service{repo: repo, audit: audit, observer: observer, warnDays: days, now: time.Now}
}

// CreateBatch records a batch entered by hand. Batch numbers are not checked
// for uniqueness here.
func (s *Service) CreateBatch(ctx context.Context, input CreateBatchInput) (Batch, error) {
	input.BatchNumber = strings.TrimSpace(input.BatchNumber)
	if input.ProductID <= 0 {
		return Batch{}, fmt.Errorf("%w: product is required", shared.ErrValidation)
	}
	if input.BatchNumber == "" {
		return Batch{}, fmt.Errorf("%w: batch number is required", shared.ErrValidation)
	}
	if input.ExpiryDate.IsZero() {
		return Batch{}, fmt.Errorf("%w: expiry date is required", shared.ErrValidation)
	}
	if input.Quantity < 0 {
		return Batch{}, fmt.Errorf("%w: quantity cannot be negative", shared.ErrValidation)
	}
	if input.PurchasePrice.IsNegative() {
		return Batch{}, fmt.Errorf("%w: purchase price cannot be negative", shared.ErrValidation)
	}
	exists, err := s.repo.ProductExists(ctx, input.ProductID)
	if err != nil {
		return Batch{}, err
	}
	if !exists {
		return Batch{}, fmt.Errorf("product %d: %w", input.ProductID, shared.ErrNotFound)
	}

	var batch Batch
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		batch, err = tx.InsertBatch(ctx, NewBatch{
			ProductID:     input.ProductID,
			BatchNumber:   input.BatchNumber,
			Quantity:      input.Quantity,
			ExpiryDate:    input.ExpiryDate,
			PurchasePrice: input.PurchasePrice,
			SupplierID:    input.SupplierID,
			Location:      input.Location,
		})
		return err
	})
	if err != nil {
		return Batch{}, err
	}
	s.record(ctx, "inventory.batch.create", batch.ID, map[string]any{
		"product_id": batch.ProductID, "batch_number": batch.BatchNumber, "quantity": batch.Quantity,
	})
	s.notify(ctx, shared.LedgerChange{Flow: shared.FlowManual, BatchesCreated: 1, UnitsIn: batch.Quantity})
	return batch, nil
}

// UpdateBatch corrects location, expiry or quantity of a batch.
func (s *Service) UpdateBatch(ctx context.Context, id int64, input UpdateBatchInput) (Batch, error) {
	if input.Quantity != nil && *input.Quantity < 0 {
		return Batch{}, fmt.Errorf("%w: quantity cannot be negative", shared.ErrValidation)
	}
	if input.ExpiryDate != nil && input.ExpiryDate.IsZero() {
		return Batch{}, fmt.Errorf("%w: expiry date is required", shared.ErrValidation)
	}
	var before, after Batch
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		before, err = tx.GetBatchForUpdate(ctx, id)
		if err != nil {
			return err
		}
		after, err = tx.UpdateBatch(ctx, id, BatchUpdate(input))
		return err
	})
	if err != nil {
		return Batch{}, err
	}
	s.record(ctx, "inventory.batch.update", id, map[string]any{
		"quantity_before": before.Quantity, "quantity_after": after.Quantity,
	})
	if delta := after.Quantity - before.Quantity; delta != 0 {
		change := shared.LedgerChange{Flow: shared.FlowManual}
		if delta > 0 {
			change.UnitsIn = delta
		} else {
			change.UnitsOut = -delta
		}
		s.notify(ctx, change)
	}
	return after, nil
}

// RemoveBatch deletes a batch through the explicit removal endpoint.
func (s *Service) RemoveBatch(ctx context.Context, id int64) error {
	var removed Batch
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		removed, err = tx.GetBatchForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteBatch(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "inventory.batch.remove", id, map[string]any{
		"product_id": removed.ProductID, "batch_number": removed.BatchNumber, "quantity": removed.Quantity,
	})
	s.notify(ctx, shared.LedgerChange{Flow: shared.FlowManual, UnitsOut: removed.Quantity})
	return nil
}

// GetBatch returns a single batch.
func (s *Service) GetBatch(ctx context.Context, id int64) (Batch, error) {
	return s.repo.GetBatch(ctx, id)
}

// ListBatches lists batches, by default only those with stock left.
func (s *Service) ListBatches(ctx context.Context, filter BatchFilter) ([]Batch, error) {
	return s.repo.ListBatches(ctx, filter)
}

// ListExpiring returns batches with stock that expire within days. A
// non-positive days falls back to the configured warning window.
func (s *Service) ListExpiring(ctx context.Context, days int) ([]ExpiringBatch, error) {
	if days <= 0 {
		days = s.warnDays
	}
	today := truncateDay(s.now())
	until := today.AddDate(0, 0, days)
	batches, err := s.repo.ListExpiring(ctx, until)
	if err != nil {
		return nil, err
	}
	for i := range batches {
		batches[i].DaysLeft = int(truncateDay(batches[i].ExpiryDate).Sub(today).Hours() / 24)
	}
	return batches, nil
}

// StockSummary totals stock per product and flags products under min stock.
func (s *Service) StockSummary(ctx context.Context) ([]StockLevel, error) {
	levels, err := s.repo.StockSummary(ctx)
	if err != nil {
		return nil, err
	}
	for i := range levels {
		levels[i].Low = levels[i].Quantity < levels[i].MinStock
	}
	return levels, nil
}

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "inventory_batch",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       s.now().UTC(),
	})
}

func (s *Service) notify(ctx context.Context, change shared.LedgerChange) {
	if s.observer != nil {
		s.observer.LedgerChanged(ctx, change)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
