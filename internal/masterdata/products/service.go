package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
	internalShared "github.com/pharmadist/pharmadist/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a product. SKUs are stored upper case and must be unique.
func (s *Service) Create(ctx context.Context, input Input) (Product, error) {
	p, err := s.build(ctx, input)
	if err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, input Input) (Product, error) {
	p, err := s.build(ctx, input)
	if err != nil {
		return Product{}, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

// Delete removes a product that never had stock. Batches keep the product
// alive even at zero quantity.
func (s *Service) Delete(ctx context.Context, id int64) error {
	stocked, err := s.repo.HasBatches(ctx, id)
	if err != nil {
		return err
	}
	if stocked {
		return fmt.Errorf("%w: product has inventory batches", internalShared.ErrInUse)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(ctx context.Context, input Input) (Product, error) {
	if err := s.validate(input); err != nil {
		return Product{}, err
	}
	p := Product{
		Name:          strings.TrimSpace(input.Name),
		SKU:           shared.NormalizeCode(input.SKU),
		CategoryID:    input.CategoryID,
		Unit:          shared.NormalizeValue(input.Unit),
		PurchasePrice: input.PurchasePrice,
		SalePrice:     input.SalePrice,
		MinStock:      input.MinStock,
		IsActive:      true,
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	ok, err := s.repo.UnitExists(ctx, p.Unit)
	if err != nil {
		return Product{}, err
	}
	if !ok {
		return Product{}, fmt.Errorf("%w: unknown unit %q", internalShared.ErrValidation, p.Unit)
	}
	return p, nil
}
