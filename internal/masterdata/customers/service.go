package customers

import (
	"context"
	"strings"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Customer, error) {
	v, err := s.build(input)
	if err != nil {
		return Customer{}, err
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) Update(ctx context.Context, id int64, input Input) (Customer, error) {
	v, err := s.build(input)
	if err != nil {
		return Customer{}, err
	}
	v.ID = id
	return s.repo.Update(ctx, v)
}

// Delete removes the customer. Records referenced by orders are kept and
// reported as in use.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(input Input) (Customer, error) {
	if err := s.validate(input); err != nil {
		return Customer{}, err
	}
	v := Customer{
		Code:         shared.NormalizeCode(input.Code),
		Name:         strings.TrimSpace(input.Name),
		CustomerType: strings.TrimSpace(input.CustomerType),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		Email:        shared.NormalizeValue(input.Email),
		IsActive:     true,
	}
	if input.IsActive != nil {
		v.IsActive = *input.IsActive
	}
	return v, nil
}
