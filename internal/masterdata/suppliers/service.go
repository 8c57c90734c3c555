package suppliers

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Supplier, error) {
	v, err := s.build(input)
	if err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) Update(ctx context.Context, id int64, input Input) (Supplier, error) {
	v, err := s.build(input)
	if err != nil {
		return Supplier{}, err
	}
	v.ID = id
	return s.repo.Update(ctx, v)
}

// Delete removes the supplier. Records referenced by orders are kept and
// reported as in use.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(input Input) (Supplier, error) {
	if err := s.validate(input); err != nil {
		return Supplier{}, err
	}
	v := Supplier{
		Code:     shared.NormalizeCode(input.Code),
		Name:     strings.TrimSpace(input.Name),
		Contact:  strings.TrimSpace(input.Contact),
		Phone:    strings.TrimSpace(input.Phone),
		Address:  strings.TrimSpace(input.Address),
		Email:    shared.NormalizeValue(input.Email),
		IsActive: true,
	}
	if input.IsActive != nil {
		v.IsActive = *input.IsActive
	}
	return v, nil
}
