package salesmen

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Salesman, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Salesman, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Salesman, error) {
	v, err := s.build(input)
	if err != nil {
		return Salesman{}, err
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) Update(ctx context.Context, id int64, input Input) (Salesman, error) {
	v, err := s.build(input)
	if err != nil {
		return Salesman{}, err
	}
	v.ID = id
	return s.repo.Update(ctx, v)
}

// Delete removes the salesman. Records referenced by orders are kept and
// reported as in use.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(input Input) (Salesman, error) {
	if err := s.validate(input); err != nil {
		return Salesman{}, err
	}
	v := Salesman{
		Code:     shared.NormalizeCode(input.Code),
		Name:     strings.TrimSpace(input.Name),
		Phone:    strings.TrimSpace(input.Phone),
		Email:    shared.NormalizeValue(input.Email),
		IsActive: true,
	}
	if input.IsActive != nil {
		v.IsActive = *input.IsActive
	}
	return v, nil
}
