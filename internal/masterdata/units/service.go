package units

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Unit, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Unit, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Unit, error) {
	u, err := s.build(input)
	if err != nil {
		return Unit{}, err
	}
	return s.repo.Create(ctx, u)
}

// Update edits a unit. The value is what products store, so it is frozen
// once any product uses it.
func (s *Service) Update(ctx context.Context, id int64, input Input) (Unit, error) {
	u, err := s.build(input)
	if err != nil {
		return Unit{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Unit{}, err
	}
	if current.Value != u.Value {
		used, err := s.repo.InUse(ctx, id)
		if err != nil {
			return Unit{}, err
		}
		if used {
			return Unit{}, fmt.Errorf("%w: unit %s is used by products", internalShared.ErrInUse, current.Value)
		}
	}
	u.ID = id
	return s.repo.Update(ctx, u)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	used, err := s.repo.InUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: unit is used by products", internalShared.ErrInUse)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(input Input) (Unit, error) {
	if err := s.validate(input); err != nil {
		return Unit{}, err
	}
	u := Unit{
		Value:    shared.NormalizeValue(input.Value),
		Label:    strings.TrimSpace(input.Label),
		IsActive: true,
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}
	return u, nil
}
