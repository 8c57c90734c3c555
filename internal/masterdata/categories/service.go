package categories

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Category, error) {
	c, err := s.build(input)
	if err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, input Input) (Category, error) {
	c, err := s.build(input)
	if err != nil {
		return Category{}, err
	}
	c.ID = id
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) build(input Input) (Category, error) {
	if err := s.validate(input); err != nil {
		return Category{}, err
	}
	c := Category{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}
	return c, nil
}
