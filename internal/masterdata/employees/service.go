package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pharmadist/pharmadist/internal/masterdata/shared"
	internalShared "github.com/pharmadist/pharmadist/internal/shared"
)

// ErrInvalidCredentials is returned for an unknown code, an inactive
// employee, a missing password or a wrong one alike.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid employee code or password", internalShared.ErrValidation)

type Service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Employee, int, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Employee, error) {
	e, err := s.build(input)
	if err != nil {
		return Employee{}, err
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) Update(ctx context.Context, id int64, input Input) (Employee, error) {
	e, err := s.build(input)
	if err != nil {
		return Employee{}, err
	}
	e.ID = id
	return s.repo.Update(ctx, e)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// VerifyPassword checks the password of the active employee with code.
func (s *Service) VerifyPassword(ctx context.Context, code, password string) (Employee, error) {
	e, err := s.repo.GetByCode(ctx, shared.NormalizeCode(code))
	if err != nil {
		if errors.Is(err, internalShared.ErrNotFound) {
			return Employee{}, ErrInvalidCredentials
		}
		return Employee{}, err
	}
	if !e.IsActive || e.passwordHash == "" {
		return Employee{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.passwordHash), []byte(password)); err != nil {
		return Employee{}, ErrInvalidCredentials
	}
	return e, nil
}

func (s *Service) build(input Input) (Employee, error) {
	if err := s.validate(input); err != nil {
		return Employee{}, err
	}
	e := Employee{
		Code:     shared.NormalizeCode(input.Code),
		Name:     strings.TrimSpace(input.Name),
		Position: strings.TrimSpace(input.Position),
		Phone:    strings.TrimSpace(input.Phone),
		Email:    shared.NormalizeValue(input.Email),
		IsActive: true,
	}
	if input.IsActive != nil {
		e.IsActive = *input.IsActive
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
		if err != nil {
			return Employee{}, fmt.Errorf("hash password: %w", err)
		}
		e.passwordHash = string(hash)
		e.HasPassword = true
	}
	return e, nil
}
