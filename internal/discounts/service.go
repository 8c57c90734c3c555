package discounts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pharmadist/pharmadist/internal/shared"
)

// RepositoryPort abstracts rule persistence.
type RepositoryPort interface {
	ListActiveBySalesman(ctx context.Context, salesmanID int64) ([]Rule, error)
	List(ctx context.Context, filter RuleFilter) ([]Rule, error)
	Get(ctx context.Context, id int64) (Rule, error)
	Create(ctx context.Context, rule Rule) (Rule, error)
	Update(ctx context.Context, rule Rule) (Rule, error)
	SetActive(ctx context.Context, id int64, active bool) (Rule, error)
	Delete(ctx context.Context, id int64) error
	SalesmanExists(ctx context.Context, id int64) (bool, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages discount rules and resolves them for orders.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// GetApplicableForOrder resolves the discount for each product of an order.
// Without a salesman or products the result is empty.
func (s *Service) GetApplicableForOrder(ctx context.Context, customerID int64, salesmanID *int64, productIDs []int64) (map[int64]Resolution, error) {
	if salesmanID == nil || len(productIDs) == 0 {
		return map[int64]Resolution{}, nil
	}
	rules, err := s.repo.ListActiveBySalesman(ctx, *salesmanID)
	if err != nil {
		return nil, fmt.Errorf("discounts: load rules: %w", err)
	}
	return ResolveAll(rules, customerID, productIDs), nil
}

// Create stores a new rule with its percent clamped to [0,100].
func (s *Service) Create(ctx context.Context, input RuleInput) (Rule, error) {
	if err := s.check(ctx, &input); err != nil {
		return Rule{}, err
	}
	rule := Rule{
		Name:            input.Name,
		DiscountType:    input.DiscountType,
		CustomerID:      input.CustomerID,
		ProductID:       input.ProductID,
		SalesmanID:      *input.SalesmanID,
		DiscountPercent: input.DiscountPercent,
		CreatedByStaff:  input.CreatedByStaff,
		IsActive:        true,
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if rule.CreatedByStaff == "" {
		rule.CreatedByStaff = shared.ActorFromContext(ctx).Label
	}
	created, err := s.repo.Create(ctx, rule)
	if err != nil {
		return Rule{}, err
	}
	s.record(ctx, "discounts.rule.create", created)
	return created, nil
}

// Update replaces the editable fields of a rule.
func (s *Service) Update(ctx context.Context, id int64, input RuleInput) (Rule, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Rule{}, err
	}
	if err := s.check(ctx, &input); err != nil {
		return Rule{}, err
	}
	existing.Name = input.Name
	existing.DiscountType = input.DiscountType
	existing.CustomerID = input.CustomerID
	existing.ProductID = input.ProductID
	existing.SalesmanID = *input.SalesmanID
	existing.DiscountPercent = input.DiscountPercent
	if input.CreatedByStaff != "" {
		existing.CreatedByStaff = input.CreatedByStaff
	}
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return Rule{}, err
	}
	s.record(ctx, "discounts.rule.update", updated)
	return updated, nil
}

// SetActive toggles a rule without touching its scope.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (Rule, error) {
	rule, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return Rule{}, err
	}
	s.record(ctx, "discounts.rule.set_active", rule)
	return rule, nil
}

// Get returns a rule by id.
func (s *Service) Get(ctx context.Context, id int64) (Rule, error) {
	return s.repo.Get(ctx, id)
}

// List returns rules matching filter.
func (s *Service) List(ctx context.Context, filter RuleFilter) ([]Rule, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes a rule. Orders created earlier keep their frozen discounts.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rule, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "discounts.rule.delete", rule)
	return nil
}

func (s *Service) check(ctx context.Context, input *RuleInput) error {
	if err := validateRuleInput(input); err != nil {
		return err
	}
	ok, err := s.repo.SalesmanExists(ctx, *input.SalesmanID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("salesman %d: %w", *input.SalesmanID, shared.ErrNotFound)
	}
	return nil
}

func (s *Service) record(ctx context.Context, action string, rule Rule) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorFromContext(ctx).ID,
		Action:   action,
		Entity:   "discount_rule",
		EntityID: strconv.FormatInt(rule.ID, 10),
		Meta: map[string]any{
			"salesman_id": rule.SalesmanID,
			"type":        string(rule.DiscountType),
			"percent":     rule.DiscountPercent.String(),
			"active":      rule.IsActive,
		},
		At: time.Now().UTC(),
	})
}
