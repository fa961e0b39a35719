// Package budget manages the expense and income ledgers
package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ interfaces.BudgetService = (*Service)(nil)

// Service implements BudgetService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new budget service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{storage: storage, logger: logger, now: time.Now}
}

func (s *Service) CreateExpense(ctx context.Context, req models.BudgetEntryRequest) (*models.Expense, error) {
	e, err := req.ToExpense()
	if err != nil {
		return nil, err
	}
	e.ID = uuid.NewString()
	e.Touch(s.now())
	if err := s.storage.BudgetStore().SaveExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}
	s.logger.Info().Str("expense_id", e.ID).Str("category", string(e.Category)).Str("amount", e.Amount.String()).Msg("Created expense")
	return e, nil
}

func (s *Service) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	return s.storage.BudgetStore().GetExpense(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, page models.PageRequest) (models.Page[*models.Expense], error) {
	return s.storage.BudgetStore().ListExpenses(ctx, page)
}

func (s *Service) UpdateExpense(ctx context.Context, id string, req models.BudgetEntryRequest) (*models.Expense, error) {
	existing, err := s.storage.BudgetStore().GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	e, err := req.ToExpense()
	if err != nil {
		return nil, err
	}
	e.ID = id
	e.CreatedAt = existing.CreatedAt
	e.Touch(s.now())
	if err := s.storage.BudgetStore().SaveExpense(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save expense %s: %w", id, err)
	}
	return e, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if err := s.storage.BudgetStore().DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("expense_id", id).Msg("Deleted expense")
	return nil
}

func (s *Service) CreateIncome(ctx context.Context, req models.BudgetEntryRequest) (*models.Income, error) {
	i, err := req.ToIncome()
	if err != nil {
		return nil, err
	}
	i.ID = uuid.NewString()
	i.Touch(s.now())
	if err := s.storage.BudgetStore().SaveIncome(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to save income: %w", err)
	}
	s.logger.Info().Str("income_id", i.ID).Str("category", string(i.Category)).Str("amount", i.Amount.String()).Msg("Created income")
	return i, nil
}

func (s *Service) GetIncome(ctx context.Context, id string) (*models.Income, error) {
	return s.storage.BudgetStore().GetIncome(ctx, id)
}

func (s *Service) ListIncomes(ctx context.Context, page models.PageRequest) (models.Page[*models.Income], error) {
	return s.storage.BudgetStore().ListIncomes(ctx, page)
}

func (s *Service) UpdateIncome(ctx context.Context, id string, req models.BudgetEntryRequest) (*models.Income, error) {
	existing, err := s.storage.BudgetStore().GetIncome(ctx, id)
	if err != nil {
		return nil, err
	}
	i, err := req.ToIncome()
	if err != nil {
		return nil, err
	}
	i.ID = id
	i.CreatedAt = existing.CreatedAt
	i.Touch(s.now())
	if err := s.storage.BudgetStore().SaveIncome(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to save income %s: %w", id, err)
	}
	return i, nil
}

func (s *Service) DeleteIncome(ctx context.Context, id string) error {
	if err := s.storage.BudgetStore().DeleteIncome(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("income_id", id).Msg("Deleted income")
	return nil
}
