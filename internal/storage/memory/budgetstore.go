package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
)

// BudgetStore implements interfaces.BudgetStore.
type BudgetStore struct {
	m *Manager
}

func (s *BudgetStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	e, ok := s.m.expenses[id]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, interfaces.ErrNotFound)
	}
	c := *e
	return &c, nil
}

func (s *BudgetStore) SaveExpense(ctx context.Context, expense *models.Expense) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c := *expense
	s.m.expenses[expense.ID] = &c
	return nil
}

func (s *BudgetStore) DeleteExpense(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.expenses[id]; !ok {
		return fmt.Errorf("expense %s: %w", id, interfaces.ErrNotFound)
	}
	delete(s.m.expenses, id)
	return nil
}

func (s *BudgetStore) ListExpenses(ctx context.Context, page models.PageRequest) (models.Page[*models.Expense], error) {
	s.m.mu.RLock()
	all := make([]*models.Expense, 0, len(s.m.expenses))
	for _, e := range s.m.expenses {
		c := *e
		all = append(all, &c)
	}
	s.m.mu.RUnlock()
	byCreated(all, func(e *models.Expense) time.Time { return e.CreatedAt }, func(e *models.Expense) string { return e.ID })
	return models.Paginate(all, page), nil
}

func (s *BudgetStore) GetIncome(ctx context.Context, id string) (*models.Income, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	i, ok := s.m.incomes[id]
	if !ok {
		return nil, fmt.Errorf("income %s: %w", id, interfaces.ErrNotFound)
	}
	c := *i
	return &c, nil
}

func (s *BudgetStore) SaveIncome(ctx context.Context, income *models.Income) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c := *income
	s.m.incomes[income.ID] = &c
	return nil
}

func (s *BudgetStore) DeleteIncome(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.incomes[id]; !ok {
		return fmt.Errorf("income %s: %w", id, interfaces.ErrNotFound)
	}
	delete(s.m.incomes, id)
	return nil
}

func (s *BudgetStore) ListIncomes(ctx context.Context, page models.PageRequest) (models.Page[*models.Income], error) {
	s.m.mu.RLock()
	all := make([]*models.Income, 0, len(s.m.incomes))
	for _, i := range s.m.incomes {
		c := *i
		all = append(all, &c)
	}
	s.m.mu.RUnlock()
	byCreated(all, func(i *models.Income) time.Time { return i.CreatedAt }, func(i *models.Income) string { return i.ID })
	return models.Paginate(all, page), nil
}

var _ interfaces.BudgetStore = (*BudgetStore)(nil)
