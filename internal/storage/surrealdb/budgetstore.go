package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// BudgetStore implements interfaces.BudgetStore using the expense and income tables.
type BudgetStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewBudgetStore creates a new BudgetStore.
func NewBudgetStore(db *surrealdb.DB, logger *common.Logger) *BudgetStore {
	return &BudgetStore{db: db, logger: logger}
}

func (s *BudgetStore) get(ctx context.Context, table, id string) (*entryRecord, error) {
	sql := "SELECT " + entrySelectFields + " FROM $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(table, id)}
	results, err := surrealdb.Query[[]entryRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", table, id, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, id, interfaces.ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

func (s *BudgetStore) save(ctx context.Context, table string, r entryRecord) error {
	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{
		"rid":    surrealmodels.NewRecordID(table, r.EntryID),
		"record": r,
	}
	if _, err := surrealdb.Query[[]entryRecord](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save %s %s: %w", table, r.EntryID, err)
	}
	return nil
}

func (s *BudgetStore) delete(ctx context.Context, table, id string) error {
	if _, err := s.get(ctx, table, id); err != nil {
		return err
	}
	vars := map[string]any{"rid": surrealmodels.NewRecordID(table, id)}
	if _, err := surrealdb.Query[any](ctx, s.db, "DELETE $rid", vars); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", table, id, err)
	}
	return nil
}

func (s *BudgetStore) list(ctx context.Context, table string, page models.PageRequest) ([]entryRecord, int, error) {
	page = page.Normalize()
	total, err := count(ctx, s.db, table)
	if err != nil {
		return nil, 0, err
	}
	sql := "SELECT " + entrySelectFields + " FROM " + table + " ORDER BY created_at ASC, entry_id ASC LIMIT $limit START $start"
	vars := map[string]any{"limit": page.Size, "start": page.Offset()}
	results, err := surrealdb.Query[[]entryRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	if results == nil || len(*results) == 0 {
		return nil, total, nil
	}
	return (*results)[0].Result, total, nil
}

func toExpense(r *entryRecord) (*models.Expense, error) {
	base, tags, err := r.base()
	if err != nil {
		return nil, err
	}
	return &models.Expense{TransactionBase: base, Category: models.ExpenseCategory(r.Category), Tags: tags}, nil
}

func toIncome(r *entryRecord) (*models.Income, error) {
	base, tags, err := r.base()
	if err != nil {
		return nil, err
	}
	return &models.Income{TransactionBase: base, Category: models.IncomeCategory(r.Category), Tags: tags}, nil
}

func (s *BudgetStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	r, err := s.get(ctx, "expense", id)
	if err != nil {
		return nil, err
	}
	return toExpense(r)
}

func (s *BudgetStore) SaveExpense(ctx context.Context, expense *models.Expense) error {
	return s.save(ctx, "expense", toEntryRecord(expense.TransactionBase, string(expense.Category), expense.Tags))
}

func (s *BudgetStore) DeleteExpense(ctx context.Context, id string) error {
	return s.delete(ctx, "expense", id)
}

func (s *BudgetStore) ListExpenses(ctx context.Context, page models.PageRequest) (models.Page[*models.Expense], error) {
	records, total, err := s.list(ctx, "expense", page)
	if err != nil {
		return models.Page[*models.Expense]{}, err
	}
	items := make([]*models.Expense, 0, len(records))
	for i := range records {
		e, err := toExpense(&records[i])
		if err != nil {
			return models.Page[*models.Expense]{}, err
		}
		items = append(items, e)
	}
	return models.NewPage(items, page, total), nil
}

func (s *BudgetStore) GetIncome(ctx context.Context, id string) (*models.Income, error) {
	r, err := s.get(ctx, "income", id)
	if err != nil {
		return nil, err
	}
	return toIncome(r)
}

func (s *BudgetStore) SaveIncome(ctx context.Context, income *models.Income) error {
	return s.save(ctx, "income", toEntryRecord(income.TransactionBase, string(income.Category), income.Tags))
}

func (s *BudgetStore) DeleteIncome(ctx context.Context, id string) error {
	return s.delete(ctx, "income", id)
}

func (s *BudgetStore) ListIncomes(ctx context.Context, page models.PageRequest) (models.Page[*models.Income], error) {
	records, total, err := s.list(ctx, "income", page)
	if err != nil {
		return models.Page[*models.Income]{}, err
	}
	items := make([]*models.Income, 0, len(records))
	for i := range records {
		inc, err := toIncome(&records[i])
		if err != nil {
			return models.Page[*models.Income]{}, err
		}
		items = append(items, inc)
	}
	return models.NewPage(items, page, total), nil
}

var _ interfaces.BudgetStore = (*BudgetStore)(nil)
