package postgres

import (
	"context"
	"fmt"

	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/jackc/pgx/v5"
)

const entryColumns = "id, amount::text, name, description, category, tags, created_at, updated_at"

// BudgetStore implements interfaces.BudgetStore on the expenses and incomes tables.
type BudgetStore struct {
	conn
}

type entryRow struct {
	base     models.TransactionBase
	category string
	tags     []models.Tag
}

func scanEntry(row pgx.Row) (entryRow, error) {
	var (
		e      entryRow
		amount string
		tags   []string
	)
	if err := row.Scan(&e.base.ID, &amount, &e.base.Name, &e.base.Description, &e.category, &tags, &e.base.CreatedAt, &e.base.UpdatedAt); err != nil {
		return e, err
	}
	n := numerics{}
	e.base.Amount = n.decimal(amount)
	e.tags = make([]models.Tag, len(tags))
	for i, t := range tags {
		e.tags[i] = models.Tag(t)
	}
	return e, n.err
}

func tagStrings(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func (s *BudgetStore) get(ctx context.Context, table, id string) (entryRow, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	e, err := scanEntry(s.q.QueryRow(ctx, "SELECT "+entryColumns+" FROM "+table+" WHERE id = $1", id))
	return e, mapError(err, table+" "+id)
}

func (s *BudgetStore) save(ctx context.Context, table string, base models.TransactionBase, category string, tags []models.Tag) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	_, err := s.q.Exec(ctx, `
		INSERT INTO `+table+` (id, amount, name, description, category, tags, created_at, updated_at)
		VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			amount      = EXCLUDED.amount,
			name        = EXCLUDED.name,
			description = EXCLUDED.description,
			category    = EXCLUDED.category,
			tags        = EXCLUDED.tags,
			updated_at  = EXCLUDED.updated_at`,
		base.ID, base.Amount.String(), base.Name, base.Description, category, tagStrings(tags), base.CreatedAt, base.UpdatedAt)
	return mapError(err, "save "+table+" "+base.ID)
}

func (s *BudgetStore) delete(ctx context.Context, table, id string) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	tag, err := s.q.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return mapError(err, "delete "+table+" "+id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", table, id, interfaces.ErrNotFound)
	}
	return nil
}

func (s *BudgetStore) list(ctx context.Context, table string, page models.PageRequest) ([]entryRow, int, error) {
	page = page.Normalize()
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	var total int
	if err := s.q.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&total); err != nil {
		return nil, 0, mapError(err, "count "+table)
	}
	rows, err := s.q.Query(ctx, "SELECT "+entryColumns+" FROM "+table+" ORDER BY created_at, id LIMIT $1 OFFSET $2", page.Size, page.Offset())
	if err != nil {
		return nil, 0, mapError(err, "list "+table)
	}
	defer rows.Close()

	var out []entryRow
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, mapError(err, "scan "+table)
		}
		out = append(out, e)
	}
	return out, total, mapError(rows.Err(), "list "+table)
}

func (e entryRow) expense() *models.Expense {
	return &models.Expense{TransactionBase: e.base, Category: models.ExpenseCategory(e.category), Tags: e.tags}
}

func (e entryRow) income() *models.Income {
	return &models.Income{TransactionBase: e.base, Category: models.IncomeCategory(e.category), Tags: e.tags}
}

func (s *BudgetStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	e, err := s.get(ctx, "expenses", id)
	if err != nil {
		return nil, err
	}
	return e.expense(), nil
}

func (s *BudgetStore) SaveExpense(ctx context.Context, expense *models.Expense) error {
	return s.save(ctx, "expenses", expense.TransactionBase, string(expense.Category), expense.Tags)
}

func (s *BudgetStore) DeleteExpense(ctx context.Context, id string) error {
	return s.delete(ctx, "expenses", id)
}

func (s *BudgetStore) ListExpenses(ctx context.Context, page models.PageRequest) (models.Page[*models.Expense], error) {
	rows, total, err := s.list(ctx, "expenses", page)
	if err != nil {
		return models.Page[*models.Expense]{}, err
	}
	items := make([]*models.Expense, len(rows))
	for i, e := range rows {
		items[i] = e.expense()
	}
	return models.NewPage(items, page, total), nil
}

func (s *BudgetStore) GetIncome(ctx context.Context, id string) (*models.Income, error) {
	e, err := s.get(ctx, "incomes", id)
	if err != nil {
		return nil, err
	}
	return e.income(), nil
}

func (s *BudgetStore) SaveIncome(ctx context.Context, income *models.Income) error {
	return s.save(ctx, "incomes", income.TransactionBase, string(income.Category), income.Tags)
}

func (s *BudgetStore) DeleteIncome(ctx context.Context, id string) error {
	return s.delete(ctx, "incomes", id)
}

func (s *BudgetStore) ListIncomes(ctx context.Context, page models.PageRequest) (models.Page[*models.Income], error) {
	rows, total, err := s.list(ctx, "incomes", page)
	if err != nil {
		return models.Page[*models.Income]{}, err
	}
	items := make([]*models.Income, len(rows))
	for i, e := range rows {
		items[i] = e.income()
	}
	return models.NewPage(items, page, total), nil
}

var _ interfaces.BudgetStore = (*BudgetStore)(nil)
