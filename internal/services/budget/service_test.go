package budget

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/bobmcallan/budgeter/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	logger := common.NewSilentLogger()
	return NewService(memory.NewManager(logger), logger)
}

func TestExpenseLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	e, err := svc.CreateExpense(ctx, models.BudgetEntryRequest{Amount: decimal.NewFromInt(40), Name: "Groceries", Category: "NEEDS", Tags: []string{"FOOD"}})
	require.NoError(t, err)
	assert.Equal(t, clock, e.CreatedAt)

	clock = clock.Add(time.Hour)
	updated, err := svc.UpdateExpense(ctx, e.ID, models.BudgetEntryRequest{Amount: decimal.NewFromInt(45), Name: "Groceries", Category: "NEEDS"})
	require.NoError(t, err)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock, updated.UpdatedAt)
	assert.True(t, decimal.NewFromInt(45).Equal(updated.Amount))

	page, err := svc.ListExpenses(ctx, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)

	require.NoError(t, svc.DeleteExpense(ctx, e.ID))
	_, err = svc.GetExpense(ctx, e.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestIncomeValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.CreateIncome(ctx, models.BudgetEntryRequest{Amount: decimal.NewFromInt(1), Name: "x", Category: "LOTTERY"})
	assert.ErrorIs(t, err, models.ErrInvalidBudgetEntry)

	_, err = svc.UpdateIncome(ctx, "missing", models.BudgetEntryRequest{Amount: decimal.NewFromInt(1), Name: "x", Category: "SALARY"})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	i, err := svc.CreateIncome(ctx, models.BudgetEntryRequest{Amount: decimal.NewFromInt(3000), Name: "Salary", Category: "salary"})
	require.NoError(t, err)
	got, err := svc.GetIncome(ctx, i.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncomeSalary, got.Category)
}
