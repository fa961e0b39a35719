package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/budgeter/internal/models"
)

// AssetService resolves asset references to persisted assets
type AssetService interface {
	// FindOrCreate looks the asset up by ISIN, then ticker, and creates it when absent.
	// It works against the store passed in so it can join the caller's unit of work.
	FindOrCreate(ctx context.Context, store AssetStore, ref models.AssetRef) (*models.Asset, error)
}

// InvestmentService records investment transactions against their positions
type InvestmentService interface {
	CreateTransaction(ctx context.Context, req models.InvestmentTransactionRequest) (*models.InvestmentTransaction, error)
	GetTransaction(ctx context.Context, id string) (*models.InvestmentTransaction, error)
	ListTransactions(ctx context.Context, page models.PageRequest) (models.Page[*models.InvestmentTransaction], error)
	UpdateTransaction(ctx context.Context, id string, req models.InvestmentTransactionRequest) (*models.InvestmentTransaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	GetInvestment(ctx context.Context, id string) (*models.Investment, error)
	ListInvestments(ctx context.Context, page models.PageRequest) (models.Page[*models.Investment], error)
	ListAssets(ctx context.Context) ([]*models.Asset, error)
}

// ImportService imports broker exports
type ImportService interface {
	// Import reads a broker CSV export and records each valid row.
	Import(ctx context.Context, fileName string, r io.Reader) (*models.ImportResult, error)
}

// BudgetService manages expenses and incomes
type BudgetService interface {
	CreateExpense(ctx context.Context, req models.BudgetEntryRequest) (*models.Expense, error)
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	ListExpenses(ctx context.Context, page models.PageRequest) (models.Page[*models.Expense], error)
	UpdateExpense(ctx context.Context, id string, req models.BudgetEntryRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	CreateIncome(ctx context.Context, req models.BudgetEntryRequest) (*models.Income, error)
	GetIncome(ctx context.Context, id string) (*models.Income, error)
	ListIncomes(ctx context.Context, page models.PageRequest) (models.Page[*models.Income], error)
	UpdateIncome(ctx context.Context, id string, req models.BudgetEntryRequest) (*models.Income, error)
	DeleteIncome(ctx context.Context, id string) error
}
