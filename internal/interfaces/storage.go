// Package interfaces defines service and storage contracts for Budgeter
package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/budgeter/internal/models"
)

var (
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	// Storage accessors
	AssetStore() AssetStore
	InvestmentStore() InvestmentStore
	BudgetStore() BudgetStore

	// WithTx runs fn as one unit of work. Stores handed to fn see each other's
	// writes; if fn returns an error none of them are kept.
	WithTx(ctx context.Context, fn func(ctx context.Context, stores LedgerStores) error) error

	// Backend names the storage engine ("memory", "surrealdb", "postgres").
	Backend() string

	// Lifecycle
	Close() error
}

// LedgerStores are the stores taking part in an investment unit of work.
type LedgerStores interface {
	AssetStore() AssetStore
	InvestmentStore() InvestmentStore
}

// AssetStore persists assets. Ticker and non-empty ISIN are unique.
type AssetStore interface {
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	FindAssetByISIN(ctx context.Context, isin string) (*models.Asset, error)
	FindAssetByTicker(ctx context.Context, ticker string) (*models.Asset, error)
	// SaveAsset returns ErrConflict when another asset holds the ticker or ISIN.
	SaveAsset(ctx context.Context, asset *models.Asset) error
	ListAssets(ctx context.Context) ([]*models.Asset, error)
}

// InvestmentStore persists investment aggregates together with their ordered transactions.
// Returned aggregates are copies; mutate and SaveInvestment to change them.
type InvestmentStore interface {
	GetInvestment(ctx context.Context, id string) (*models.Investment, error)
	FindInvestmentByAsset(ctx context.Context, assetID string) (*models.Investment, error)
	FindInvestmentByTransaction(ctx context.Context, transactionID string) (*models.Investment, error)
	// SaveInvestment increments inv.Version. It returns ErrConflict when the
	// stored position was saved by someone else since inv was loaded.
	SaveInvestment(ctx context.Context, inv *models.Investment) error
	DeleteInvestment(ctx context.Context, id string) error
	ListInvestments(ctx context.Context, page models.PageRequest) (models.Page[*models.Investment], error)
	ListTransactions(ctx context.Context, page models.PageRequest) (models.Page[*models.InvestmentTransaction], error)
}

// BudgetStore persists expenses and incomes.
type BudgetStore interface {
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	SaveExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, page models.PageRequest) (models.Page[*models.Expense], error)

	GetIncome(ctx context.Context, id string) (*models.Income, error)
	SaveIncome(ctx context.Context, income *models.Income) error
	DeleteIncome(ctx context.Context, id string) error
	ListIncomes(ctx context.Context, page models.PageRequest) (models.Page[*models.Income], error)
}
