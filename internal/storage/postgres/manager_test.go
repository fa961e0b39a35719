package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	tcommon "github.com/bobmcallan/budgeter/tests/common"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testManager returns a Manager bound to a fresh schema on the shared container.
func testManager(t *testing.T) *Manager {
	t.Helper()
	pc := tcommon.StartPostgres(t)
	ctx := context.Background()

	schemaName := fmt.Sprintf("t_%s_%d", strings.ToLower(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())), time.Now().UnixNano()%100000)

	admin, err := pgxpool.New(ctx, pc.DSN("budgeter"))
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schemaName)
	admin.Close()
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(pc.DSN("budgeter"))
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schemaName
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	m, err := newManager(ctx, pool, common.NewSilentLogger(), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func testAsset(id, ticker, isin string) *models.Asset {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Asset{ID: id, Ticker: ticker, ISIN: isin, Name: ticker, AssetType: models.AssetTypeStock, InvestmentStyle: models.DefaultInvestmentStyle, CreatedAt: now, UpdatedAt: now}
}

func testInvestment(t *testing.T, id, assetID string, buys ...int64) *models.Investment {
	t.Helper()
	inv, err := models.NewInvestment(&models.Asset{ID: assetID}, models.USD, models.EUR)
	require.NoError(t, err)
	inv.ID = id
	now := time.Now().UTC().Truncate(time.Microsecond)
	inv.CreatedAt, inv.UpdatedAt = now, now
	for i, units := range buys {
		tx, err := models.NewInvestmentTransaction(models.TxBuy, decimal.NewFromInt(units), decimal.RequireFromString("150.25"), models.USD,
			models.WithFees(decimal.RequireFromString("1.5")),
			models.WithExchangeRate(decimal.RequireFromString("0.92")))
		require.NoError(t, err)
		tx.ID = fmt.Sprintf("%s-tx%d", id, i)
		tx.CreatedAt, tx.UpdatedAt = now, now
		require.NoError(t, inv.AddTransaction(tx, models.OversellReject))
	}
	return inv
}

func TestAssetStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	store := m.AssetStore()

	require.NoError(t, store.SaveAsset(ctx, testAsset("a1", "AAPL", "US0378331005")))
	require.NoError(t, store.SaveAsset(ctx, testAsset("a2", "MSFT", "")))
	// empty ISINs are stored as NULL and never collide
	require.NoError(t, store.SaveAsset(ctx, testAsset("a3", "TSLA", "")))

	assert.ErrorIs(t, store.SaveAsset(ctx, testAsset("a4", "AAPL", "")), interfaces.ErrConflict)
	assert.ErrorIs(t, store.SaveAsset(ctx, testAsset("a5", "APC", "US0378331005")), interfaces.ErrConflict)

	got, err := store.FindAssetByISIN(ctx, "us0378331005")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	got, err = store.GetAsset(ctx, "a2")
	require.NoError(t, err)
	assert.Empty(t, got.ISIN)

	_, err = store.FindAssetByTicker(ctx, "NVDA")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestInvestmentStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	require.NoError(t, m.AssetStore().SaveAsset(ctx, testAsset("a1", "AAPL", "")))
	store := m.InvestmentStore()

	inv := testInvestment(t, "i1", "a1", 10, 5)
	require.NoError(t, store.SaveInvestment(ctx, inv))

	got, err := store.FindInvestmentByTransaction(ctx, "i1-tx1")
	require.NoError(t, err)
	assert.Equal(t, "i1", got.ID)
	assert.True(t, inv.CostBasis.Equal(got.CostBasis))
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "i1-tx0", got.Transactions[0].ID)
	assert.True(t, got.Transactions[0].ExchangeRate.Decimal.Equal(decimal.RequireFromString("0.92")))
	assert.False(t, got.Transactions[0].RealizedGainLoss.Valid)
	assert.Equal(t, inv.LatestPrice.Valid, got.LatestPrice.Valid)

	// a second position for the same asset violates the unique constraint
	assert.ErrorIs(t, store.SaveInvestment(ctx, testInvestment(t, "i2", "a1", 1)), interfaces.ErrConflict)

	page, err := store.ListTransactions(ctx, models.PageRequest{Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)

	require.NoError(t, store.DeleteInvestment(ctx, "i1"))
	_, err = store.FindInvestmentByTransaction(ctx, "i1-tx0")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.ErrorIs(t, store.DeleteInvestment(ctx, "i1"), interfaces.ErrNotFound)
}

func TestWithTx_RollsBack(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	boom := errors.New("boom")

	err := m.WithTx(ctx, func(ctx context.Context, stores interfaces.LedgerStores) error {
		require.NoError(t, stores.AssetStore().SaveAsset(ctx, testAsset("a1", "AAPL", "")))
		// a conflict inside the unit of work does not poison it
		assert.ErrorIs(t, stores.AssetStore().SaveAsset(ctx, testAsset("a2", "AAPL", "")), interfaces.ErrConflict)
		require.NoError(t, stores.InvestmentStore().SaveInvestment(ctx, testInvestment(t, "i1", "a1", 3)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = m.AssetStore().GetAsset(ctx, "a1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = m.InvestmentStore().GetInvestment(ctx, "i1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestWithTx_Commits(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	require.NoError(t, m.WithTx(ctx, func(ctx context.Context, stores interfaces.LedgerStores) error {
		if err := stores.AssetStore().SaveAsset(ctx, testAsset("a1", "AAPL", "")); err != nil {
			return err
		}
		return stores.InvestmentStore().SaveInvestment(ctx, testInvestment(t, "i1", "a1", 3))
	}))

	invs, err := m.InvestmentStore().ListInvestments(ctx, models.PageRequest{})
	require.NoError(t, err)
	require.Len(t, invs.Items, 1)
	assert.Len(t, invs.Items[0].Transactions, 1)
}

// appendBuy adds a one unit buy with the given id to inv.
func appendBuy(inv *models.Investment, id string) error {
	tx, err := models.NewInvestmentTransaction(models.TxBuy, decimal.NewFromInt(1), decimal.RequireFromString("100"), models.USD)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	tx.ID, tx.CreatedAt, tx.UpdatedAt = id, now, now
	return inv.AddTransaction(tx, models.OversellReject)
}

func TestInvestmentStore_StaleSaveConflicts(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	require.NoError(t, m.AssetStore().SaveAsset(ctx, testAsset("a1", "AAPL", "")))
	store := m.InvestmentStore()
	inv := testInvestment(t, "i1", "a1", 10)
	require.NoError(t, store.SaveInvestment(ctx, inv))
	assert.Equal(t, int64(1), inv.Version)

	first, err := store.GetInvestment(ctx, "i1")
	require.NoError(t, err)
	second, err := store.GetInvestment(ctx, "i1")
	require.NoError(t, err)

	require.NoError(t, appendBuy(first, "first"))
	require.NoError(t, store.SaveInvestment(ctx, first))
	require.NoError(t, appendBuy(second, "second"))
	assert.ErrorIs(t, store.SaveInvestment(ctx, second), interfaces.ErrConflict)

	got, err := store.GetInvestment(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "first", got.Transactions[1].ID)
}

func TestWithTx_ConcurrentAppendsKeepEveryTransaction(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)
	require.NoError(t, m.AssetStore().SaveAsset(ctx, testAsset("a1", "AAPL", "")))
	require.NoError(t, m.InvestmentStore().SaveInvestment(ctx, testInvestment(t, "i1", "a1", 10)))

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			errs[w] = m.WithTx(ctx, func(ctx context.Context, stores interfaces.LedgerStores) error {
				inv, err := stores.InvestmentStore().FindInvestmentByAsset(ctx, "a1")
				if err != nil {
					return err
				}
				// widen the window between read and write
				time.Sleep(20 * time.Millisecond)
				if err := appendBuy(inv, fmt.Sprintf("writer-%d", w)); err != nil {
					return err
				}
				return stores.InvestmentStore().SaveInvestment(ctx, inv)
			})
		}(w)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := m.InvestmentStore().GetInvestment(ctx, "i1")
	require.NoError(t, err)
	assert.Len(t, got.Transactions, writers+1)
	assert.True(t, got.TotalUnits.Equal(decimal.NewFromInt(10+writers)))
	assert.Equal(t, int64(writers+1), got.Version)
}

func TestBudgetStore_Entries(t *testing.T) {
	ctx := context.Background()
	store := testManager(t).BudgetStore()
	now := time.Now().UTC().Truncate(time.Microsecond)

	e := &models.Expense{
		TransactionBase: models.TransactionBase{ID: "e1", Amount: decimal.RequireFromString("12.50"), Name: "Lunch", CreatedAt: now, UpdatedAt: now},
		Category:        models.ExpenseNeeds,
		Tags:            []models.Tag{models.TagFood, models.TagBarsAndRestaurants},
	}
	require.NoError(t, store.SaveExpense(ctx, e))
	got, err := store.GetExpense(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(e.Amount))
	assert.Equal(t, e.Tags, got.Tags)

	expenses, err := store.ListExpenses(ctx, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, expenses.TotalItems)

	require.NoError(t, store.DeleteExpense(ctx, "e1"))
	_, err = store.GetExpense(ctx, "e1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = store.GetIncome(ctx, "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}
