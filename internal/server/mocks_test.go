package server

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bobmcallan/budgeter/internal/app"
	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/shopspring/decimal"
)

// mockInvestmentService keeps transactions in a map keyed by id.
type mockInvestmentService struct {
	txs       map[string]*models.InvestmentTransaction
	createErr error
}

func newMockInvestmentService() *mockInvestmentService {
	return &mockInvestmentService{txs: map[string]*models.InvestmentTransaction{}}
}

func (m *mockInvestmentService) CreateTransaction(ctx context.Context, req models.InvestmentTransactionRequest) (*models.InvestmentTransaction, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tx, err := req.ToTransaction()
	if err != nil {
		return nil, err
	}
	tx.CalculateAmount(models.EUR)
	tx.ID = fmt.Sprintf("tx-%d", len(m.txs)+1)
	m.txs[tx.ID] = tx
	return tx, nil
}

func (m *mockInvestmentService) GetTransaction(ctx context.Context, id string) (*models.InvestmentTransaction, error) {
	tx, ok := m.txs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrTransactionNotFound, id)
	}
	return tx, nil
}

func (m *mockInvestmentService) ListTransactions(ctx context.Context, page models.PageRequest) (models.Page[*models.InvestmentTransaction], error) {
	all := make([]*models.InvestmentTransaction, 0, len(m.txs))
	for _, tx := range m.txs {
		all = append(all, tx)
	}
	return models.Paginate(all, page), nil
}

func (m *mockInvestmentService) UpdateTransaction(ctx context.Context, id string, req models.InvestmentTransactionRequest) (*models.InvestmentTransaction, error) {
	if _, err := m.GetTransaction(ctx, id); err != nil {
		return nil, err
	}
	tx, err := req.ToTransaction()
	if err != nil {
		return nil, err
	}
	tx.ID = id
	m.txs[id] = tx
	return tx, nil
}

func (m *mockInvestmentService) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := m.GetTransaction(ctx, id); err != nil {
		return err
	}
	delete(m.txs, id)
	return nil
}

func (m *mockInvestmentService) GetInvestment(ctx context.Context, id string) (*models.Investment, error) {
	if id != "inv-1" {
		return nil, fmt.Errorf("investment %s: %w", id, interfaces.ErrNotFound)
	}
	return &models.Investment{ID: "inv-1", AssetID: "asset-1", TotalUnits: decimal.NewFromInt(10)}, nil
}

func (m *mockInvestmentService) ListInvestments(ctx context.Context, page models.PageRequest) (models.Page[*models.Investment], error) {
	inv, _ := m.GetInvestment(ctx, "inv-1")
	return models.Paginate([]*models.Investment{inv}, page), nil
}

func (m *mockInvestmentService) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	return []*models.Asset{{ID: "asset-1", Ticker: "AAPL", Name: "Apple"}}, nil
}

// mockImportService records what it was given.
type mockImportService struct {
	fileName string
	body     string
	result   *models.ImportResult
	err      error
}

func (m *mockImportService) Import(ctx context.Context, fileName string, r io.Reader) (*models.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.fileName, m.body = fileName, string(data)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		m.result.FileName = fileName
		return m.result, nil
	}
	return &models.ImportResult{FileName: fileName, RowsRead: 1, Imported: 1}, nil
}

// mockBudgetService keeps expenses only; income calls report not found.
type mockBudgetService struct {
	expenses map[string]*models.Expense
}

func newMockBudgetService() *mockBudgetService {
	return &mockBudgetService{expenses: map[string]*models.Expense{}}
}

func (m *mockBudgetService) CreateExpense(ctx context.Context, req models.BudgetEntryRequest) (*models.Expense, error) {
	e, err := req.ToExpense()
	if err != nil {
		return nil, err
	}
	e.ID = fmt.Sprintf("exp-%d", len(m.expenses)+1)
	m.expenses[e.ID] = e
	return e, nil
}

func (m *mockBudgetService) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", id, interfaces.ErrNotFound)
	}
	return e, nil
}

func (m *mockBudgetService) ListExpenses(ctx context.Context, page models.PageRequest) (models.Page[*models.Expense], error) {
	all := make([]*models.Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		all = append(all, e)
	}
	return models.Paginate(all, page), nil
}

func (m *mockBudgetService) UpdateExpense(ctx context.Context, id string, req models.BudgetEntryRequest) (*models.Expense, error) {
	if _, err := m.GetExpense(ctx, id); err != nil {
		return nil, err
	}
	e, err := req.ToExpense()
	if err != nil {
		return nil, err
	}
	e.ID = id
	m.expenses[id] = e
	return e, nil
}

func (m *mockBudgetService) DeleteExpense(ctx context.Context, id string) error {
	if _, err := m.GetExpense(ctx, id); err != nil {
		return err
	}
	delete(m.expenses, id)
	return nil
}

func (m *mockBudgetService) CreateIncome(ctx context.Context, req models.BudgetEntryRequest) (*models.Income, error) {
	inc, err := req.ToIncome()
	if err != nil {
		return nil, err
	}
	inc.ID = "inc-1"
	return inc, nil
}

func (m *mockBudgetService) GetIncome(ctx context.Context, id string) (*models.Income, error) {
	return nil, fmt.Errorf("income %s: %w", id, interfaces.ErrNotFound)
}

func (m *mockBudgetService) ListIncomes(ctx context.Context, page models.PageRequest) (models.Page[*models.Income], error) {
	return models.Paginate([]*models.Income{}, page), nil
}

func (m *mockBudgetService) UpdateIncome(ctx context.Context, id string, req models.BudgetEntryRequest) (*models.Income, error) {
	return nil, fmt.Errorf("income %s: %w", id, interfaces.ErrNotFound)
}

func (m *mockBudgetService) DeleteIncome(ctx context.Context, id string) error {
	return fmt.Errorf("income %s: %w", id, interfaces.ErrNotFound)
}

// testServer builds a Server over mock services. Adjust cfg before calling if needed.
type testDeps struct {
	investments *mockInvestmentService
	imports     *mockImportService
	budget      *mockBudgetService
}

func newTestServer(cfg *common.Config) (*Server, *testDeps) {
	if cfg == nil {
		cfg = common.NewDefaultConfig()
	}
	deps := &testDeps{
		investments: newMockInvestmentService(),
		imports:     &mockImportService{},
		budget:      newMockBudgetService(),
	}
	a := &app.App{
		Config:            cfg,
		Logger:            common.NewSilentLogger(),
		InvestmentService: deps.investments,
		ImportService:     deps.imports,
		BudgetService:     deps.budget,
		StartupTime:       time.Now(),
	}
	return NewServer(a), deps
}

var (
	_ interfaces.InvestmentService = (*mockInvestmentService)(nil)
	_ interfaces.ImportService     = (*mockImportService)(nil)
	_ interfaces.BudgetService     = (*mockBudgetService)(nil)
)
