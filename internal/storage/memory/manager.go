// Package memory implements interfaces.StorageManager in process memory.
// It backs tests and single-process development runs; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
)

// ledgerState is the part of the dataset a unit of work can roll back.
type ledgerState struct {
	assets      map[string]*models.Asset
	investments map[string]*models.Investment
}

func newLedgerState() *ledgerState {
	return &ledgerState{
		assets:      make(map[string]*models.Asset),
		investments: make(map[string]*models.Investment),
	}
}

func (s *ledgerState) clone() *ledgerState {
	c := newLedgerState()
	for id, a := range s.assets {
		c.assets[id] = a.Clone()
	}
	for id, inv := range s.investments {
		c.investments[id] = inv.Clone()
	}
	return c
}

// Manager implements interfaces.StorageManager in memory.
type Manager struct {
	mu     sync.RWMutex // guards ledger and budget maps
	txMu   sync.Mutex   // serialises units of work
	ledger *ledgerState

	expenses map[string]*models.Expense
	incomes  map[string]*models.Income

	logger          *common.Logger
	assetStore      *AssetStore
	investmentStore *InvestmentStore
	budgetStore     *BudgetStore
}

// NewManager creates an empty in-memory StorageManager.
func NewManager(logger *common.Logger) *Manager {
	m := &Manager{
		ledger:   newLedgerState(),
		expenses: make(map[string]*models.Expense),
		incomes:  make(map[string]*models.Income),
		logger:   logger,
	}
	m.assetStore = &AssetStore{m: m}
	m.investmentStore = &InvestmentStore{m: m}
	m.budgetStore = &BudgetStore{m: m}
	return m
}

func (m *Manager) AssetStore() interfaces.AssetStore           { return m.assetStore }
func (m *Manager) InvestmentStore() interfaces.InvestmentStore { return m.investmentStore }
func (m *Manager) BudgetStore() interfaces.BudgetStore         { return m.budgetStore }
func (m *Manager) Backend() string                             { return common.BackendMemory }

// WithTx runs fn with units of work serialised. If fn fails the asset and
// investment maps are restored to their state before fn ran.
func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, stores interfaces.LedgerStores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snapshot := m.ledger.clone()
	m.mu.RUnlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.ledger = snapshot
		m.mu.Unlock()
		m.logger.Debug().Err(err).Msg("memory: unit of work rolled back")
		return err
	}
	return nil
}

// Close is a no-op.
func (m *Manager) Close() error {
	return nil
}

// byCreated orders records oldest first, breaking ties by ID.
func byCreated[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return id(items[i]) < id(items[j])
	})
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
