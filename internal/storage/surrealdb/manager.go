package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger
	txMu   sync.Mutex // serialises units of work

	assetStore      *AssetStore
	investmentStore *InvestmentStore
	budgetStore     *BudgetStore
}

var schema = []string{
	"DEFINE TABLE IF NOT EXISTS asset SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS investment SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS investment_tx SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS expense SCHEMALESS",
	"DEFINE TABLE IF NOT EXISTS income SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS asset_ticker ON TABLE asset FIELDS ticker UNIQUE",
	"DEFINE INDEX IF NOT EXISTS investment_asset ON TABLE investment FIELDS asset_id UNIQUE",
	"DEFINE INDEX IF NOT EXISTS investment_tx_investment ON TABLE investment_tx FIELDS investment_id",
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()
	cfg := config.Storage.SurrealDB

	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	m, err := newManager(ctx, db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB storage manager initialized")
	return m, nil
}

// newManager defines the schema on an already selected database.
func newManager(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Manager, error) {
	// SurrealDB v3 errors on querying non-existent tables
	for _, sql := range schema {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to apply schema %q: %w", sql, err)
		}
	}

	m := &Manager{db: db, logger: logger}
	m.assetStore = NewAssetStore(db, logger)
	m.investmentStore = NewInvestmentStore(db, logger)
	m.budgetStore = NewBudgetStore(db, logger)
	return m, nil
}

func (m *Manager) AssetStore() interfaces.AssetStore {
	return m.assetStore
}

func (m *Manager) InvestmentStore() interfaces.InvestmentStore {
	return m.investmentStore
}

func (m *Manager) BudgetStore() interfaces.BudgetStore {
	return m.budgetStore
}

func (m *Manager) Backend() string {
	return common.BackendSurrealDB
}

// WithTx stages every write fn makes and commits them in one
// BEGIN/COMMIT query. Nothing reaches the database if fn fails.
func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, stores interfaces.LedgerStores) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := newTxStores(m)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit(ctx)
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

const errVersionConflict = "investment version conflict"

// isConflict reports whether msg describes a write that lost to another one.
func isConflict(msg string) bool {
	return strings.Contains(msg, "already contains") ||
		strings.Contains(msg, errVersionConflict) ||
		strings.Contains(msg, "read or write conflict")
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
