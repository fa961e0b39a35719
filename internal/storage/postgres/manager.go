// Package postgres implements the storage interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx. Begin on a pgx.Tx
// opens a savepoint.
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var (
	_ querier = (*pgxpool.Pool)(nil)
	_ querier = (pgx.Tx)(nil)
)

// conn bundles what every store needs to run a statement. lock is set inside
// WithTx so positions read there stay locked until the transaction ends.
type conn struct {
	q       querier
	logger  *common.Logger
	timeout time.Duration
	lock    bool
}

func (c conn) ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Manager implements interfaces.StorageManager using PostgreSQL.
type Manager struct {
	pool   *pgxpool.Pool
	logger *common.Logger
	conn   conn

	assetStore      *AssetStore
	investmentStore *InvestmentStore
	budgetStore     *BudgetStore
}

// NewManager connects to PostgreSQL, applies the schema and returns a StorageManager.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()
	cfg := config.Storage.Postgres

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	m, err := newManager(ctx, pool, logger, cfg.GetQueryTimeout())
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("PostgreSQL storage manager initialized")
	return m, nil
}

func newManager(ctx context.Context, pool *pgxpool.Pool, logger *common.Logger, timeout time.Duration) (*Manager, error) {
	for _, sql := range schema {
		if _, err := pool.Exec(ctx, sql); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	c := conn{q: pool, logger: logger, timeout: timeout}
	return &Manager{
		pool:            pool,
		logger:          logger,
		conn:            c,
		assetStore:      &AssetStore{conn: c},
		investmentStore: &InvestmentStore{conn: c},
		budgetStore:     &BudgetStore{conn: c},
	}, nil
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
	return common.BackendPostgres
}

// ledgerStores binds the stores to one database transaction.
type ledgerStores struct {
	assets      *AssetStore
	investments *InvestmentStore
}

func (l ledgerStores) AssetStore() interfaces.AssetStore           { return l.assets }
func (l ledgerStores) InvestmentStore() interfaces.InvestmentStore { return l.investments }

// WithTx runs fn inside a database transaction.
func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, stores interfaces.LedgerStores) error) error {
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		c := m.conn
		c.q = tx
		c.lock = true
		return fn(ctx, ledgerStores{
			assets:      &AssetStore{conn: c},
			investments: &InvestmentStore{conn: c},
		})
	})
}

func (m *Manager) Close() error {
	m.pool.Close()
	return nil
}

// mapError translates driver errors into store sentinels.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, interfaces.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %s: %w", what, pgErr.ConstraintName, interfaces.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
