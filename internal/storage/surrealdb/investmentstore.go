package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/budgeter/internal/common"
	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// InvestmentStore implements interfaces.InvestmentStore using SurrealDB.
// Transactions live in investment_tx keyed by investment_id and ordered by seq.
type InvestmentStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewInvestmentStore creates a new InvestmentStore.
func NewInvestmentStore(db *surrealdb.DB, logger *common.Logger) *InvestmentStore {
	return &InvestmentStore{db: db, logger: logger}
}

type countResult struct {
	Cnt int `json:"cnt"`
}

func count(ctx context.Context, db *surrealdb.DB, table string) (int, error) {
	sql := "SELECT count() AS cnt FROM " + table + " GROUP ALL"
	results, err := surrealdb.Query[[]countResult](ctx, db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Cnt, nil
}

func (s *InvestmentStore) transactions(ctx context.Context, investmentID string) ([]*models.InvestmentTransaction, error) {
	sql := "SELECT " + txSelectFields + " FROM investment_tx WHERE investment_id = $id ORDER BY seq ASC"
	results, err := surrealdb.Query[[]txRecord](ctx, s.db, sql, map[string]any{"id": investmentID})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions of investment %s: %w", investmentID, err)
	}
	txs := []*models.InvestmentTransaction{}
	if results == nil || len(*results) == 0 {
		return txs, nil
	}
	for _, r := range (*results)[0].Result {
		tx, err := r.toModel()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (s *InvestmentStore) queryOne(ctx context.Context, where string, vars map[string]any, what string) (*models.Investment, error) {
	sql := "SELECT " + investmentSelectFields + " FROM investment WHERE " + where + " LIMIT 1"
	results, err := surrealdb.Query[[]investmentRecord](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query investment %s: %w", what, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("investment %s: %w", what, interfaces.ErrNotFound)
	}
	inv, err := (*results)[0].Result[0].toModel()
	if err != nil {
		return nil, err
	}
	if inv.Transactions, err = s.transactions(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvestmentStore) GetInvestment(ctx context.Context, id string) (*models.Investment, error) {
	return s.queryOne(ctx, "investment_id = $id", map[string]any{"id": id}, id)
}

func (s *InvestmentStore) FindInvestmentByAsset(ctx context.Context, assetID string) (*models.Investment, error) {
	return s.queryOne(ctx, "asset_id = $asset_id", map[string]any{"asset_id": assetID}, "for asset "+assetID)
}

func (s *InvestmentStore) FindInvestmentByTransaction(ctx context.Context, transactionID string) (*models.Investment, error) {
	sql := "SELECT investment_id FROM investment_tx WHERE tx_id = $id LIMIT 1"
	type owner struct {
		InvestmentID string `json:"investment_id"`
	}
	results, err := surrealdb.Query[[]owner](ctx, s.db, sql, map[string]any{"id": transactionID})
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("investment holding transaction %s: %w", transactionID, interfaces.ErrNotFound)
	}
	return s.GetInvestment(ctx, (*results)[0].Result[0].InvestmentID)
}

func (s *InvestmentStore) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	b := newBatch()
	b.saveInvestment(inv)
	if err := b.exec(ctx, s.db); err != nil {
		return fmt.Errorf("failed to save investment %s: %w", inv.ID, err)
	}
	inv.Version++
	return nil
}

func (s *InvestmentStore) DeleteInvestment(ctx context.Context, id string) error {
	if _, err := s.GetInvestment(ctx, id); err != nil {
		return err
	}
	b := newBatch()
	b.deleteInvestment(id)
	if err := b.exec(ctx, s.db); err != nil {
		return fmt.Errorf("failed to delete investment %s: %w", id, err)
	}
	return nil
}

func (s *InvestmentStore) ListInvestments(ctx context.Context, page models.PageRequest) (models.Page[*models.Investment], error) {
	page = page.Normalize()
	total, err := count(ctx, s.db, "investment")
	if err != nil {
		return models.Page[*models.Investment]{}, err
	}

	sql := "SELECT " + investmentSelectFields + " FROM investment ORDER BY created_at ASC, investment_id ASC LIMIT $limit START $start"
	vars := map[string]any{"limit": page.Size, "start": page.Offset()}
	results, err := surrealdb.Query[[]investmentRecord](ctx, s.db, sql, vars)
	if err != nil {
		return models.Page[*models.Investment]{}, fmt.Errorf("failed to list investments: %w", err)
	}

	items := make([]*models.Investment, 0)
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			inv, err := r.toModel()
			if err != nil {
				return models.Page[*models.Investment]{}, err
			}
			if inv.Transactions, err = s.transactions(ctx, inv.ID); err != nil {
				return models.Page[*models.Investment]{}, err
			}
			items = append(items, inv)
		}
	}
	return models.NewPage(items, page, total), nil
}

func (s *InvestmentStore) ListTransactions(ctx context.Context, page models.PageRequest) (models.Page[*models.InvestmentTransaction], error) {
	page = page.Normalize()
	total, err := count(ctx, s.db, "investment_tx")
	if err != nil {
		return models.Page[*models.InvestmentTransaction]{}, err
	}

	sql := "SELECT " + txSelectFields + " FROM investment_tx ORDER BY created_at ASC, tx_id ASC LIMIT $limit START $start"
	vars := map[string]any{"limit": page.Size, "start": page.Offset()}
	results, err := surrealdb.Query[[]txRecord](ctx, s.db, sql, vars)
	if err != nil {
		return models.Page[*models.InvestmentTransaction]{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	items := make([]*models.InvestmentTransaction, 0)
	if results != nil && len(*results) > 0 {
		for _, r := range (*results)[0].Result {
			tx, err := r.toModel()
			if err != nil {
				return models.Page[*models.InvestmentTransaction]{}, err
			}
			items = append(items, tx)
		}
	}
	return models.NewPage(items, page, total), nil
}

var _ interfaces.InvestmentStore = (*InvestmentStore)(nil)
