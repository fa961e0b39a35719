package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/budgeter/internal/interfaces"
	"github.com/bobmcallan/budgeter/internal/models"
)

// txStores buffers the writes of one unit of work. Reads see the buffered
// state first and fall back to the database.
type txStores struct {
	m           *Manager
	assets      *txAssetStore
	investments *txInvestmentStore
}

func newTxStores(m *Manager) *txStores {
	return &txStores{
		m:      m,
		assets: &txAssetStore{base: m.assetStore, staged: map[string]*models.Asset{}},
		investments: &txInvestmentStore{
			base:    m.investmentStore,
			staged:  map[string]*models.Investment{},
			deleted: map[string]bool{},
		},
	}
}

func (t *txStores) AssetStore() interfaces.AssetStore {
	return t.assets
}

func (t *txStores) InvestmentStore() interfaces.InvestmentStore {
	return t.investments
}

func (t *txStores) commit(ctx context.Context) error {
	b := newBatch()
	for _, id := range t.assets.order {
		b.upsertAsset(t.assets.staged[id])
	}
	// deletes first so a replacement position can take over the asset
	for _, id := range t.investments.deletes {
		if t.investments.deleted[id] {
			b.deleteInvestment(id)
		}
	}
	for _, id := range t.investments.order {
		if inv, ok := t.investments.staged[id]; ok {
			b.saveInvestment(inv)
		}
	}
	if err := b.exec(ctx, t.m.db); err != nil {
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return nil
}

type txAssetStore struct {
	base   *AssetStore
	staged map[string]*models.Asset
	order  []string
}

func (s *txAssetStore) find(match func(*models.Asset) bool) *models.Asset {
	for _, id := range s.order {
		if a := s.staged[id]; match(a) {
			return a.Clone()
		}
	}
	return nil
}

func (s *txAssetStore) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	if a, ok := s.staged[id]; ok {
		return a.Clone(), nil
	}
	return s.base.GetAsset(ctx, id)
}

func (s *txAssetStore) FindAssetByISIN(ctx context.Context, isin string) (*models.Asset, error) {
	if isin != "" {
		if a := s.find(func(a *models.Asset) bool { return strings.EqualFold(a.ISIN, isin) }); a != nil {
			return a, nil
		}
	}
	return s.base.FindAssetByISIN(ctx, isin)
}

func (s *txAssetStore) FindAssetByTicker(ctx context.Context, ticker string) (*models.Asset, error) {
	if a := s.find(func(a *models.Asset) bool { return a.Ticker == ticker }); a != nil {
		return a, nil
	}
	return s.base.FindAssetByTicker(ctx, ticker)
}

func (s *txAssetStore) SaveAsset(ctx context.Context, asset *models.Asset) error {
	clash := s.find(func(a *models.Asset) bool {
		return a.ID != asset.ID && (a.Ticker == asset.Ticker || (asset.ISIN != "" && strings.EqualFold(a.ISIN, asset.ISIN)))
	})
	if clash != nil {
		return fmt.Errorf("ticker %s or isin %s already used by asset %s: %w", asset.Ticker, asset.ISIN, clash.ID, interfaces.ErrConflict)
	}
	if err := s.base.conflict(ctx, asset); err != nil {
		return err
	}
	if _, ok := s.staged[asset.ID]; !ok {
		s.order = append(s.order, asset.ID)
	}
	s.staged[asset.ID] = asset.Clone()
	return nil
}

func (s *txAssetStore) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	stored, err := s.base.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Asset, 0, len(stored)+len(s.order))
	for _, a := range stored {
		if _, ok := s.staged[a.ID]; !ok {
			out = append(out, a)
		}
	}
	for _, id := range s.order {
		out = append(out, s.staged[id].Clone())
	}
	return out, nil
}

type txInvestmentStore struct {
	base    *InvestmentStore
	staged  map[string]*models.Investment
	order   []string
	deleted map[string]bool
	deletes []string
}

func (s *txInvestmentStore) stagedCopy(match func(*models.Investment) bool) *models.Investment {
	for _, id := range s.order {
		if inv, ok := s.staged[id]; ok && match(inv) {
			return inv.Clone()
		}
	}
	return nil
}

// visible filters a stored investment through the buffered writes.
func (s *txInvestmentStore) visible(inv *models.Investment, err error, what string) (*models.Investment, error) {
	if err != nil {
		return nil, err
	}
	if s.deleted[inv.ID] {
		return nil, fmt.Errorf("investment %s: %w", what, interfaces.ErrNotFound)
	}
	if _, ok := s.staged[inv.ID]; ok {
		// the staged version did not match, so the stored row is stale
		return nil, fmt.Errorf("investment %s: %w", what, interfaces.ErrNotFound)
	}
	return inv, nil
}

func (s *txInvestmentStore) GetInvestment(ctx context.Context, id string) (*models.Investment, error) {
	if s.deleted[id] {
		return nil, fmt.Errorf("investment %s: %w", id, interfaces.ErrNotFound)
	}
	if inv, ok := s.staged[id]; ok {
		return inv.Clone(), nil
	}
	return s.base.GetInvestment(ctx, id)
}

func (s *txInvestmentStore) FindInvestmentByAsset(ctx context.Context, assetID string) (*models.Investment, error) {
	if inv := s.stagedCopy(func(i *models.Investment) bool { return i.AssetID == assetID }); inv != nil {
		return inv, nil
	}
	inv, err := s.base.FindInvestmentByAsset(ctx, assetID)
	return s.visible(inv, err, "for asset "+assetID)
}

func (s *txInvestmentStore) FindInvestmentByTransaction(ctx context.Context, transactionID string) (*models.Investment, error) {
	if inv := s.stagedCopy(func(i *models.Investment) bool { return i.Transaction(transactionID) != nil }); inv != nil {
		return inv, nil
	}
	inv, err := s.base.FindInvestmentByTransaction(ctx, transactionID)
	return s.visible(inv, err, "holding transaction "+transactionID)
}

func (s *txInvestmentStore) SaveInvestment(ctx context.Context, inv *models.Investment) error {
	if other := s.stagedCopy(func(i *models.Investment) bool { return i.ID != inv.ID && i.AssetID == inv.AssetID }); other != nil {
		return fmt.Errorf("asset %s already has investment %s: %w", inv.AssetID, other.ID, interfaces.ErrConflict)
	}
	stored, err := s.base.FindInvestmentByAsset(ctx, inv.AssetID)
	switch {
	case err == nil && stored.ID != inv.ID && !s.deleted[stored.ID]:
		if _, restaged := s.staged[stored.ID]; !restaged {
			return fmt.Errorf("asset %s already has investment %s: %w", inv.AssetID, stored.ID, interfaces.ErrConflict)
		}
	case err != nil && !errors.Is(err, interfaces.ErrNotFound):
		return err
	}

	if _, ok := s.staged[inv.ID]; !ok {
		s.order = append(s.order, inv.ID)
	}
	stored = inv.Clone()
	stored.Asset = nil
	s.staged[inv.ID] = stored
	delete(s.deleted, inv.ID)
	return nil
}

func (s *txInvestmentStore) DeleteInvestment(ctx context.Context, id string) error {
	if _, err := s.GetInvestment(ctx, id); err != nil {
		return err
	}
	delete(s.staged, id)
	s.deleted[id] = true
	s.deletes = append(s.deletes, id)
	return nil
}

func (s *txInvestmentStore) ListInvestments(ctx context.Context, page models.PageRequest) (models.Page[*models.Investment], error) {
	return s.base.ListInvestments(ctx, page)
}

func (s *txInvestmentStore) ListTransactions(ctx context.Context, page models.PageRequest) (models.Page[*models.InvestmentTransaction], error) {
	return s.base.ListTransactions(ctx, page)
}

var (
	_ interfaces.LedgerStores    = (*txStores)(nil)
	_ interfaces.AssetStore      = (*txAssetStore)(nil)
	_ interfaces.InvestmentStore = (*txInvestmentStore)(nil)
)
